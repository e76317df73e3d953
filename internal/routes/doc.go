// Package routes generates trade routes over a world of sectors and ports.
//
// BuildOneWayRoutes derives every legal single trade leg. A Generator then
// enumerates closed loops of legs from every origin sector in parallel and
// keeps the best loops twice: once ranked by experience multiplier and once
// by money multiplier, each in a bounded Store.
//
// Loops are deduplicated across origin tasks by only ever starting a loop at
// its smallest sector id: the first leg must move to a strictly larger sector
// and later legs may never drop below the origin.
package routes
