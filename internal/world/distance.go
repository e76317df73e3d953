package world

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"
)

// Distance is the travel cost between an ordered pair of sectors
type Distance struct {
	Turns int `json:"turns"`
	Hops  int `json:"hops"`
}

// Distances is the lookup consumed by route generation: origin -> destination -> distance.
// Only pairs present in the lookup are considered for trade legs.
type Distances map[int]map[int]Distance

// Set records the distance from origin to destination
func (d Distances) Set(origin, destination int, dist Distance) {
	row, ok := d[origin]
	if !ok {
		row = make(map[int]Distance)
		d[origin] = row
	}
	row[destination] = dist
}

// Get returns the distance from origin to destination
func (d Distances) Get(origin, destination int) (Distance, bool) {
	dist, ok := d[origin][destination]
	return dist, ok
}

// Pairs returns the number of origin/destination entries
func (d Distances) Pairs() int {
	n := 0
	for _, row := range d {
		n += len(row)
	}
	return n
}

// DistanceOptions control how sector moves are costed
type DistanceOptions struct {
	ConnectionTurns int // cost of a plain connection
	WarpTurns       int // cost of a warp
	MaxTurns        int // pairs further apart are left out; 0 keeps every reachable pair
}

// DefaultDistanceOptions mirrors the in-game move costs
func DefaultDistanceOptions() DistanceOptions {
	return DistanceOptions{
		ConnectionTurns: 1,
		WarpTurns:       5,
		MaxTurns:        0,
	}
}

type edgeKey struct{ from, to int }

// buildSectorGraph creates a weighted directed graph of all sectors using
// dominikbraun/graph. Parallel connection and warp exits keep the cheaper cost.
func buildSectorGraph(w *World, opts DistanceOptions) (graph.Graph[int, int], map[edgeKey]int, error) {
	g := graph.New(graph.IntHash, graph.Directed(), graph.Weighted())

	for _, id := range w.SectorIDs() {
		if err := g.AddVertex(id); err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil, nil, fmt.Errorf("failed to add sector %d: %w", id, err)
		}
	}

	weights := make(map[edgeKey]int)
	addExit := func(from int, c Connection, cost int) {
		if _, ok := w.Sectors[c.Target]; !ok || c.Target == from {
			return
		}
		key := edgeKey{from, c.Target}
		if cur, ok := weights[key]; !ok || cost < cur {
			weights[key] = cost
		}
	}
	for _, id := range w.SectorIDs() {
		s := w.Sectors[id]
		for _, c := range s.Connections {
			addExit(id, c, opts.ConnectionTurns)
		}
		for _, c := range s.Warps {
			addExit(id, c, opts.WarpTurns)
		}
	}

	for key, weight := range weights {
		if err := g.AddEdge(key.from, key.to, graph.EdgeWeight(weight)); err != nil {
			return nil, nil, fmt.Errorf("failed to add exit %d -> %d: %w", key.from, key.to, err)
		}
	}
	return g, weights, nil
}

// ComputeDistances builds the distance lookup between every ordered pair of
// port sectors that can reach each other.
func ComputeDistances(w *World, opts DistanceOptions) (Distances, error) {
	g, weights, err := buildSectorGraph(w, opts)
	if err != nil {
		return nil, err
	}

	ports := w.PortSectors()
	distances := make(Distances, len(ports))
	for _, from := range ports {
		for _, to := range ports {
			if from == to {
				continue
			}
			path, err := graph.ShortestPath(g, from, to)
			if errors.Is(err, graph.ErrTargetNotReachable) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to find path %d -> %d: %w", from, to, err)
			}

			turns := 0
			for i := 1; i < len(path); i++ {
				turns += weights[edgeKey{path[i-1], path[i]}]
			}
			if opts.MaxTurns > 0 && turns > opts.MaxTurns {
				continue
			}
			distances.Set(from, to, Distance{Turns: turns, Hops: len(path) - 1})
		}
	}
	return distances, nil
}
