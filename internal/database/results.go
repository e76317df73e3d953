package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"traderoute/internal/log"
	"traderoute/internal/routes"
	"traderoute/internal/world"
)

// SaveResult replaces the stored routes for ranking with rs, keeping their order
func (d *DB) SaveResult(ctx context.Context, ranking routes.Ranking, rs []routes.Route) error {
	name := ranking.String()
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := exec(ctx, tx, psql.Delete("route_legs").
			Where("result_id IN (SELECT id FROM route_results WHERE ranking = ?)", name)); err != nil {
			return fmt.Errorf("failed to clear route legs: %w", err)
		}
		if _, err := exec(ctx, tx, psql.Delete("route_results").Where(squirrel.Eq{"ranking": name})); err != nil {
			return fmt.Errorf("failed to clear route results: %w", err)
		}

		for pos, r := range rs {
			res, err := exec(ctx, tx, psql.Insert("route_results").
				Columns("ranking", "position", "score", "turns").
				Values(name, pos, ranking.Score(r), r.Turns()))
			if err != nil {
				return fmt.Errorf("failed to save route %d: %w", pos, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get route id: %w", err)
			}

			legs := psql.Insert("route_legs").Columns(
				"result_id", "leg_index", "sell_sector", "buy_sector", "sell_race", "buy_race",
				"sell_distance", "buy_distance", "turns", "hops", "good")
			for i, leg := range r.Legs() {
				legs = legs.Values(id, i, leg.SellSector, leg.BuySector, leg.SellRace, leg.BuyRace,
					leg.SellDistance, leg.BuyDistance, leg.Distance.Turns, leg.Distance.Hops, int(leg.Good))
			}
			if _, err := exec(ctx, tx, legs); err != nil {
				return fmt.Errorf("failed to save legs of route %d: %w", pos, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("routes saved", "ranking", name, "routes", len(rs))
	return nil
}

// LoadRoutes returns the stored routes for ranking in their saved order
func (d *DB) LoadRoutes(ctx context.Context, ranking routes.Ranking) ([]routes.Route, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}

	q := psql.Select(
		"r.id", "l.sell_sector", "l.buy_sector", "l.sell_race", "l.buy_race",
		"l.sell_distance", "l.buy_distance", "l.turns", "l.hops", "l.good").
		From("route_results r").
		Join("route_legs l ON l.result_id = r.id").
		Where(squirrel.Eq{"r.ranking": ranking.String()}).
		OrderBy("r.position", "l.leg_index")

	var (
		out    []routes.Route
		legs   []*routes.OneWayRoute
		lastID int64 = -1
	)
	flush := func() {
		if len(legs) > 0 {
			out = append(out, routes.NewChain(legs...))
			legs = legs[:0]
		}
	}

	err := d.scanEach(ctx, q, func(rows *sql.Rows) error {
		var (
			id   int64
			good int
			leg  routes.OneWayRoute
		)
		if err := rows.Scan(&id, &leg.SellSector, &leg.BuySector, &leg.SellRace, &leg.BuyRace,
			&leg.SellDistance, &leg.BuyDistance, &leg.Distance.Turns, &leg.Distance.Hops, &good); err != nil {
			return err
		}
		leg.Good = world.Good(good)
		if !leg.Good.Valid() {
			return fmt.Errorf("route %d has unknown good %d", id, good)
		}
		if id != lastID {
			flush()
			lastID = id
		}
		legs = append(legs, &leg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s routes: %w", ranking, err)
	}
	flush()
	return out, nil
}
