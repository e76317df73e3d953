package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"traderoute/internal/log"
	"traderoute/internal/world"
)

var worldTables = []string{"port_goods", "ports", "locations", "sector_links", "sectors", "races", "galaxies"}

// SaveWorld replaces the stored world with w
func (d *DB) SaveWorld(ctx context.Context, w *world.World) error {
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range worldTables {
			if _, err := exec(ctx, tx, psql.Delete(table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for id, race := range w.Races {
			if _, err := exec(ctx, tx, psql.Insert("races").Columns("id", "name").Values(id, race.Name)); err != nil {
				return fmt.Errorf("failed to save race %d: %w", id, err)
			}
		}
		for id, name := range w.Galaxies {
			if _, err := exec(ctx, tx, psql.Insert("galaxies").Columns("id", "name").Values(id, name)); err != nil {
				return fmt.Errorf("failed to save galaxy %d: %w", id, err)
			}
		}

		for _, id := range w.SectorIDs() {
			if err := saveSector(ctx, tx, w.Sectors[id]); err != nil {
				return fmt.Errorf("failed to save sector %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("world saved", "sectors", len(w.Sectors), "races", len(w.Races))
	return nil
}

func saveSector(ctx context.Context, tx *sql.Tx, s *world.Sector) error {
	if _, err := exec(ctx, tx, psql.Insert("sectors").
		Columns("id", "galaxy", "planet").
		Values(s.ID, s.Galaxy, s.Planet)); err != nil {
		return err
	}

	links := psql.Insert("sector_links").Columns("sector_id", "position", "kind", "target", "warp")
	n := 0
	for i, c := range s.Connections {
		links = links.Values(s.ID, i, c.Kind, c.Target, false)
		n++
	}
	for i, c := range s.Warps {
		links = links.Values(s.ID, i, c.Kind, c.Target, true)
		n++
	}
	if n > 0 {
		if _, err := exec(ctx, tx, links); err != nil {
			return fmt.Errorf("failed to save links: %w", err)
		}
	}

	if len(s.Locations) > 0 {
		locs := psql.Insert("locations").Columns("sector_id", "position", "name", "kind")
		for i, l := range s.Locations {
			locs = locs.Values(s.ID, i, l.Name, l.Kind)
		}
		if _, err := exec(ctx, tx, locs); err != nil {
			return fmt.Errorf("failed to save locations: %w", err)
		}
	}

	if s.Port == nil {
		return nil
	}
	if _, err := exec(ctx, tx, psql.Insert("ports").
		Columns("sector_id", "race", "level").
		Values(s.ID, s.Port.Race, s.Port.Level)); err != nil {
		return fmt.Errorf("failed to save port: %w", err)
	}
	goods := s.Port.RecordedGoods()
	if len(goods) == 0 {
		return nil
	}
	rows := psql.Insert("port_goods").Columns("sector_id", "good", "status", "distance")
	for _, g := range goods {
		info := s.Port.Goods[g]
		rows = rows.Values(s.ID, int(g), int(info.Status), info.Distance)
	}
	if _, err := exec(ctx, tx, rows); err != nil {
		return fmt.Errorf("failed to save port goods: %w", err)
	}
	return nil
}

// LoadWorld reads the stored world. An empty database yields an empty world.
func (d *DB) LoadWorld(ctx context.Context) (*world.World, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if err := d.checkOpen(); err != nil {
		return nil, err
	}

	w := world.NewWorld()
	steps := []struct {
		name string
		load func(context.Context, *world.World) error
	}{
		{"races", d.loadRaces},
		{"galaxies", d.loadGalaxies},
		{"sectors", d.loadSectors},
		{"links", d.loadLinks},
		{"locations", d.loadLocations},
		{"ports", d.loadPorts},
		{"port goods", d.loadPortGoods},
	}
	for _, step := range steps {
		if err := step.load(ctx, w); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", step.name, err)
		}
	}

	log.Debug("world loaded", "sectors", len(w.Sectors), "ports", len(w.PortSectors()))
	return w, nil
}

// scanEach runs b and calls fn for every row
func (d *DB) scanEach(ctx context.Context, b squirrel.SelectBuilder, fn func(*sql.Rows) error) error {
	rows, err := d.query(ctx, b)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (d *DB) loadRaces(ctx context.Context, w *world.World) error {
	return d.scanEach(ctx, psql.Select("id", "name").From("races"), func(rows *sql.Rows) error {
		var r world.Race
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return err
		}
		w.Races[r.ID] = r
		return nil
	})
}

func (d *DB) loadGalaxies(ctx context.Context, w *world.World) error {
	return d.scanEach(ctx, psql.Select("id", "name").From("galaxies"), func(rows *sql.Rows) error {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		w.Galaxies[id] = name
		return nil
	})
}

func (d *DB) loadSectors(ctx context.Context, w *world.World) error {
	return d.scanEach(ctx, psql.Select("id", "galaxy", "planet").From("sectors"), func(rows *sql.Rows) error {
		var (
			id, galaxy int
			planet     bool
		)
		if err := rows.Scan(&id, &galaxy, &planet); err != nil {
			return err
		}
		s := world.NewSector(id, galaxy)
		s.Planet = planet
		w.AddSector(s)
		return nil
	})
}

func (d *DB) loadLinks(ctx context.Context, w *world.World) error {
	q := psql.Select("sector_id", "kind", "target", "warp").
		From("sector_links").
		OrderBy("sector_id", "warp", "position")
	return d.scanEach(ctx, q, func(rows *sql.Rows) error {
		var (
			id, target int
			kind       string
			warp       bool
		)
		if err := rows.Scan(&id, &kind, &target, &warp); err != nil {
			return err
		}
		s := w.Sector(id)
		if s == nil {
			return fmt.Errorf("link from unknown sector %d", id)
		}
		if warp {
			s.AddWarp(kind, target)
		} else {
			s.AddConnection(kind, target)
		}
		return nil
	})
}

func (d *DB) loadLocations(ctx context.Context, w *world.World) error {
	q := psql.Select("sector_id", "name", "kind").From("locations").OrderBy("sector_id", "position")
	return d.scanEach(ctx, q, func(rows *sql.Rows) error {
		var (
			id int
			l  world.Location
		)
		if err := rows.Scan(&id, &l.Name, &l.Kind); err != nil {
			return err
		}
		s := w.Sector(id)
		if s == nil {
			return fmt.Errorf("location in unknown sector %d", id)
		}
		s.AddLocation(l)
		return nil
	})
}

func (d *DB) loadPorts(ctx context.Context, w *world.World) error {
	return d.scanEach(ctx, psql.Select("sector_id", "race", "level").From("ports"), func(rows *sql.Rows) error {
		var id, race, level int
		if err := rows.Scan(&id, &race, &level); err != nil {
			return err
		}
		s := w.Sector(id)
		if s == nil {
			return fmt.Errorf("port in unknown sector %d", id)
		}
		s.Port = world.NewPort(race, level)
		return nil
	})
}

func (d *DB) loadPortGoods(ctx context.Context, w *world.World) error {
	q := psql.Select("sector_id", "good", "status", "distance").From("port_goods")
	return d.scanEach(ctx, q, func(rows *sql.Rows) error {
		var (
			id, good, status int
			distance         float64
		)
		if err := rows.Scan(&id, &good, &status, &distance); err != nil {
			return err
		}
		s := w.Sector(id)
		if s == nil || s.Port == nil {
			return fmt.Errorf("goods for missing port in sector %d", id)
		}
		g := world.Good(good)
		if !g.Valid() {
			log.Warn("unknown good id in port, skipping", "sector", id, "good", good)
			return nil
		}
		s.Port.SetGood(g, world.TradeStatus(status), distance)
		return nil
	})
}
