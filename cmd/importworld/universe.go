package main

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"traderoute/internal/log"
	"traderoute/internal/world"
)

// universeFile is the YAML layout of a world
type universeFile struct {
	Races    []world.Race  `yaml:"races"`
	Galaxies []galaxyEntry `yaml:"galaxies"`
	Sectors  []sectorEntry `yaml:"sectors"`
}

type galaxyEntry struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type sectorEntry struct {
	ID          int                `yaml:"id"`
	Galaxy      int                `yaml:"galaxy"`
	Planet      bool               `yaml:"planet,omitempty"`
	Connections []world.Connection `yaml:"connections,omitempty"`
	Warps       []world.Connection `yaml:"warps,omitempty"`
	Locations   []world.Location   `yaml:"locations,omitempty"`
	Port        *portEntry         `yaml:"port,omitempty"`
}

type portEntry struct {
	Race  int         `yaml:"race"`
	Level int         `yaml:"level"`
	Goods []goodEntry `yaml:"goods,omitempty"`
}

type goodEntry struct {
	Good     string  `yaml:"good"`
	Status   string  `yaml:"status,omitempty"`
	Distance float64 `yaml:"distance"`
}

// decodeUniverse reads a YAML universe into a world
func decodeUniverse(r io.Reader) (*world.World, error) {
	var file universeFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse universe: %w", err)
	}

	w := world.NewWorld()
	for _, race := range file.Races {
		w.Races[race.ID] = race
	}
	for _, g := range file.Galaxies {
		w.Galaxies[g.ID] = g.Name
	}

	for _, entry := range file.Sectors {
		if _, dup := w.Sectors[entry.ID]; dup {
			return nil, fmt.Errorf("sector %d defined twice", entry.ID)
		}
		s := world.NewSector(entry.ID, entry.Galaxy)
		s.Planet = entry.Planet
		s.Connections = entry.Connections
		s.Warps = entry.Warps
		s.Locations = entry.Locations

		if entry.Port != nil {
			port, err := decodePort(entry.ID, entry.Port)
			if err != nil {
				return nil, err
			}
			if _, ok := w.Races[port.Race]; !ok {
				log.Warn("port owned by unknown race", "sector", entry.ID, "race", port.Race)
			}
			s.Port = port
		}
		w.AddSector(s)
	}

	for _, id := range w.SectorIDs() {
		s := w.Sectors[id]
		if s.HasPort() && !s.HasConnections() && !s.HasWarps() {
			log.Warn("port sector has no exits", "sector", id)
		}
		for _, c := range append(append([]world.Connection{}, s.Connections...), s.Warps...) {
			if w.Sector(c.Target) == nil {
				log.Warn("exit to unknown sector", "sector", id, "target", c.Target, "kind", c.Kind)
			}
		}
	}
	return w, nil
}

func decodePort(sectorID int, entry *portEntry) (*world.Port, error) {
	port := world.NewPort(entry.Race, entry.Level)
	for _, ge := range entry.Goods {
		g, ok := world.GoodByName(ge.Good)
		if !ok {
			return nil, fmt.Errorf("sector %d: unknown good %q", sectorID, ge.Good)
		}
		if g == world.Nothing {
			// Only the empty-leg distance matters; a port never trades Nothing
			port.SetGood(g, world.StatusNone, ge.Distance)
			continue
		}
		status, err := world.ParseTradeStatus(ge.Status)
		if err != nil {
			return nil, fmt.Errorf("sector %d: %w", sectorID, err)
		}
		port.SetGood(g, status, ge.Distance)
	}
	return port, nil
}

// encodeUniverse writes w in the layout decodeUniverse reads
func encodeUniverse(out io.Writer, w *world.World) error {
	var file universeFile

	raceIDs := make([]int, 0, len(w.Races))
	for id := range w.Races {
		raceIDs = append(raceIDs, id)
	}
	sort.Ints(raceIDs)
	for _, id := range raceIDs {
		file.Races = append(file.Races, w.Races[id])
	}

	galaxyIDs := make([]int, 0, len(w.Galaxies))
	for id := range w.Galaxies {
		galaxyIDs = append(galaxyIDs, id)
	}
	sort.Ints(galaxyIDs)
	for _, id := range galaxyIDs {
		file.Galaxies = append(file.Galaxies, galaxyEntry{ID: id, Name: w.Galaxies[id]})
	}

	for _, id := range w.SectorIDs() {
		s := w.Sectors[id]
		entry := sectorEntry{
			ID:          s.ID,
			Galaxy:      s.Galaxy,
			Planet:      s.Planet,
			Connections: s.Connections,
			Warps:       s.Warps,
			Locations:   s.Locations,
		}
		if s.Port != nil {
			pe := &portEntry{Race: s.Port.Race, Level: s.Port.Level}
			for _, g := range s.Port.RecordedGoods() {
				info := s.Port.Goods[g]
				ge := goodEntry{Good: g.Name(), Distance: info.Distance}
				if g != world.Nothing {
					ge.Status = info.Status.String()
				}
				pe.Goods = append(pe.Goods, ge)
			}
			entry.Port = pe
		}
		file.Sectors = append(file.Sectors, entry)
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return fmt.Errorf("failed to write universe: %w", err)
	}
	return enc.Close()
}
