package world

import (
	"fmt"
	"sort"
)

// Connection kinds
const (
	ConnUp    = "Up"
	ConnDown  = "Down"
	ConnLeft  = "Left"
	ConnRight = "Right"
	ConnWarp  = "Warp"
)

// Connection is a one-directional exit from a sector
type Connection struct {
	Kind   string `json:"kind" yaml:"kind"`
	Target int    `json:"target" yaml:"target"`
}

// Location is a point of interest inside a sector (bank, shipyard, bar...)
type Location struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind"`
}

// Sector is a node of the trading universe. It is built up while a world is
// loaded and treated as read-only once route generation starts.
type Sector struct {
	ID          int          `json:"id"`
	Galaxy      int          `json:"galaxy"`
	Connections []Connection `json:"connections"`
	Warps       []Connection `json:"warps"`
	Port        *Port        `json:"port,omitempty"`
	Planet      bool         `json:"planet"`
	Locations   []Location   `json:"locations"`
}

// NewSector creates an empty sector
func NewSector(id, galaxy int) *Sector {
	return &Sector{ID: id, Galaxy: galaxy}
}

// BBCode returns the forum tag used when routes are pasted into posts
func BBCode(sectorID int) string {
	return fmt.Sprintf("[sector=%d]", sectorID)
}

func (s *Sector) BBCode() string {
	return BBCode(s.ID)
}

func (s *Sector) AddConnection(kind string, target int) {
	s.Connections = append(s.Connections, Connection{Kind: kind, Target: target})
}

func (s *Sector) AddWarp(kind string, target int) {
	s.Warps = append(s.Warps, Connection{Kind: kind, Target: target})
}

func (s *Sector) AddLocation(l Location) {
	s.Locations = append(s.Locations, l)
}

func (s *Sector) HasConnections() bool { return len(s.Connections) > 0 }
func (s *Sector) HasWarps() bool       { return len(s.Warps) > 0 }
func (s *Sector) HasPort() bool        { return s.Port != nil }
func (s *Sector) HasPlanet() bool      { return s.Planet }
func (s *Sector) HasLocation() bool    { return len(s.Locations) > 0 }

// HasLocationNamed reports whether a location with the given name is present
func (s *Sector) HasLocationNamed(name string) bool {
	for _, l := range s.Locations {
		if l.Name == name {
			return true
		}
	}
	return false
}

// World is the complete read-only input to route generation
type World struct {
	Sectors  map[int]*Sector
	Races    map[int]Race
	Galaxies map[int]string
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{
		Sectors:  make(map[int]*Sector),
		Races:    make(map[int]Race),
		Galaxies: make(map[int]string),
	}
}

// AddSector registers s, replacing any sector with the same id
func (w *World) AddSector(s *Sector) {
	w.Sectors[s.ID] = s
}

// Sector returns the sector with the given id, or nil
func (w *World) Sector(id int) *Sector {
	return w.Sectors[id]
}

// SectorIDs returns all sector ids in ascending order
func (w *World) SectorIDs() []int {
	ids := make([]int, 0, len(w.Sectors))
	for id := range w.Sectors {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// PortSectors returns the ids of sectors that host a port, ascending
func (w *World) PortSectors() []int {
	ids := make([]int, 0, len(w.Sectors))
	for id, s := range w.Sectors {
		if s.HasPort() {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// AllRaces returns a permitted-race set allowing every race of the world
func (w *World) AllRaces() map[int]bool {
	races := make(map[int]bool, len(w.Races))
	for id := range w.Races {
		races[id] = true
	}
	return races
}

// Race is a faction that owns ports
type Race struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}
