package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoodByName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect Good
		ok     bool
	}{
		{"exact", "Ore", Ore, true},
		{"lower case", "wood", Wood, true},
		{"spaces removed", "luxuryitems", LuxuryItems, true},
		{"spaced", " Precious Metals ", PreciousMetals, true},
		{"sentinel", "nothing", Nothing, true},
		{"unknown", "spice", Nothing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := GoodByName(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expect, g)
		})
	}
}

func TestGoodBasePrice(t *testing.T) {
	assert.Zero(t, Nothing.BasePrice())
	assert.Greater(t, Narcotics.BasePrice(), Wood.BasePrice())
	assert.Zero(t, Good(99).BasePrice())
	assert.Equal(t, "Good(99)", Good(99).Name())
	assert.Len(t, Goods(), 13)
	assert.Len(t, AllGoods(), 13)
}

func TestParseTradeStatus(t *testing.T) {
	s, err := ParseTradeStatus("Sells")
	require.NoError(t, err)
	assert.Equal(t, StatusSells, s)

	s, err = ParseTradeStatus("buy")
	require.NoError(t, err)
	assert.Equal(t, StatusBuys, s)

	s, err = ParseTradeStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusNone, s)

	_, err = ParseTradeStatus("steals")
	assert.Error(t, err)
}

func TestPortGoods(t *testing.T) {
	p := NewPort(1, 3)
	p.SetGood(Ore, StatusSells, 4)
	p.SetGood(Food, StatusBuys, 2)

	assert.True(t, p.Sells(Ore))
	assert.False(t, p.Buys(Ore))
	assert.True(t, p.Buys(Food))
	assert.Equal(t, 4.0, p.Distance(Ore))
	assert.Zero(t, p.Distance(Nothing))
	assert.Equal(t, StatusNone, p.Status(Wood))
	assert.Equal(t, []Good{Food, Ore}, p.RecordedGoods())

	p.SetGood(Nothing, StatusNone, 6)
	p.SetGood(Wood, StatusNone, 0)
	assert.Equal(t, 6.0, p.Distance(Nothing))
	assert.Equal(t, []Good{Nothing, Food, Ore}, p.RecordedGoods())
}

func TestSectorHelpers(t *testing.T) {
	s := NewSector(12, 1)
	assert.False(t, s.HasPort())
	assert.False(t, s.HasConnections())
	assert.False(t, s.HasPlanet())

	s.AddConnection(ConnUp, 2)
	s.AddWarp(ConnWarp, 400)
	s.AddLocation(Location{Name: "Bank", Kind: "bank"})
	s.Port = NewPort(1, 1)

	assert.True(t, s.HasPort())
	assert.True(t, s.HasConnections())
	assert.True(t, s.HasWarps())
	assert.True(t, s.HasLocation())
	s.Planet = true
	assert.True(t, s.HasPlanet())
	assert.True(t, s.HasLocationNamed("Bank"))
	assert.False(t, s.HasLocationNamed("Bar"))
	assert.Equal(t, "[sector=12]", s.BBCode())
}

// line builds sectors 1..n connected both ways in a row, every sector with a port
func line(n int) *World {
	w := NewWorld()
	w.Races[1] = Race{ID: 1, Name: "Neutral"}
	for i := 1; i <= n; i++ {
		s := NewSector(i, 1)
		s.Port = NewPort(1, 1)
		if i > 1 {
			s.AddConnection(ConnLeft, i-1)
		}
		if i < n {
			s.AddConnection(ConnRight, i+1)
		}
		w.AddSector(s)
	}
	return w
}

func TestComputeDistancesLine(t *testing.T) {
	w := line(4)

	d, err := ComputeDistances(w, DefaultDistanceOptions())
	require.NoError(t, err)

	dist, ok := d.Get(1, 4)
	require.True(t, ok)
	assert.Equal(t, Distance{Turns: 3, Hops: 3}, dist)

	dist, ok = d.Get(3, 2)
	require.True(t, ok)
	assert.Equal(t, Distance{Turns: 1, Hops: 1}, dist)

	_, ok = d.Get(2, 2)
	assert.False(t, ok)
	assert.Equal(t, 12, d.Pairs())
}

func TestComputeDistancesPrefersCheaperRoute(t *testing.T) {
	w := line(4)
	// A warp from 1 to 4 costs 5 turns, more than walking
	w.Sector(1).AddWarp(ConnWarp, 4)
	d, err := ComputeDistances(w, DefaultDistanceOptions())
	require.NoError(t, err)
	dist, _ := d.Get(1, 4)
	assert.Equal(t, 3, dist.Turns)

	opts := DefaultDistanceOptions()
	opts.WarpTurns = 2
	d, err = ComputeDistances(w, opts)
	require.NoError(t, err)
	dist, _ = d.Get(1, 4)
	assert.Equal(t, Distance{Turns: 2, Hops: 1}, dist)
}

func TestComputeDistancesMaxTurnsAndUnreachable(t *testing.T) {
	w := line(4)
	island := NewSector(9, 2)
	island.Port = NewPort(1, 1)
	w.AddSector(island)

	opts := DefaultDistanceOptions()
	opts.MaxTurns = 2
	d, err := ComputeDistances(w, opts)
	require.NoError(t, err)

	_, ok := d.Get(1, 4)
	assert.False(t, ok, "3 turns exceeds the limit")
	_, ok = d.Get(1, 3)
	assert.True(t, ok)
	_, ok = d.Get(1, 9)
	assert.False(t, ok, "island is unreachable")
	assert.Empty(t, d[9])
}

func TestComputeDistancesSkipsPortlessSectors(t *testing.T) {
	w := line(3)
	w.Sector(2).Port = nil

	d, err := ComputeDistances(w, DefaultDistanceOptions())
	require.NoError(t, err)
	dist, ok := d.Get(1, 3)
	require.True(t, ok)
	assert.Equal(t, 2, dist.Turns)
	_, ok = d.Get(1, 2)
	assert.False(t, ok)
	assert.Equal(t, []int{1, 3}, w.PortSectors())
}
