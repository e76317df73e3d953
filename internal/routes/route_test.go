package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderoute/internal/world"
)

func TestOneWayRouteMultipliers(t *testing.T) {
	tests := []struct {
		name      string
		route     OneWayRoute
		wantExp   float64
		wantMoney float64
	}{
		{
			name:      "ore over two turns",
			route:     OneWayRoute{SellSector: 1, BuySector: 2, SellDistance: 3, BuyDistance: 5, Distance: world.Distance{Turns: 2}, Good: world.Ore},
			wantExp:   4,
			wantMoney: 4 * 42,
		},
		{
			name:      "empty leg earns nothing",
			route:     OneWayRoute{SellSector: 2, BuySector: 1, SellDistance: 0, BuyDistance: 0, Distance: world.Distance{Turns: 2}, Good: world.Nothing},
			wantExp:   0,
			wantMoney: 0,
		},
		{
			name:      "zero distance counts as one turn",
			route:     OneWayRoute{SellSector: 1, BuySector: 2, SellDistance: 2, BuyDistance: 2, Distance: world.Distance{Turns: 0}, Good: world.Wood},
			wantExp:   4,
			wantMoney: 4 * 19,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.route
			assert.Equal(t, 1, r.Turns())
			assert.InDelta(t, tt.wantExp, r.ExpMultiplierSum(), 1e-9)
			assert.InDelta(t, tt.wantExp, r.ExpMultiplier(), 1e-9)
			assert.InDelta(t, tt.wantMoney, r.MoneyMultiplierSum(), 1e-9)
			assert.InDelta(t, tt.wantMoney, r.MoneyMultiplier(), 1e-9)
			assert.Equal(t, r.Good == world.Nothing, r.IsEmpty())
		})
	}
}

func TestMultiplePortRouteAggregates(t *testing.T) {
	out := &OneWayRoute{SellSector: 1, BuySector: 2, SellDistance: 3, BuyDistance: 5, Distance: world.Distance{Turns: 2}, Good: world.Ore}
	mid := &OneWayRoute{SellSector: 2, BuySector: 3, SellDistance: 1, BuyDistance: 1, Distance: world.Distance{Turns: 1}, Good: world.Wood}
	back := &OneWayRoute{SellSector: 3, BuySector: 1, Distance: world.Distance{Turns: 4}, Good: world.Nothing}

	chain := NewMultiplePortRoute(out, mid)
	loop := NewMultiplePortRoute(chain, back)

	require.Equal(t, 3, loop.Turns())
	assert.Equal(t, []*OneWayRoute{out, mid, back}, loop.Legs())
	assert.InDelta(t, 6.0, loop.ExpMultiplierSum(), 1e-9)
	assert.InDelta(t, 2.0, loop.ExpMultiplier(), 1e-9)
	assert.InDelta(t, (4*42.0+2*19.0)/3, loop.MoneyMultiplier(), 1e-9)

	assert.True(t, loop.ContainsSector(2))
	assert.True(t, loop.ContainsSector(3))
	assert.True(t, loop.ContainsSector(1), "closing leg buys at the origin")
	assert.False(t, chain.ContainsSector(1), "the origin is not a buy stop of the open chain")
	assert.False(t, loop.ContainsSector(4))

	assert.Equal(t, 1, loop.Origin())
	assert.True(t, loop.IsClosed())
	assert.False(t, chain.IsClosed())
	assert.Equal(t, []int{1, 2, 3, 1}, loop.Sectors())

	assert.Equal(t, chain.Legs(), loop.Forward().Legs())
	assert.Same(t, back, loop.Return())
	assert.Same(t, out, chain.Forward())
}

func TestMultiplePortRouteString(t *testing.T) {
	out := &OneWayRoute{SellSector: 10, BuySector: 20, Distance: world.Distance{Turns: 3}, Good: world.Food}
	back := &OneWayRoute{SellSector: 20, BuySector: 10, Distance: world.Distance{Turns: 3}, Good: world.Nothing}
	loop := NewMultiplePortRoute(out, back)

	assert.Equal(t,
		"[sector=10] -> [sector=20] (3 turns) Food\r\n[sector=20] -> [sector=10] (3 turns) Nothing",
		loop.String())
}

func TestOneWayLoop(t *testing.T) {
	owr := &OneWayRoute{SellSector: 4, BuySector: 9, SellRace: 1, BuyRace: 2, SellDistance: 2, BuyDistance: 6, Distance: world.Distance{Turns: 4}, Good: world.Slaves}
	loop := oneWayLoop(owr)

	require.Equal(t, 2, loop.Turns())
	back := loop.Legs()[1]
	assert.Equal(t, 9, back.SellSector)
	assert.Equal(t, 4, back.BuySector)
	assert.Equal(t, 2, back.SellRace)
	assert.Equal(t, 1, back.BuyRace)
	assert.Equal(t, world.Nothing, back.Good)
	assert.Zero(t, back.ExpMultiplierSum())
	assert.InDelta(t, owr.ExpMultiplierSum()/2, loop.ExpMultiplier(), 1e-9)
	assert.True(t, loop.IsClosed())
}

func TestNewChain(t *testing.T) {
	out := &OneWayRoute{SellSector: 1, BuySector: 2, SellDistance: 3, BuyDistance: 5, Distance: world.Distance{Turns: 2}, Good: world.Ore}
	back := &OneWayRoute{SellSector: 2, BuySector: 1, Distance: world.Distance{Turns: 2}, Good: world.Nothing}

	legs := []*OneWayRoute{out, back}
	chain := NewChain(legs...)
	legs[0] = back

	assert.Same(t, out, chain.Legs()[0], "chain keeps its own copy of the legs")
	assert.Equal(t, legKey(NewMultiplePortRoute(out, back)), legKey(chain))
	assert.InDelta(t, 2.0, chain.ExpMultiplier(), 1e-9)
	assert.Same(t, back, chain.Return())

	assert.Panics(t, func() { NewChain() })
}
