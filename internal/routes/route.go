package routes

import (
	"fmt"
	"slices"
	"strings"

	"traderoute/internal/world"
)

// Route is a chain of one or more trade legs. Both ranking scores are
// averages of per-leg multipliers over the number of legs.
type Route interface {
	// Legs returns the legs in travel order. Callers must not modify the slice.
	Legs() []*OneWayRoute
	// Turns is the number of legs in the route
	Turns() int
	ExpMultiplierSum() float64
	MoneyMultiplierSum() float64
	ExpMultiplier() float64
	MoneyMultiplier() float64
	// ContainsSector reports whether any leg ends (buys) at the sector
	ContainsSector(sectorID int) bool
	String() string
}

// OneWayRoute is a single directed trade leg: goods bought where the sell
// sector's port sells them are carried to the buy sector's port.
type OneWayRoute struct {
	SellSector   int
	BuySector    int
	SellRace     int
	BuyRace      int
	SellDistance float64
	BuyDistance  float64
	Distance     world.Distance
	Good         world.Good
}

// Legs returns the route itself as a one-element chain
func (r *OneWayRoute) Legs() []*OneWayRoute {
	return []*OneWayRoute{r}
}

func (r *OneWayRoute) Turns() int {
	return 1
}

func (r *OneWayRoute) travelTurns() float64 {
	if r.Distance.Turns < 1 {
		return 1
	}
	return float64(r.Distance.Turns)
}

// ExpMultiplierSum is the good-distance weight of the leg per travel turn
func (r *OneWayRoute) ExpMultiplierSum() float64 {
	return (r.SellDistance + r.BuyDistance) / r.travelTurns()
}

// MoneyMultiplierSum weighs the experience value by the good's base price, so
// empty legs earn nothing.
func (r *OneWayRoute) MoneyMultiplierSum() float64 {
	return r.ExpMultiplierSum() * r.Good.BasePrice()
}

func (r *OneWayRoute) ExpMultiplier() float64 {
	return r.ExpMultiplierSum()
}

func (r *OneWayRoute) MoneyMultiplier() float64 {
	return r.MoneyMultiplierSum()
}

func (r *OneWayRoute) ContainsSector(sectorID int) bool {
	return r.BuySector == sectorID
}

// IsEmpty reports whether the leg carries no cargo
func (r *OneWayRoute) IsEmpty() bool {
	return r.Good == world.Nothing
}

func (r *OneWayRoute) String() string {
	return fmt.Sprintf("%s -> %s (%d turns) %s",
		world.BBCode(r.SellSector), world.BBCode(r.BuySector), r.Distance.Turns, r.Good.Name())
}

// MultiplePortRoute joins a forward route and a return route into one chain.
// The legs are kept as a flat slice; the split records where the return part starts.
type MultiplePortRoute struct {
	legs     []*OneWayRoute
	split    int
	expSum   float64
	moneySum float64
}

// NewMultiplePortRoute concatenates forward and ret
func NewMultiplePortRoute(forward, ret Route) *MultiplePortRoute {
	f, r := forward.Legs(), ret.Legs()
	legs := make([]*OneWayRoute, 0, len(f)+len(r))
	legs = append(legs, f...)
	legs = append(legs, r...)
	return newChain(legs, len(f))
}

// NewChain builds a route from legs in travel order; the last leg is the return
func NewChain(legs ...*OneWayRoute) *MultiplePortRoute {
	invariant(len(legs) > 0, "chain needs at least one leg")
	return newChain(slices.Clone(legs), len(legs)-1)
}

// newChain takes ownership of legs
func newChain(legs []*OneWayRoute, split int) *MultiplePortRoute {
	mpr := &MultiplePortRoute{legs: legs, split: split}
	// Sums accumulate in leg order so scores are reproducible from prefix sums.
	for _, leg := range legs {
		mpr.expSum += leg.ExpMultiplierSum()
		mpr.moneySum += leg.MoneyMultiplierSum()
	}
	return mpr
}

func (r *MultiplePortRoute) Legs() []*OneWayRoute {
	return r.legs
}

// Forward returns the outbound part of the chain
func (r *MultiplePortRoute) Forward() Route {
	return subRoute(r.legs[:r.split])
}

// Return returns the closing part of the chain
func (r *MultiplePortRoute) Return() Route {
	return subRoute(r.legs[r.split:])
}

func subRoute(legs []*OneWayRoute) Route {
	if len(legs) == 1 {
		return legs[0]
	}
	return newChain(legs, len(legs)-1)
}

func (r *MultiplePortRoute) Turns() int {
	return len(r.legs)
}

func (r *MultiplePortRoute) ExpMultiplierSum() float64 {
	return r.expSum
}

func (r *MultiplePortRoute) MoneyMultiplierSum() float64 {
	return r.moneySum
}

func (r *MultiplePortRoute) ExpMultiplier() float64 {
	return r.expSum / float64(len(r.legs))
}

func (r *MultiplePortRoute) MoneyMultiplier() float64 {
	return r.moneySum / float64(len(r.legs))
}

func (r *MultiplePortRoute) ContainsSector(sectorID int) bool {
	for _, leg := range r.legs {
		if leg.BuySector == sectorID {
			return true
		}
	}
	return false
}

// Origin is the sector the chain starts from
func (r *MultiplePortRoute) Origin() int {
	return r.legs[0].SellSector
}

// IsClosed reports whether the chain ends where it started
func (r *MultiplePortRoute) IsClosed() bool {
	return r.legs[len(r.legs)-1].BuySector == r.Origin()
}

// Sectors returns the visited sectors in order, starting and ending at the origin for a loop
func (r *MultiplePortRoute) Sectors() []int {
	sectors := make([]int, 0, len(r.legs)+1)
	sectors = append(sectors, r.Origin())
	for _, leg := range r.legs {
		sectors = append(sectors, leg.BuySector)
	}
	return sectors
}

func (r *MultiplePortRoute) String() string {
	lines := make([]string, len(r.legs))
	for i, leg := range r.legs {
		lines[i] = leg.String()
	}
	return strings.Join(lines, "\r\n")
}
