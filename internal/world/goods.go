package world

import (
	"fmt"
	"strings"
)

// Good identifies a tradeable commodity. Nothing is the "no cargo" sentinel.
type Good int

const (
	Nothing Good = iota
	Wood
	Food
	Ore
	PreciousMetals
	Slaves
	Textiles
	Machinery
	Circuitry
	Weapons
	Computers
	LuxuryItems
	Narcotics
)

type goodInfo struct {
	name      string
	basePrice float64
}

var goodTable = [...]goodInfo{
	Nothing:        {"Nothing", 0},
	Wood:           {"Wood", 19},
	Food:           {"Food", 25},
	Ore:            {"Ore", 42},
	PreciousMetals: {"Precious Metals", 62},
	Slaves:         {"Slaves", 89},
	Textiles:       {"Textiles", 112},
	Machinery:      {"Machinery", 126},
	Circuitry:      {"Circuitry", 141},
	Weapons:        {"Weapons", 168},
	Computers:      {"Computers", 186},
	LuxuryItems:    {"Luxury Items", 212},
	Narcotics:      {"Narcotics", 235},
}

// Valid reports whether g is a known good
func (g Good) Valid() bool {
	return g >= Nothing && int(g) < len(goodTable)
}

// Name returns the display name of the good
func (g Good) Name() string {
	if !g.Valid() {
		return fmt.Sprintf("Good(%d)", int(g))
	}
	return goodTable[g].name
}

func (g Good) String() string {
	return g.Name()
}

// BasePrice is the per-unit reference price used for money scoring
func (g Good) BasePrice() float64 {
	if !g.Valid() {
		return 0
	}
	return goodTable[g].basePrice
}

// Goods returns every known good in id order, Nothing first
func Goods() []Good {
	goods := make([]Good, len(goodTable))
	for i := range goodTable {
		goods[i] = Good(i)
	}
	return goods
}

// GoodByName looks a good up by its display name, ignoring case and spaces
func GoodByName(name string) (Good, bool) {
	want := normalizeGoodName(name)
	for i, info := range goodTable {
		if normalizeGoodName(info.name) == want {
			return Good(i), true
		}
	}
	return Nothing, false
}

func normalizeGoodName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}

// AllGoods returns an enabled-goods set with every good, Nothing included
func AllGoods() map[Good]bool {
	enabled := make(map[Good]bool, len(goodTable))
	for _, g := range Goods() {
		enabled[g] = true
	}
	return enabled
}

// TradeStatus is a port's stance on a single good
type TradeStatus int

const (
	StatusNone TradeStatus = iota
	StatusSells
	StatusBuys
)

func (s TradeStatus) String() string {
	switch s {
	case StatusSells:
		return "Sells"
	case StatusBuys:
		return "Buys"
	default:
		return "None"
	}
}

// ParseTradeStatus converts "sells"/"buys"/"none" (any case) to a TradeStatus
func ParseTradeStatus(s string) (TradeStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sells", "sell", "s":
		return StatusSells, nil
	case "buys", "buy", "b":
		return StatusBuys, nil
	case "", "none", "-":
		return StatusNone, nil
	default:
		return StatusNone, fmt.Errorf("invalid trade status: %q", s)
	}
}
