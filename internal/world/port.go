package world

import "sort"

// GoodInfo is a port's status and distance weight for one good
type GoodInfo struct {
	Status   TradeStatus `json:"status"`
	Distance float64     `json:"distance"`
}

// Port is a trading facility attached to a sector
type Port struct {
	Race  int               `json:"race"`
	Level int               `json:"level"`
	Goods map[Good]GoodInfo `json:"goods"`
}

// NewPort creates a port with no goods
func NewPort(race, level int) *Port {
	return &Port{
		Race:  race,
		Level: level,
		Goods: make(map[Good]GoodInfo),
	}
}

// SetGood records the port's status and distance for g
func (p *Port) SetGood(g Good, status TradeStatus, distance float64) {
	if p.Goods == nil {
		p.Goods = make(map[Good]GoodInfo)
	}
	p.Goods[g] = GoodInfo{Status: status, Distance: distance}
}

// Status returns the port's trade status for g
func (p *Port) Status(g Good) TradeStatus {
	return p.Goods[g].Status
}

// Distance returns the port's good distance for g, 0 when not traded
func (p *Port) Distance(g Good) float64 {
	return p.Goods[g].Distance
}

func (p *Port) Sells(g Good) bool { return p.Status(g) == StatusSells }
func (p *Port) Buys(g Good) bool  { return p.Status(g) == StatusBuys }

// RecordedGoods lists the goods the port trades or holds a distance weight
// for, in id order. Nothing only appears through its empty-leg distance.
func (p *Port) RecordedGoods() []Good {
	goods := make([]Good, 0, len(p.Goods))
	for g, info := range p.Goods {
		if info.Status != StatusNone || info.Distance != 0 {
			goods = append(goods, g)
		}
	}
	sort.Slice(goods, func(i, j int) bool { return goods[i] < goods[j] })
	return goods
}
