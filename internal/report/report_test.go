package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"traderoute/internal/routes"
	"traderoute/internal/world"
)

func oreLoop() routes.Route {
	return routes.NewChain(
		&routes.OneWayRoute{SellSector: 1, BuySector: 2, SellDistance: 3, BuyDistance: 5, Distance: world.Distance{Turns: 2}, Good: world.Ore},
		&routes.OneWayRoute{SellSector: 2, BuySector: 1, Distance: world.Distance{Turns: 2}, Good: world.Nothing},
	)
}

func sampleResult() *routes.Result {
	res := &routes.Result{
		Exp:     routes.NewStore(routes.RankExperience, 10),
		Money:   routes.NewStore(routes.RankMoney, 10),
		Origins: 1234,
		Edges:   3,
	}
	res.Exp.Add(oreLoop())
	res.Money.Add(oreLoop())
	return res
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, sampleResult(), routes.RankMoney, DefaultOptions()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1 routes by money from 1,234 origins and 3 legs in 0s", lines[0])
	assert.Equal(t, "#1  money 84.00  exp 2.00  money 84.00  2 legs", lines[1])
	assert.Equal(t, "    [sector=1] -> [sector=2] (2 turns) Ore", lines[2])
	assert.Equal(t, "    [sector=2] -> [sector=1] (2 turns) Nothing", lines[3])
}

func TestWriteRoutesPlainAndLimited(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Limit: 1, Locale: language.English}
	require.NoError(t, WriteRoutes(&buf, []routes.Route{oreLoop(), oreLoop()}, routes.RankExperience, opts))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "#"))
	assert.Contains(t, out, "    1 -> 2 (2 turns) Ore\n")
	assert.NotContains(t, out, "[sector=")
}

func TestWriteRoutesEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRoutes(&buf, nil, routes.RankExperience, DefaultOptions()))
	assert.Empty(t, buf.String())
}

func TestParseLocale(t *testing.T) {
	assert.Equal(t, language.German, ParseLocale("de"))
	assert.Equal(t, language.English, ParseLocale("not a locale!"))
}
