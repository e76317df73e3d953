package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traderoute/internal/database"
	"traderoute/internal/world"
)

func seedDatabase(t *testing.T) string {
	t.Helper()
	w := world.NewWorld()
	w.Races[1] = world.Race{ID: 1, Name: "Human"}

	a := world.NewSector(1, 1)
	a.AddConnection(world.ConnRight, 2)
	a.Port = world.NewPort(1, 1)
	a.Port.SetGood(world.Ore, world.StatusSells, 3)

	b := world.NewSector(2, 1)
	b.AddConnection(world.ConnLeft, 1)
	b.Port = world.NewPort(1, 1)
	b.Port.SetGood(world.Ore, world.StatusBuys, 5)

	w.AddSector(a)
	w.AddSector(b)

	path := filepath.Join(t.TempDir(), "world.db")
	db, err := database.Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, db.SaveWorld(context.Background(), w))
	require.NoError(t, db.Close())
	return path
}

func TestRunGeneratesAndStoresRoutes(t *testing.T) {
	path := seedDatabase(t)

	var out, errOut bytes.Buffer
	err := run([]string{"-db", path, "-routes", "5", "-save", "-ranking", "money", "-log-level", "error"}, &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "routes by money")
	assert.Contains(t, out.String(), "[sector=1] -> [sector=2] (1 turns) Ore")
	assert.Contains(t, out.String(), "money 168.00")

	out.Reset()
	err = run([]string{"-db", path, "-stored", "-ranking", "money", "-log-level", "error"}, &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "#1  money 168.00")
	assert.Contains(t, out.String(), "[sector=2] -> [sector=1] (1 turns) Nothing")
}

func TestRunEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	err := run([]string{"-db", path, "-log-level", "error"}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "holds no world")
}

func TestRunWritesDotMap(t *testing.T) {
	path := seedDatabase(t)
	dot := filepath.Join(t.TempDir(), "loops.dot")

	err := run([]string{"-db", path, "-render", dot, "-log-level", "error"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ore")
}

func TestParseFlagsOverridesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_ports: 3\nnum_routes: 40\ngoods: [Ore]\n"), 0o644))

	cfg, opts, err := parseFlags([]string{"-config", cfgPath, "-routes", "7", "-races", "1, 4", "-goods", "Wood,Food"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, cfgPath, opts.configPath)
	assert.Equal(t, 3, cfg.MaxPorts, "config value kept")
	assert.Equal(t, 7, cfg.NumRoutes, "flag wins over config")
	assert.Equal(t, []int{1, 4}, cfg.Races)
	assert.Equal(t, []string{"Wood", "Food"}, cfg.Goods)
}

func TestParseFlagsRejectsBadValues(t *testing.T) {
	_, _, err := parseFlags([]string{"-races", "1,x"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, _, err = parseFlags([]string{"-max-ports", "0"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &out, &bytes.Buffer{}))
	assert.Contains(t, out.String(), "traderoute dev")
}
