package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
)

// 0 -> 2 -> 3 is 200 m long, 0 -> 1 -> 3 is 400 m long
const blockFmi = `4
4
0 52.5 13.4
1 52.501 13.4
2 52.5 13.401
3 52.501 13.401
0 1 200
1 3 200
0 2 100
2 3 100
`

func writeSetup(t *testing.T) options {
	dir := t.TempDir()
	graphFile := filepath.Join(dir, "block.fmi")
	require.NoError(t, os.WriteFile(graphFile, []byte(blockFmi), 0o644))
	configFile := filepath.Join(dir, "config.yaml")
	config := "graph: " + graphFile + "\ntraffic:\n  provider: constant\n  constant-speed: 30\n"
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0o644))
	return options{configFile: configFile, from: "0", to: "3"}
}

func TestRun(t *testing.T) {
	opts := writeSetup(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), zap.NewNop(), opts, &out))

	report := out.String()
	assert.Contains(t, report, "Routes from 0 to 3 (traffic)")
	assert.Contains(t, report, "Dijkstra")
	// 200 m at 30 km/h
	assert.Contains(t, report, "24.00")
	assert.Contains(t, report, "200.0")

	opts.from, opts.to, opts.mode = "52.5,13.4", "52.501, 13.401", "distance"
	out.Reset()
	require.NoError(t, run(context.Background(), zap.NewNop(), opts, &out))
	assert.Contains(t, out.String(), "Routes from 0 to 3 (distance)")
	assert.Contains(t, out.String(), "200.00")
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	opts := writeSetup(t)
	opts.from = "start"
	assert.ErrorContains(t, run(ctx, zap.NewNop(), opts, &out), "origin")

	opts = writeSetup(t)
	opts.to = "52.5,east"
	assert.ErrorContains(t, run(ctx, zap.NewNop(), opts, &out), "destination")

	opts = writeSetup(t)
	opts.mode = "scenic"
	assert.ErrorIs(t, run(ctx, zap.NewNop(), opts, &out), cost.ErrUnknownMode)

	opts = writeSetup(t)
	opts.graphFile = filepath.Join(t.TempDir(), "missing.fmi")
	assert.ErrorIs(t, run(ctx, zap.NewNop(), opts, &out), os.ErrNotExist)

	opts = writeSetup(t)
	opts.configFile = filepath.Join(t.TempDir(), "missing.yaml")
	assert.ErrorIs(t, run(ctx, zap.NewNop(), opts, &out), os.ErrNotExist)

	assert.Empty(t, out.String())
}
