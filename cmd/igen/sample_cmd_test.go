package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unsat/igen/config"
	"github.com/unsat/igen/tree"
)

func TestSampleExitCodes(t *testing.T) {
	dir := t.TempDir()
	domPath := filepath.Join(dir, "dom.txt")
	require.NoError(t, os.WriteFile(domPath, []byte("A a1 a2\nB b1 b2 b3\n"), 0o600))

	dom, err := loadDomain(domPath)
	require.NoError(t, err)
	hit, err := config.Parse(dom, "A=a1 B=b1")
	require.NoError(t, err)
	miss, err := config.Parse(dom, "A=a2 B=b2")
	require.NoError(t, err)
	tr, err := tree.Build(dom, []*config.Config{hit}, []*config.Config{miss})
	require.NoError(t, err)
	treePath := filepath.Join(dir, "tree.json")
	require.NoError(t, outputTree(treePath, tr))

	cfg := &sampleCmdConfig{rootCmdConfig: &rootCmdConfig{}, domainInput: domPath, treeInput: treePath, count: 2}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0, cfg.sample(context.Background()))

	cfg.miss = true
	assert.Equal(t, 0, cfg.sample(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 5, cfg.sample(ctx))

	cfg.treeInput = filepath.Join(dir, "missing.json")
	assert.Equal(t, 3, cfg.sample(context.Background()))

	cfg.domainInput = filepath.Join(dir, "missing.txt")
	assert.Equal(t, 2, cfg.sample(context.Background()))
}
