package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/unsat/igen/dataset"
	"github.com/unsat/igen/dataset/csv"
	"github.com/unsat/igen/domain"
	domainyaml "github.com/unsat/igen/domain/yaml"
	"github.com/unsat/igen/expr"
	"github.com/unsat/igen/tree"
	treejson "github.com/unsat/igen/tree/json"
)

// loadDomain reads a domain from a YAML (.yml, .yaml) or plain text file.
func loadDomain(path string) (*domain.Domain, error) {
	ctx := expr.NewContext()
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return domainyaml.ReadDomainFromFile(ctx, path)
	}
	return domain.ParseFile(ctx, path)
}

func loadSet(path string, d *domain.Domain) (*dataset.Set, error) {
	return csv.ReadSetFromFilePath(path, d)
}

func loadTree(path string, d *domain.Domain, opts ...tree.Option) (*tree.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree in JSON from %s: %w", path, err)
	}
	defer f.Close()
	t, err := treejson.ReadJSONTree(f, d, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing tree in JSON from %s: %w", path, err)
	}
	return t, nil
}

func outputTree(path string, t *tree.Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s to write tree: %w", path, err)
	}
	defer f.Close()
	if err := treejson.WriteJSONTree(t, f); err != nil {
		return fmt.Errorf("writing tree to %s: %w", path, err)
	}
	return nil
}
