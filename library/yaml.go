package library

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/feather-lang/gmk"
)

// The yaml pack reads configuration files into make:
//
//	VERSION := $(yaml-get release.yaml,version)
//	TARGETS := $(yaml-keys release.yaml,artifacts)
//
// yaml-get walks a dotted path of mapping keys and sequence indexes and
// returns the scalar there. yaml-keys returns the keys of the mapping at
// the path, space-separated and sorted, ready for make's word functions;
// with no path it lists the top-level keys.
func init() {
	gmk.RegisterLibrary(gmk.Library{
		Name: "yaml",
		Install: func(m *gmk.Make) error {
			if err := m.Export("yaml-get", yamlGet); err != nil {
				return err
			}
			return m.Export("yaml-keys", yamlKeys)
		},
	})
}

func yamlGet(file, path string) (string, error) {
	node, err := yamlWalk(file, path)
	if err != nil {
		return "", err
	}
	switch node.(type) {
	case map[string]any, []any:
		return "", fmt.Errorf("yaml-get: %s in %s is not a scalar", path, file)
	}
	return gmk.Display(node), nil
}

func yamlKeys(file string, path *string) (string, error) {
	at := ""
	if path != nil {
		at = *path
	}
	node, err := yamlWalk(file, at)
	if err != nil {
		return "", err
	}
	mapping, ok := node.(map[string]any)
	if !ok {
		return "", fmt.Errorf("yaml-keys: %s in %s is not a mapping", at, file)
	}
	keys := make([]string, 0, len(mapping))
	for key := range mapping {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.Join(keys, " "), nil
}

// yamlWalk loads file and follows the dotted path: mapping keys by name,
// sequence elements by number. An empty path is the document root.
func yamlWalk(file, path string) (any, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var node any
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if path == "" {
		return node, nil
	}
	for _, seg := range strings.Split(path, ".") {
		switch cur := node.(type) {
		case map[string]any:
			child, ok := cur[seg]
			if !ok {
				return nil, fmt.Errorf("%s: no key %q in %s", file, seg, path)
			}
			node = child
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(cur) {
				return nil, fmt.Errorf("%s: no element %q in %s", file, seg, path)
			}
			node = cur[idx]
		default:
			return nil, fmt.Errorf("%s: %q has nothing under it in %s", file, seg, path)
		}
	}
	return node, nil
}
