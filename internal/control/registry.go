package control

import (
	"sort"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

var registry = map[string]func(dim, k int, seed uint64) dynamo.Controller{
	"none":   func(dim, k int, seed uint64) dynamo.Controller { return NewNone(dim) },
	"random": func(dim, k int, seed uint64) dynamo.Controller { return NewRandom(dim, seed) },
	"wave":   func(dim, k int, seed uint64) dynamo.Controller { return NewWave(dim, k) },
	"manual": func(dim, k int, seed uint64) dynamo.Controller { return NewManual(dim) },
}

// New builds a policy by name for actions of length dim made of blocks of
// k control points.
func New(name string, dim, k int, seed uint64) (dynamo.Controller, error) {
	build, ok := registry[name]
	if !ok {
		return nil, dynamo.NewConfigError("policy", "unknown policy %q, have %v", name, Names())
	}
	return build(dim, k, seed), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
