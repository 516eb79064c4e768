package integrators

import (
	"sort"

	"github.com/GazzolaLab/Elastica-RL-control/internal/dynamo"
)

var factories = map[string]func() dynamo.Integrator{
	"position_verlet": func() dynamo.Integrator { return NewPositionVerlet() },
	"verlet":          func() dynamo.Integrator { return NewVerlet() },
	"leapfrog":        func() dynamo.Integrator { return NewLeapfrog() },
	"rk4":             func() dynamo.Integrator { return NewRK4() },
}

// New returns a fresh integrator by name. Integrators keep scratch buffers,
// so every rod gets its own instance.
func New(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = "position_verlet"
	}
	f, ok := factories[name]
	if !ok {
		return nil, dynamo.NewConfigError("integrator", "unknown integrator: %s", name)
	}
	return f(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

