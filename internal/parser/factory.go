package parser

import (
	"sort"

	"github.com/threadscript/ts/internal/code"
)

// Factory parses src (named file) into a script, per one syntax
// variant.
type Factory func(file string, src []byte) (*code.Script, error)

var registry = map[string]Factory{
	"canon": Parse,
}

// Create returns the parser registered for name (§6 "Syntax factory").
func Create(name string) (Factory, bool) {
	f, ok := registry[name]
	return f, ok
}

// Names enumerates registered syntax variants in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
