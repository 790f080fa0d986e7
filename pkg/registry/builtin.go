package registry

import (
	_ "embed"
	"fmt"
)

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns the demo catalog bundled with tg. It matches the pages of
// the terminal playground.
func Builtin() *Registry {
	tours, err := Parse(builtinYAML, false)
	if err != nil {
		panic(fmt.Sprintf("builtin tours: %v", err))
	}
	return MustNew(tours...)
}
