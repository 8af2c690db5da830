package registrar

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-logr/logr"
)

// Factory is a constructor function that registrar packages register to
// create themselves.
type Factory func(log logr.Logger, settings map[string]string) (Client, error)

var (
	mu        sync.Mutex
	factories = make(map[string]Factory)
)

// Register is called by registrar packages in their init() to self-register.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("registrar: %q already registered", name))
	}
	factories[name] = f
}

// New looks up the named registrar in the registry and creates it.
func New(name string, log logr.Logger, settings map[string]string) (Client, error) {
	mu.Lock()
	f, ok := factories[name]
	mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unsupported registrar: %q (registered: %v)", name, Names())
	}
	return f(log, settings)
}

// Names returns the registered registrar names, sorted.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
