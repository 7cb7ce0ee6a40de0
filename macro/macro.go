// Package macro provides the registry that declares which macros exist and
// what kind of body each of them carries.
package macro

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rgonek/uniast-converter/uniast"
)

// ErrInvalidDefinition is returned for malformed macro definitions.
var ErrInvalidDefinition = errors.New("invalid macro definition")

// Definition declares a macro.
type Definition struct {
	ID   string               `yaml:"id" json:"id"`
	Body uniast.MacroBodyKind `yaml:"body" json:"body"`
}

// Validate checks the macro id and body kind.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDefinition)
	}
	if strings.ContainsAny(d.ID, " \t\r\n{}/") {
		return fmt.Errorf("%w: id %q contains whitespace, braces or slashes", ErrInvalidDefinition, d.ID)
	}
	if !d.Body.Valid() {
		return fmt.Errorf("%w: macro %q has unknown body kind %q", ErrInvalidDefinition, d.ID, d.Body)
	}
	return nil
}

// Registry answers macro lookups synchronously.
type Registry interface {
	Lookup(id string) (Definition, bool)
}

// Catalog is an in-memory Registry, safe for concurrent use.
type Catalog struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewCatalog creates a catalog holding defs.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if err := c.Register(def); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on invalid definitions.
func MustCatalog(defs ...Definition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Register adds a definition. Registering the same id twice is an error.
func (c *Catalog) Register(def Definition) error {
	if def.Body == "" {
		def.Body = uniast.BodyNone
	}
	if err := def.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.defs[def.ID]; exists {
		return fmt.Errorf("%w: macro %q registered twice", ErrInvalidDefinition, def.ID)
	}
	c.defs[def.ID] = def
	return nil
}

// Lookup implements Registry.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[id]
	return def, ok
}

// Definitions returns all definitions sorted by id.
func (c *Catalog) Definitions() []Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	defs := make([]Definition, 0, len(c.defs))
	for _, def := range c.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Empty is a Registry without any macro.
var Empty Registry = emptyRegistry{}

type emptyRegistry struct{}

func (emptyRegistry) Lookup(string) (Definition, bool) { return Definition{}, false }
