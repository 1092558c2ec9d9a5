package discovery

import (
	"errors"
	"fmt"
	"strings"

	"pth/internal/domain"
)

// ErrNoTestEntity is returned when no loaded class name ends in "Test"
var ErrNoTestEntity = errors.New("no class whose name ends in \"Test\" was found")

// Registry holds the units loaded during one invocation and the classes they declare
type Registry struct {
	units    []*Unit
	byPath   map[string]*Unit
	entities map[string]*domain.Entity // keyed by lower-cased class name
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byPath:   make(map[string]*Unit),
		entities: make(map[string]*domain.Entity),
	}
}

// Add registers u and its classes. PHP class names are case-insensitive and
// may be declared only once.
func (r *Registry) Add(u *Unit) error {
	if _, ok := r.byPath[u.Path]; ok {
		return fmt.Errorf("unit %s already registered", u.Path)
	}
	for _, e := range u.Entities {
		key := strings.ToLower(e.Name)
		if prev, ok := r.entities[key]; ok {
			return fmt.Errorf("cannot declare class %s in %s: already declared in %s", e.Name, u.Path, prev.File)
		}
	}
	for _, e := range u.Entities {
		r.entities[strings.ToLower(e.Name)] = e
	}
	r.units = append(r.units, u)
	r.byPath[u.Path] = u
	return nil
}

// Unit returns the unit loaded from path.
func (r *Registry) Unit(path string) (*Unit, bool) {
	u, ok := r.byPath[path]
	return u, ok
}

// Entity returns the class with the given name.
func (r *Registry) Entity(name string) (*domain.Entity, bool) {
	e, ok := r.entities[strings.ToLower(name)]
	return e, ok
}

// Entities returns every registered class in load order.
func (r *Registry) Entities() []*domain.Entity {
	var all []*domain.Entity
	for _, u := range r.units {
		all = append(all, u.Entities...)
	}
	return all
}

// SelectEntity picks the test entity: the last class whose lower-cased name ends in "test"
func SelectEntity(entities []*domain.Entity) (string, error) {
	selected := ""
	for _, e := range entities {
		if strings.HasSuffix(strings.ToLower(e.Name), "test") {
			selected = e.Name
		}
	}
	if selected == "" {
		return "", ErrNoTestEntity
	}
	return selected, nil
}

// Cases returns the test cases of e followed by those it inherits from
// registered parent classes. A method redeclared in a subclass hides the
// parent's declaration.
func (r *Registry) Cases(e *domain.Entity) []string {
	var cases []string
	declared := make(map[string]bool)
	visited := make(map[string]bool)
	for cur := e; cur != nil; cur = r.parent(cur) {
		key := strings.ToLower(cur.Name)
		if visited[key] {
			break
		}
		visited[key] = true
		for _, m := range cur.Methods {
			name := strings.ToLower(m.Name)
			if declared[name] {
				continue
			}
			declared[name] = true
			if isTestMethod(m) {
				cases = append(cases, m.Name)
			}
		}
	}
	return cases
}

// parent returns the registered class e extends. PHPUnit's own base classes
// and classes that were never loaded end the chain.
func (r *Registry) parent(e *domain.Entity) *domain.Entity {
	name := strings.TrimPrefix(e.Extends, `\`)
	if name == "" || strings.HasPrefix(strings.ToLower(name), `phpunit\`) {
		return nil
	}
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	p, ok := r.Entity(name)
	if !ok {
		return nil
	}
	return p
}
