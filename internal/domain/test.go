package domain

import "strings"

// Method is a method declared inside a PHP class body
type Method struct {
	Name       string
	Visibility string // public, protected or private; empty means public
	Static     bool
	Abstract   bool
	DocComment string   // Raw /** ... */ block directly preceding the method, if any
	Attributes []string // PHP 8 attribute names, e.g. "Test" for #[Test]
	Line       int
}

// IsPublic reports whether the method is callable from outside the class
func (m Method) IsPublic() bool {
	return m.Visibility == "" || m.Visibility == "public"
}

// Entity represents a test-like grouping (a PHP class) declared in a source unit
type Entity struct {
	Name     string   // Class name as declared
	Extends  string   // Parent class, if any
	Abstract bool     // Declared abstract
	File     string   // Source file that declared the class
	Line     int      // Line of the class keyword
	Methods  []Method // All methods, in declaration order
	Cases    []string // Runnable test method names, in declaration order
}

// Method returns the method with the given name (PHP method names are case-insensitive)
func (e *Entity) Method(name string) (Method, bool) {
	for _, m := range e.Methods {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Method{}, false
}
