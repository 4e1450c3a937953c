package ast

import (
	"fmt"
	"sort"

	"gopkg.keel-lang.org/keelc/internal/exc"
	"gopkg.keel-lang.org/keelc/internal/idl"
	"gopkg.keel-lang.org/keelc/internal/optional"
)

// Module is a named namespace of functions and nested modules. A module built
// from a source file has the span of the file content; a module built from a
// directory has an empty span.
type Module struct {
	Name       Ident
	SubModules map[string]*Module
	Functions  map[string]Func
	Span       idl.Span
}

// NewModule builds a module from the content of a source file. Two functions
// with the same name are a CodeDuplicateDefinition error located at the
// second one.
func NewModule(name Ident, content ModuleContent) (*Module, error) {
	m := &Module{
		Name:       name,
		SubModules: map[string]*Module{},
		Functions:  make(map[string]Func, len(content.Functions)),
		Span:       content.Span,
	}
	for _, f := range content.Functions {
		if _, ok := m.Functions[f.Name.Name]; ok {
			return nil, duplicate("function", f.Name)
		}
		m.Functions[f.Name.Name] = f
	}
	return m, nil
}

// NewDirModule returns an empty module to collect sub-modules into.
func NewDirModule(name string) *Module {
	return &Module{
		Name:       Ident{Name: name},
		SubModules: map[string]*Module{},
		Functions:  map[string]Func{},
	}
}

// AddSubModule adds sub under its own name. Sub-module names are unique
// within a module, and a sub-module may not shadow a function.
func (self *Module) AddSubModule(sub *Module) error {
	name := sub.Name.Name
	if _, ok := self.SubModules[name]; ok {
		return duplicate("module", sub.Name)
	}
	if _, ok := self.Functions[name]; ok {
		return duplicate("module", sub.Name)
	}
	self.SubModules[name] = sub
	return nil
}

// FunctionNames returns the function names in sorted order.
func (self *Module) FunctionNames() []string {
	return sortedKeys(self.Functions)
}

// SubModuleNames returns the sub-module names in sorted order.
func (self *Module) SubModuleNames() []string {
	return sortedKeys(self.SubModules)
}

func sortedKeys[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func duplicate(kind string, name Ident) error {
	loc := exc.Location{}
	if !name.Span.Empty() || name.Span.Start.Line != 0 {
		loc.Span = optional.Some(name.Span)
	}
	return exc.New(loc, exc.CodeDuplicateDefinition, fmt.Sprintf("duplicate %s '%s'", kind, name.Name))
}
