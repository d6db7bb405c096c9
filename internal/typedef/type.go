// Package typedef models the IDL's declared Type and Member shapes and
// the per-class strategy (struct/union/enum/typedef/builtin) used to
// parse their members. Validation and (de)serialization are not part of
// that strategy: internal/validate and internal/wire switch on Class
// themselves. It holds no registry state of its own — internal/typereg
// owns the namespaced collections of Types.
package typedef

import "fmt"

// Class identifies which of the five declaration strategies a Type uses.
type Class string

const (
	ClassStruct  Class = "struct"
	ClassUnion   Class = "union"
	ClassEnum    Class = "enum"
	ClassTypedef Class = "typedef"
	ClassBuiltin Class = "builtin"
)

// Constraint is one named-validator reference attached to a member, e.g.
// {Name: "min-length", Args: {"value": 1}}. internal/validate looks these
// up in its (wireType, constraintName) validator registry.
type Constraint struct {
	Name string
	Args map[string]any
}

// Member is a single struct/union field, keyed by name with a declared
// type expression ("string", "List<Person>", a generic variable "T", ...).
type Member struct {
	Name        string
	TypeExpr    string
	Description string
	Constraints []Constraint
}

// Type is a single IDL type declaration: a struct, union, enum, typedef,
// or builtin, optionally generic and optionally inheriting from a parent
// struct.
type Type struct {
	Name        string
	Namespace   string // the defining File's namespace
	Class       Class
	GenericVars []string // declared generic variable names, in order
	Inherits    string   // parent Type name, struct/union only
	ForceType   string   // typedef target type expression ("type:" field)
	Description string
	Origin      string // "path:line"

	Members     []*Member // ordered, struct/union
	memberIndex map[string]*Member

	EnumValues []string // enum only, in declaration order
}

// New creates an empty Type of the given class.
func New(name, namespace string, class Class) *Type {
	return &Type{
		Name:        name,
		Namespace:   namespace,
		Class:       class,
		memberIndex: make(map[string]*Member),
	}
}

// Arity is the number of declared generic variables.
func (t *Type) Arity() int { return len(t.GenericVars) }

// IsGeneric reports whether this type declares any generic variables.
func (t *Type) IsGeneric() bool { return len(t.GenericVars) > 0 }

// AddMember appends a member, rejecting duplicate names within this type.
func (t *Type) AddMember(m *Member) error {
	if t.memberIndex == nil {
		t.memberIndex = make(map[string]*Member)
	}
	if _, exists := t.memberIndex[m.Name]; exists {
		return fmt.Errorf("duplicate member %q on type %s", m.Name, t.Name)
	}
	t.Members = append(t.Members, m)
	t.memberIndex[m.Name] = m
	return nil
}

// MemberByName looks up a member declared directly on this type (not
// walking Inherits — callers resolve inheritance through the registry,
// which knows how to look up the parent Type by name).
func (t *Type) MemberByName(name string) (*Member, bool) {
	m, ok := t.memberIndex[name]
	return m, ok
}

// QualifiedName returns "namespace/Name", the form used as a registry key
// and inside canonical forms for disambiguation across files.
func (t *Type) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "/" + t.Name
}
