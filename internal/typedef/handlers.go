package typedef

import (
	"fmt"

	"github.com/arcflow/rpctyping/internal/rpcerrors"
)

// ClassHandler is the per-class strategy for reading a type declaration's
// class-specific shape out of raw, already-YAML-decoded member data.
// Validation, serialization, and deserialization of *instances* of a type
// are handled downstream by internal/validate and internal/wire, which
// dispatch on Class directly — recursing into nested member types needs
// the registry and the instantiator, and threading both through this
// interface would just reproduce the registry's own API on a second
// object. ClassHandler stays scoped to what the Type Reader needs: "given
// this class, how do I turn a raw member entry into a Member?"
type ClassHandler interface {
	Class() Class
	ParseMember(name string, raw map[string]any) (*Member, error)
}

type structHandler struct{}

func (structHandler) Class() Class { return ClassStruct }

func (structHandler) ParseMember(name string, raw map[string]any) (*Member, error) {
	return parseFieldMember(name, raw)
}

type unionHandler struct{}

func (unionHandler) Class() Class { return ClassUnion }

func (unionHandler) ParseMember(name string, raw map[string]any) (*Member, error) {
	return parseFieldMember(name, raw)
}

func parseFieldMember(name string, raw map[string]any) (*Member, error) {
	typeExpr, ok := raw["type"].(string)
	if !ok || typeExpr == "" {
		return nil, rpcerrors.New(rpcerrors.PAR003, "parse", fmt.Sprintf("member %q missing type", name))
	}
	desc, _ := raw["description"].(string)
	constraints, err := parseConstraints(name, raw["constraints"])
	if err != nil {
		return nil, err
	}
	return &Member{Name: name, TypeExpr: typeExpr, Description: desc, Constraints: constraints}, nil
}

func parseConstraints(memberName string, raw any) ([]Constraint, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, nil
	}
	out := make([]Constraint, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, rpcerrors.New(rpcerrors.PAR003, "parse", fmt.Sprintf("constraint on %q is not a mapping", memberName))
		}
		name, ok := m["name"].(string)
		if !ok || name == "" {
			return nil, rpcerrors.New(rpcerrors.PAR003, "parse", fmt.Sprintf("constraint on %q missing name", memberName))
		}
		args, _ := m["args"].(map[string]any)
		out = append(out, Constraint{Name: name, Args: args})
	}
	return out, nil
}

type enumHandler struct{}

func (enumHandler) Class() Class { return ClassEnum }

func (enumHandler) ParseMember(name string, _ map[string]any) (*Member, error) {
	return nil, rpcerrors.New(rpcerrors.TYP004, "parse", "enum type "+name+" declares values, not members")
}

type typedefHandler struct{}

func (typedefHandler) Class() Class { return ClassTypedef }

func (typedefHandler) ParseMember(name string, _ map[string]any) (*Member, error) {
	return nil, rpcerrors.New(rpcerrors.TYP004, "parse", "typedef "+name+" has no members")
}

type builtinHandler struct{}

func (builtinHandler) Class() Class { return ClassBuiltin }

func (builtinHandler) ParseMember(name string, _ map[string]any) (*Member, error) {
	return nil, rpcerrors.New(rpcerrors.TYP004, "parse", "builtin type "+name+" has no members")
}

// Handlers is the fixed registry of per-class strategies, keyed by Class.
var Handlers = map[Class]ClassHandler{
	ClassStruct:  structHandler{},
	ClassUnion:   unionHandler{},
	ClassEnum:    enumHandler{},
	ClassTypedef: typedefHandler{},
	ClassBuiltin: builtinHandler{},
}

// HandlerFor looks up the ClassHandler registered for class, returning a
// structured TYP004 error if the class is unrecognized.
func HandlerFor(class Class) (ClassHandler, error) {
	h, ok := Handlers[class]
	if !ok {
		return nil, rpcerrors.New(rpcerrors.TYP004, "parse", "unknown declaration class: "+string(class))
	}
	return h, nil
}
