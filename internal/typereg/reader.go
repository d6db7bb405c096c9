package typereg

import (
	"fmt"

	"github.com/arcflow/rpctyping/internal/idl"
	"github.com/arcflow/rpctyping/internal/iface"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/typedef"
	"github.com/arcflow/rpctyping/internal/typeexpr"
)

var classKeywords = map[string]typedef.Class{
	"struct":  typedef.ClassStruct,
	"union":   typedef.ClassUnion,
	"enum":    typedef.ClassEnum,
	"typedef": typedef.ClassTypedef,
	"builtin": typedef.ClassBuiltin,
}

// readType materializes a typedef.Type from a raw declaration body. The
// class is primarily the key's own class-word (struct/union/enum/
// typedef), dispatched directly per class-word string. When the key
// instead uses the generic "type" class-word, the class is resolved from
// the body's "type" field: a recognized class keyword selects that class,
// any other value is taken as a typedef target, forcing Class to typedef
// — mirroring rpct_read_type's typedef-forcing rule.
func readType(decl *idl.RawDecl, namespace, path string) (*typedef.Type, error) {
	expr, err := typeexpr.Parse(decl.Name)
	if err != nil {
		return nil, err
	}

	class, isKeyword, forcedTypedefTarget, err := resolveClass(decl, expr.Head)
	if err != nil {
		return nil, err
	}

	t := typedef.New(expr.Head, namespace, class)
	t.GenericVars = expr.Args
	t.Origin = fmt.Sprintf("%s:%d", path, decl.Line)

	if desc, ok := decl.Body["description"].(string); ok {
		t.Description = desc
	}
	if inherits, ok := decl.Body["inherits"].(string); ok {
		t.Inherits = inherits
	}

	if !isKeyword {
		t.Class = typedef.ClassTypedef
		t.ForceType = forcedTypedefTarget
		return t, nil
	}

	switch class {
	case typedef.ClassStruct, typedef.ClassUnion:
		handler, err := typedef.HandlerFor(class)
		if err != nil {
			return nil, err
		}
		members, _ := decl.Body["members"].(map[string]any)
		for name, raw := range members {
			rawMap, ok := raw.(map[string]any)
			if !ok {
				return nil, rpcerrors.New(rpcerrors.PAR003, "parse", fmt.Sprintf("member %q of %s is not a mapping", name, expr.Head))
			}
			m, err := handler.ParseMember(name, rawMap)
			if err != nil {
				return nil, err
			}
			if err := t.AddMember(m); err != nil {
				return nil, rpcerrors.New(rpcerrors.TYP002, "parse", err.Error())
			}
		}
	case typedef.ClassEnum:
		values, _ := decl.Body["values"].([]any)
		for _, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, rpcerrors.New(rpcerrors.PAR003, "parse", "enum "+expr.Head+" has a non-string value")
			}
			t.EnumValues = append(t.EnumValues, s)
		}
	case typedef.ClassTypedef:
		target, ok := decl.Body["type"].(string)
		if !ok {
			return nil, rpcerrors.New(rpcerrors.TYP004, "parse", "typedef "+expr.Head+" missing target type")
		}
		t.ForceType = target
	case typedef.ClassBuiltin:
		// no further fields
	}
	return t, nil
}

// resolveClass picks the type's class. An explicit class-word on the key
// itself (struct/union/enum/typedef) wins outright and dispatches by that
// string, per 4.4's "reader dispatches by the class-word string". The
// generic "type" class-word instead resolves the class from the body's
// own "type" field: a recognized class keyword selects that class,
// otherwise the class is forced to typedef with that field as the
// typedef's target (forcedTarget is only meaningful when isKeyword is
// false).
func resolveClass(decl *idl.RawDecl, typeName string) (class typedef.Class, isKeyword bool, forcedTarget string, err error) {
	if decl.ClassWord != "" && decl.ClassWord != "type" {
		c, ok := classKeywords[decl.ClassWord]
		if !ok {
			return 0, false, "", rpcerrors.New(rpcerrors.TYP004, "parse", "type "+typeName+" has unknown class-word "+decl.ClassWord)
		}
		return c, true, "", nil
	}

	rawClass, _ := decl.Body["type"].(string)
	if c, ok := classKeywords[rawClass]; ok {
		return c, true, "", nil
	}
	if rawClass == "" {
		return 0, false, "", rpcerrors.New(rpcerrors.TYP004, "parse", "type "+typeName+" missing \"type\" field")
	}
	return 0, false, rawClass, nil
}

// readInterface materializes an iface.Interface from a raw declaration
// body, including its nested method/property/event sub-declarations.
func readInterface(decl *idl.RawDecl, namespace, path string) (*iface.Interface, error) {
	i := iface.New(decl.Name, namespace)
	i.Origin = fmt.Sprintf("%s:%d", path, decl.Line)

	if desc, ok := decl.Body["description"].(string); ok {
		i.Description = desc
	}
	if inherits, ok := decl.Body["inherits"].(string); ok {
		i.Inherits = inherits
	}

	for key, raw := range decl.Body {
		kind, _, name, err := typeexpr.ParseKey(key)
		if err != nil {
			continue // not a method/property/event key, e.g. "description"
		}
		body, ok := raw.(map[string]any)
		if !ok {
			return nil, rpcerrors.New(rpcerrors.PAR003, "parse", fmt.Sprintf("%s.%s is not a mapping", i.Name, key))
		}

		switch kind {
		case typeexpr.DeclMethod:
			m, err := readMethod(name, body)
			if err != nil {
				return nil, err
			}
			if err := i.AddMethod(m); err != nil {
				return nil, rpcerrors.New(rpcerrors.TYP002, "parse", err.Error())
			}
		case typeexpr.DeclProperty:
			p, err := readProperty(name, body)
			if err != nil {
				return nil, err
			}
			if err := i.AddProperty(p); err != nil {
				return nil, rpcerrors.New(rpcerrors.TYP002, "parse", err.Error())
			}
		case typeexpr.DeclEvent:
			e, err := readEvent(name, body)
			if err != nil {
				return nil, err
			}
			if err := i.AddEvent(e); err != nil {
				return nil, rpcerrors.New(rpcerrors.TYP002, "parse", err.Error())
			}
		}
	}
	return i, nil
}

func readMethod(name string, body map[string]any) (*iface.Method, error) {
	args, err := readMembers(body, "args")
	if err != nil {
		return nil, err
	}
	returns, err := readReturns(body)
	if err != nil {
		return nil, err
	}
	return &iface.Method{Name: name, Args: args, Returns: returns}, nil
}

func readProperty(name string, body map[string]any) (*iface.Property, error) {
	typeExpr, ok := body["type"].(string)
	if !ok || typeExpr == "" {
		return nil, rpcerrors.New(rpcerrors.PAR003, "parse", "property "+name+" missing type")
	}
	readOnly, _ := body["read-only"].(bool)
	return &iface.Property{Name: name, Type: typeExpr, ReadOnly: readOnly}, nil
}

func readEvent(name string, body map[string]any) (*iface.Event, error) {
	args, err := readMembers(body, "args")
	if err != nil {
		return nil, err
	}
	return &iface.Event{Name: name, Args: args}, nil
}

func readMembers(body map[string]any, field string) ([]iface.Member, error) {
	raw, ok := body[field].(map[string]any)
	if !ok {
		return nil, nil
	}
	var members []iface.Member
	for name, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, rpcerrors.New(rpcerrors.PAR003, "parse", fmt.Sprintf("%s.%s is not a mapping", field, name))
		}
		typeExpr, ok := m["type"].(string)
		if !ok || typeExpr == "" {
			return nil, rpcerrors.New(rpcerrors.PAR003, "parse", field+"."+name+" missing type")
		}
		members = append(members, iface.Member{Name: name, Type: typeExpr})
	}
	return members, nil
}

// readReturns handles the common single-value return shape ("returns:
// {type: string}") alongside the rarer named-tuple-of-returns shape.
func readReturns(body map[string]any) ([]iface.Member, error) {
	raw, ok := body["returns"].(map[string]any)
	if !ok {
		return nil, nil
	}
	if typeExpr, ok := raw["type"].(string); ok {
		return []iface.Member{{Name: "result", Type: typeExpr}}, nil
	}
	return readMembers(body, "returns")
}
