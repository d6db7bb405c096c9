// Package wire implements the Serializer/Deserializer: the round trip
// between schema-tagged wire values ({"%type": ..., "%value": ...} for
// scalars, {"%type": "<qualified>", field: ...} for structs) and the
// in-memory TypeInstance-carrying form the rest of the typing core works
// with.
package wire

import (
	"fmt"

	"github.com/arcflow/rpctyping/internal/instantiate"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpcvalue"
	"github.com/arcflow/rpctyping/internal/typedef"
	"github.com/arcflow/rpctyping/internal/validate"
)

// Serialize converts an in-memory value carrying ti into a wire-safe form:
// plain Go values (map[string]any, []any, string, int64, float64, bool,
// nil) suitable for direct YAML/JSON encoding. Scalars wrap into the
// {%type, %value} envelope; structs and unions flatten their fields
// alongside a %type key; dictionaries and arrays with no typing context
// of their own travel untagged, recursing into their elements.
func Serialize(inst *instantiate.Instantiator, ti *instantiate.TypeInstance, v rpcvalue.Value) (any, error) {
	if ti == nil || ti.Type == nil {
		return serializeUntyped(inst, v)
	}
	unwound, err := inst.Unwind(ti)
	if err != nil {
		return nil, err
	}
	if unwound.Type == nil {
		return serializeUntyped(inst, v)
	}

	switch unwound.Type.Class {
	case typedef.ClassBuiltin:
		return serializeBuiltin(inst, unwound.Type.Name, v)
	case typedef.ClassEnum:
		return map[string]any{
			rpcvalue.TypeField:  unwound.Type.QualifiedName(),
			rpcvalue.ValueField: v.Str,
		}, nil
	case typedef.ClassStruct, typedef.ClassUnion:
		return serializeStruct(inst, unwound, v)
	default:
		return nil, rpcerrors.New(rpcerrors.WIR001, "wire", "cannot serialize class "+string(unwound.Type.Class))
	}
}

func serializeBuiltin(inst *instantiate.Instantiator, name string, v rpcvalue.Value) (any, error) {
	switch name {
	case "dictionary":
		out := make(map[string]any, len(v.Dict))
		for k, elem := range v.Dict {
			ev, err := serializeUntyped(inst, elem)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case "array":
		out := make([]any, 0, len(v.Array))
		for _, elem := range v.Array {
			ev, err := serializeUntyped(inst, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	default:
		scalar, err := scalarWireValue(v)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			rpcvalue.TypeField:  name,
			rpcvalue.ValueField: scalar,
		}, nil
	}
}

func serializeStruct(inst *instantiate.Instantiator, ti *instantiate.TypeInstance, v rpcvalue.Value) (any, error) {
	if v.Kind != rpcvalue.KindDictionary {
		return nil, rpcerrors.New(rpcerrors.WIR001, "wire", "struct value must be a dictionary")
	}
	out := map[string]any{rpcvalue.TypeField: ti.CanonicalForm()}
	for _, m := range validate.CollectMembers(inst.TypeSource(), ti.Type) {
		mv, present := v.Dict[m.Name]
		if !present {
			continue
		}
		memberTi, err := inst.InstantiateMember(ti, m)
		if err != nil {
			return nil, err
		}
		sv, err := Serialize(inst, memberTi, mv)
		if err != nil {
			return nil, err
		}
		out[m.Name] = sv
	}
	return out, nil
}

func serializeUntyped(inst *instantiate.Instantiator, v rpcvalue.Value) (any, error) {
	switch v.Kind {
	case rpcvalue.KindDictionary:
		out := make(map[string]any, len(v.Dict))
		for k, elem := range v.Dict {
			ev, err := serializeUntyped(inst, elem)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case rpcvalue.KindArray:
		out := make([]any, 0, len(v.Array))
		for _, elem := range v.Array {
			ev, err := serializeUntyped(inst, elem)
			if err != nil {
				return nil, err
			}
			out = append(out, ev)
		}
		return out, nil
	default:
		return scalarWireValue(v)
	}
}

func scalarWireValue(v rpcvalue.Value) (any, error) {
	switch v.Kind {
	case rpcvalue.KindNull:
		return nil, nil
	case rpcvalue.KindBool:
		return v.Bool, nil
	case rpcvalue.KindInt64:
		return v.Int, nil
	case rpcvalue.KindUint64:
		return v.Uint, nil
	case rpcvalue.KindDouble:
		return v.Double, nil
	case rpcvalue.KindDate, rpcvalue.KindString, rpcvalue.KindBinary:
		return v.Str, nil
	case rpcvalue.KindFD:
		return v.FD, nil
	case rpcvalue.KindError:
		return v.ErrMsg, nil
	case rpcvalue.KindShmem:
		return nil, rpcerrors.New(rpcerrors.WIR001, "wire", "shmem values are not wire-serializable")
	default:
		return nil, rpcerrors.New(rpcerrors.WIR001, "wire", fmt.Sprintf("unhandled scalar kind %v", v.Kind))
	}
}

// Deserialize is the inverse of Serialize: it inspects raw (already
// YAML/JSON-decoded into plain Go values) and recovers a TypeInstance
// alongside the rpcvalue.Value it describes, instantiating referenced
// types against fromNamespace.
func Deserialize(inst *instantiate.Instantiator, fromNamespace string, raw any) (*instantiate.TypeInstance, rpcvalue.Value, error) {
	switch r := raw.(type) {
	case map[string]any:
		return deserializeDict(inst, fromNamespace, r)
	case []any:
		return deserializeArray(inst, fromNamespace, r)
	default:
		return deserializeScalar(inst, fromNamespace, raw)
	}
}

func deserializeDict(inst *instantiate.Instantiator, fromNamespace string, r map[string]any) (*instantiate.TypeInstance, rpcvalue.Value, error) {
	typeName, tagged := r[rpcvalue.TypeField].(string)
	if !tagged {
		dict := make(map[string]rpcvalue.Value, len(r))
		for k, raw := range r {
			_, v, err := Deserialize(inst, fromNamespace, raw)
			if err != nil {
				return nil, rpcvalue.Value{}, err
			}
			dict[k] = v
		}
		ti, err := inst.Instantiate("dictionary", fromNamespace, nil, "")
		if err != nil {
			return nil, rpcvalue.Value{}, err
		}
		return ti, rpcvalue.NewDictionary(dict), nil
	}

	ti, err := inst.Instantiate(typeName, fromNamespace, nil, "")
	if err != nil {
		return nil, rpcvalue.Value{}, err
	}
	unwound, err := inst.Unwind(ti)
	if err != nil {
		return nil, rpcvalue.Value{}, err
	}

	if scalarRaw, hasValue := r[rpcvalue.ValueField]; hasValue && len(r) <= 2 {
		v, err := valueFromRaw(unwound, scalarRaw)
		return ti, v, err
	}

	dict := make(map[string]rpcvalue.Value, len(r)-1)
	if unwound.Type != nil && (unwound.Type.Class == typedef.ClassStruct || unwound.Type.Class == typedef.ClassUnion) {
		for _, m := range validate.CollectMembers(inst.TypeSource(), unwound.Type) {
			fieldRaw, present := r[m.Name]
			if !present {
				continue
			}
			memberTi, err := inst.InstantiateMember(unwound, m)
			if err != nil {
				return nil, rpcvalue.Value{}, err
			}
			fv, err := deserializeTyped(inst, memberTi, fieldRaw)
			if err != nil {
				return nil, rpcvalue.Value{}, err
			}
			dict[m.Name] = fv
		}
	} else {
		for k, fieldRaw := range r {
			if k == rpcvalue.TypeField {
				continue
			}
			_, fv, err := Deserialize(inst, fromNamespace, fieldRaw)
			if err != nil {
				return nil, rpcvalue.Value{}, err
			}
			dict[k] = fv
		}
	}
	return ti, rpcvalue.NewDictionary(dict), nil
}

// deserializeTyped decodes raw against an already-instantiated expected
// type, rather than sniffing raw's Go type — this is what distinguishes a
// struct field declared int64 from one declared double even though both
// decode from YAML/JSON as float64.
func deserializeTyped(inst *instantiate.Instantiator, ti *instantiate.TypeInstance, raw any) (rpcvalue.Value, error) {
	unwound, err := inst.Unwind(ti)
	if err != nil {
		return rpcvalue.Value{}, err
	}
	if unwound.Type == nil {
		_, v, err := Deserialize(inst, "", raw)
		return v, err
	}

	// Scalar and enum members arrive in the {%type, %value} envelope that
	// Serialize wraps them in; decode the carried value, not the envelope.
	if env, ok := raw.(map[string]any); ok && unwound.Type.Class != typedef.ClassStruct && unwound.Type.Class != typedef.ClassUnion {
		_, tagged := env[rpcvalue.TypeField]
		if inner, hasValue := env[rpcvalue.ValueField]; tagged && hasValue && len(env) == 2 {
			raw = inner
		}
	}

	switch unwound.Type.Class {
	case typedef.ClassEnum:
		return valueFromRaw(unwound, raw)
	case typedef.ClassStruct, typedef.ClassUnion:
		if m, ok := raw.(map[string]any); ok {
			_, v, err := Deserialize(inst, unwound.Type.Namespace, m)
			return v, err
		}
		return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "expected struct/dictionary for "+unwound.Type.QualifiedName())
	case typedef.ClassBuiltin:
		switch unwound.Type.Name {
		case "dictionary", "array":
			_, v, err := Deserialize(inst, "", raw)
			return v, err
		default:
			return typedScalarValue(unwound.Type.Name, raw)
		}
	default:
		return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "cannot deserialize class "+string(unwound.Type.Class))
	}
}

// typedScalarValue converts raw (as decoded generically by a YAML/JSON
// parser) into the Value shape builtinName declares, rather than the
// shape Go's decoder happened to pick.
func typedScalarValue(builtinName string, raw any) (rpcvalue.Value, error) {
	if raw == nil {
		return rpcvalue.Null(), nil
	}
	switch builtinName {
	case "int64":
		n, ok := asInt64(raw)
		if !ok {
			return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "expected int64")
		}
		return rpcvalue.Int64(n), nil
	case "uint64":
		n, ok := asInt64(raw)
		if !ok {
			return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "expected uint64")
		}
		return rpcvalue.Uint64(uint64(n)), nil
	case "double":
		switch x := raw.(type) {
		case float64:
			return rpcvalue.Double(x), nil
		case float32:
			return rpcvalue.Double(float64(x)), nil
		case int:
			return rpcvalue.Double(float64(x)), nil
		case int64:
			return rpcvalue.Double(float64(x)), nil
		}
		return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "expected double")
	case "bool":
		b, ok := raw.(bool)
		if !ok {
			return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "expected bool")
		}
		return rpcvalue.Bool(b), nil
	case "string", "date":
		s, ok := raw.(string)
		if !ok {
			return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "expected string")
		}
		return rpcvalue.String(s), nil
	case "binary":
		s, ok := raw.(string)
		if !ok {
			return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "expected binary string")
		}
		return rpcvalue.Binary([]byte(s)), nil
	case "nulltype":
		return rpcvalue.Null(), nil
	default:
		return rawScalarValue(raw)
	}
}

func asInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	case float32:
		return int64(x), true
	default:
		return 0, false
	}
}

func deserializeArray(inst *instantiate.Instantiator, fromNamespace string, r []any) (*instantiate.TypeInstance, rpcvalue.Value, error) {
	elems := make([]rpcvalue.Value, 0, len(r))
	for _, raw := range r {
		_, v, err := Deserialize(inst, fromNamespace, raw)
		if err != nil {
			return nil, rpcvalue.Value{}, err
		}
		elems = append(elems, v)
	}
	ti, err := inst.Instantiate("array", fromNamespace, nil, "")
	if err != nil {
		return nil, rpcvalue.Value{}, err
	}
	return ti, rpcvalue.NewArray(elems...), nil
}

func deserializeScalar(inst *instantiate.Instantiator, fromNamespace string, raw any) (*instantiate.TypeInstance, rpcvalue.Value, error) {
	name := wireKindName(raw)
	ti, err := inst.Instantiate(name, fromNamespace, nil, "")
	if err != nil {
		return nil, rpcvalue.Value{}, err
	}
	v, err := rawScalarValue(raw)
	return ti, v, err
}

// valueFromRaw decodes raw according to unwound's declared class: enums
// carry their value as a string, builtins as their native scalar kind.
func valueFromRaw(unwound *instantiate.TypeInstance, raw any) (rpcvalue.Value, error) {
	if unwound.Type == nil {
		return rawScalarValue(raw)
	}
	if unwound.Type.Class == typedef.ClassEnum {
		s, ok := raw.(string)
		if !ok {
			return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", "enum value must be a string")
		}
		return rpcvalue.String(s), nil
	}
	if unwound.Type.Class == typedef.ClassBuiltin {
		return typedScalarValue(unwound.Type.Name, raw)
	}
	return rawScalarValue(raw)
}

func rawScalarValue(raw any) (rpcvalue.Value, error) {
	switch x := raw.(type) {
	case nil:
		return rpcvalue.Null(), nil
	case bool:
		return rpcvalue.Bool(x), nil
	case int:
		return rpcvalue.Int64(int64(x)), nil
	case int64:
		return rpcvalue.Int64(x), nil
	case uint64:
		return rpcvalue.Uint64(x), nil
	case float64:
		return rpcvalue.Double(x), nil
	case float32:
		return rpcvalue.Double(float64(x)), nil
	case string:
		return rpcvalue.String(x), nil
	default:
		return rpcvalue.Value{}, rpcerrors.New(rpcerrors.WIR002, "wire", fmt.Sprintf("unrecognized scalar wire value %T", raw))
	}
}

// wireKindName maps an untagged scalar onto the builtin type name it
// deserializes as, aliasing the absent JSON/YAML null onto "nulltype"
// rather than a builtin literally named "null" (rpct_deserialize's rule).
func wireKindName(raw any) string {
	switch raw.(type) {
	case nil:
		return "nulltype"
	case bool:
		return "bool"
	case int, int64, uint64:
		return "int64"
	case float32, float64:
		return "double"
	case string:
		return "string"
	default:
		return "string"
	}
}
