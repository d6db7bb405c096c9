// Package validate implements the Compatibility & Validator component:
// structural subtype compatibility between TypeInstances, and structural
// plus named-constraint validation of dynamic values against a
// TypeInstance, aggregating every violation instead of stopping at the
// first.
package validate

import (
	"fmt"

	"github.com/arcflow/rpctyping/internal/instantiate"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpcvalue"
	"github.com/arcflow/rpctyping/internal/typedef"
)

// Source is the registry dependency needed to walk a struct/union's
// Inherits chain while checking compatibility or collecting members.
type Source interface {
	FindType(fromNamespace, name string) (*typedef.Type, error)
}

// IsCompatible reports whether sub is structurally compatible with super:
// sub may be passed anywhere super is expected. super == any always
// succeeds; otherwise sub must be the same type, a descendant of super
// through Inherits, or (open question, decided in DESIGN.md) the same
// generic head type with pairwise-compatible specializations.
func IsCompatible(src Source, sub, super *instantiate.TypeInstance) (bool, error) {
	if super.Type != nil && typedef.IsAny(super.Type.Name) {
		return true, nil
	}
	if sub.Type == nil || super.Type == nil {
		return sub.CanonicalForm() == super.CanonicalForm(), nil
	}
	if sub.Type.QualifiedName() == super.Type.QualifiedName() {
		if len(sub.Specializations) != len(super.Specializations) {
			return false, nil
		}
		for i := range sub.Specializations {
			ok, err := IsCompatible(src, sub.Specializations[i], super.Specializations[i])
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}

	cur := sub.Type
	for cur != nil && cur.Inherits != "" {
		parent, err := src.FindType(cur.Namespace, cur.Inherits)
		if err != nil {
			return false, err
		}
		if parent.QualifiedName() == super.Type.QualifiedName() {
			return true, nil
		}
		cur = parent
	}
	return false, nil
}

// Validate structurally validates v against ti, recursing into struct and
// union members, checking enum membership, and running any named
// constraint validators declared on each member. It never stops at the
// first violation — every path-qualified error found is returned.
func Validate(inst *instantiate.Instantiator, ti *instantiate.TypeInstance, v rpcvalue.Value, path string) *rpcerrors.List {
	errs := &rpcerrors.List{}
	validateInto(inst, ti, v, path, errs)
	return errs
}

func validateInto(inst *instantiate.Instantiator, ti *instantiate.TypeInstance, v rpcvalue.Value, path string, errs *rpcerrors.List) {
	unwound, err := inst.Unwind(ti)
	if err != nil {
		errs.AddErr(err)
		return
	}
	if unwound.Type == nil {
		return // proxy reached validation with no concrete binding; nothing to check
	}

	switch unwound.Type.Class {
	case typedef.ClassBuiltin:
		validateBuiltin(unwound.Type.Name, v, path, errs)
	case typedef.ClassEnum:
		validateEnum(unwound.Type, v, path, errs)
	case typedef.ClassStruct, typedef.ClassUnion:
		validateStruct(inst, unwound, v, path, errs)
	}
}

func validateBuiltin(name string, v rpcvalue.Value, path string, errs *rpcerrors.List) {
	if typedef.IsAny(name) {
		return
	}
	kind, ok := builtinKind(name)
	if !ok {
		return
	}
	if v.Kind != kind {
		errs.Add(&rpcerrors.Report{
			Schema: "rpctyping.error/v1", Code: rpcerrors.VAL001, Phase: "validate", Path: path,
			Message: fmt.Sprintf("expected %s, got %s", name, v.Kind),
		})
	}
}

func builtinKind(name string) (rpcvalue.Kind, bool) {
	switch name {
	case "nulltype":
		return rpcvalue.KindNull, true
	case "bool":
		return rpcvalue.KindBool, true
	case "int64":
		return rpcvalue.KindInt64, true
	case "uint64":
		return rpcvalue.KindUint64, true
	case "double":
		return rpcvalue.KindDouble, true
	case "date":
		return rpcvalue.KindDate, true
	case "string":
		return rpcvalue.KindString, true
	case "binary":
		return rpcvalue.KindBinary, true
	case "fd":
		return rpcvalue.KindFD, true
	case "dictionary":
		return rpcvalue.KindDictionary, true
	case "array":
		return rpcvalue.KindArray, true
	case "error":
		return rpcvalue.KindError, true
	case "shmem":
		return rpcvalue.KindShmem, true
	default:
		return 0, false
	}
}

func validateEnum(t *typedef.Type, v rpcvalue.Value, path string, errs *rpcerrors.List) {
	if v.Kind != rpcvalue.KindString {
		errs.Add(&rpcerrors.Report{Schema: "rpctyping.error/v1", Code: rpcerrors.VAL001, Phase: "validate", Path: path,
			Message: "expected enum string, got " + v.Kind.String()})
		return
	}
	for _, ev := range t.EnumValues {
		if ev == v.Str {
			return
		}
	}
	errs.Add(&rpcerrors.Report{Schema: "rpctyping.error/v1", Code: rpcerrors.VAL001, Phase: "validate", Path: path,
		Message: fmt.Sprintf("%q is not a member of enum %s", v.Str, t.Name)})
}

func validateStruct(inst *instantiate.Instantiator, ti *instantiate.TypeInstance, v rpcvalue.Value, path string, errs *rpcerrors.List) {
	if v.Kind != rpcvalue.KindDictionary {
		errs.Add(&rpcerrors.Report{Schema: "rpctyping.error/v1", Code: rpcerrors.VAL001, Phase: "validate", Path: path,
			Message: "expected struct/dictionary, got " + v.Kind.String()})
		return
	}

	members := CollectMembers(inst.TypeSource(), ti.Type)
	for _, m := range members {
		memberPath := rpcerrors.JoinPath(path, m.Name)
		mv, present := v.Dict[m.Name]
		if !present {
			errs.Add(&rpcerrors.Report{Schema: "rpctyping.error/v1", Code: rpcerrors.VAL001, Phase: "validate", Path: memberPath,
				Message: "missing required member"})
			continue
		}
		memberTi, err := inst.InstantiateMember(ti, m)
		if err != nil {
			errs.AddErr(err)
			continue
		}
		validateInto(inst, memberTi, mv, memberPath, errs)
		RunConstraints(m, mv, memberPath, errs)
	}
}

// CollectMembers returns every member of t, including those inherited
// from its Inherits chain (parent members first, matching the order the
// original reader copies parent members into a child's member list).
func CollectMembers(src Source, t *typedef.Type) []*typedef.Member {
	var all []*typedef.Member
	if t.Inherits != "" {
		if parent, err := src.FindType(t.Namespace, t.Inherits); err == nil {
			all = append(all, CollectMembers(src, parent)...)
		}
	}
	all = append(all, t.Members...)
	return all
}
