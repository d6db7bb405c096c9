package validate

import (
	"fmt"

	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpcvalue"
	"github.com/arcflow/rpctyping/internal/typedef"
)

// ValidatorFunc checks one named constraint against a value. args is the
// constraint's declared argument mapping, e.g. {"value": 1} for
// "min-length". It returns a human-readable reason the value failed, or
// "" if the value satisfies the constraint.
type ValidatorFunc func(v rpcvalue.Value, args map[string]any) string

// validatorKey identifies a registered validator by the wire kind it
// applies to and the constraint name it implements, matching the spec's
// "named Validators keyed by (wire_type, constraint_name)" requirement.
type validatorKey struct {
	Kind       rpcvalue.Kind
	Constraint string
}

var validators = map[validatorKey]ValidatorFunc{}

// Register installs a named constraint validator for the given wire kind.
// Later calls with the same (kind, name) replace the earlier one.
func Register(kind rpcvalue.Kind, name string, fn ValidatorFunc) {
	validators[validatorKey{Kind: kind, Constraint: name}] = fn
}

func lookup(kind rpcvalue.Kind, name string) (ValidatorFunc, bool) {
	fn, ok := validators[validatorKey{Kind: kind, Constraint: name}]
	return fn, ok
}

// RunConstraints evaluates every constraint declared on m against v,
// appending a VAL002 for any rejection and a VAL003 for any reference to
// an unregistered (kind, constraint) pair.
func RunConstraints(m *typedef.Member, v rpcvalue.Value, path string, errs *rpcerrors.List) {
	for _, c := range m.Constraints {
		fn, ok := lookup(v.Kind, c.Name)
		if !ok {
			errs.Add(&rpcerrors.Report{
				Schema: "rpctyping.error/v1", Code: rpcerrors.VAL003, Phase: "validate", Path: path,
				Message: fmt.Sprintf("no validator registered for constraint %q on %s", c.Name, v.Kind),
			})
			continue
		}
		if reason := fn(v, c.Args); reason != "" {
			errs.Add(&rpcerrors.Report{
				Schema: "rpctyping.error/v1", Code: rpcerrors.VAL002, Phase: "validate", Path: path,
				Message: fmt.Sprintf("constraint %q failed: %s", c.Name, reason),
			})
		}
	}
}

func argInt(args map[string]any, key string) (int64, bool) {
	raw, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func init() {
	Register(rpcvalue.KindString, "min-length", func(v rpcvalue.Value, args map[string]any) string {
		n, ok := argInt(args, "value")
		if !ok {
			return ""
		}
		if int64(len(v.Str)) < n {
			return fmt.Sprintf("length %d is less than minimum %d", len(v.Str), n)
		}
		return ""
	})

	Register(rpcvalue.KindString, "max-length", func(v rpcvalue.Value, args map[string]any) string {
		n, ok := argInt(args, "value")
		if !ok {
			return ""
		}
		if int64(len(v.Str)) > n {
			return fmt.Sprintf("length %d exceeds maximum %d", len(v.Str), n)
		}
		return ""
	})

	Register(rpcvalue.KindInt64, "min", func(v rpcvalue.Value, args map[string]any) string {
		n, ok := argInt(args, "value")
		if !ok {
			return ""
		}
		if v.Int < n {
			return fmt.Sprintf("%d is less than minimum %d", v.Int, n)
		}
		return ""
	})

	Register(rpcvalue.KindInt64, "max", func(v rpcvalue.Value, args map[string]any) string {
		n, ok := argInt(args, "value")
		if !ok {
			return ""
		}
		if v.Int > n {
			return fmt.Sprintf("%d exceeds maximum %d", v.Int, n)
		}
		return ""
	})

	Register(rpcvalue.KindArray, "min-items", func(v rpcvalue.Value, args map[string]any) string {
		n, ok := argInt(args, "value")
		if !ok {
			return ""
		}
		if int64(len(v.Array)) < n {
			return fmt.Sprintf("%d items is less than minimum %d", len(v.Array), n)
		}
		return ""
	})

	Register(rpcvalue.KindArray, "max-items", func(v rpcvalue.Value, args map[string]any) string {
		n, ok := argInt(args, "value")
		if !ok {
			return ""
		}
		if int64(len(v.Array)) > n {
			return fmt.Sprintf("%d items exceeds maximum %d", len(v.Array), n)
		}
		return ""
	})
}
