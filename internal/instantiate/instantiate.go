package instantiate

import (
	"fmt"
	"time"

	expirable "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpclog"
	"github.com/arcflow/rpctyping/internal/typedef"
	"github.com/arcflow/rpctyping/internal/typeexpr"
)

// Source is the subset of the Type Registry the instantiator needs: a
// namespaced, chain-loading type lookup. internal/typereg.Registry
// satisfies this.
type Source interface {
	FindType(fromNamespace, name string) (*typedef.Type, error)
}

// Instantiator turns type expressions into TypeInstance trees, caching
// every fully-specialized result it produces by canonical form so that
// two requests for the same concrete type (e.g. two fields both declared
// "List<int64>") share one instance.
type Instantiator struct {
	src   Source
	cache *expirable.LRU[string, *TypeInstance]
}

// DefaultCacheSize bounds the instance cache when the caller does not
// specify one. The original C implementation's cache was unbounded; this
// is a deliberate, documented change (see SPEC_FULL.md Domain Stack).
const DefaultCacheSize = 4096

// DefaultCacheTTL is how long a cached instance survives without being
// looked up again.
const DefaultCacheTTL = 30 * time.Minute

// New creates an Instantiator backed by src, with an LRU instance cache
// of the given size and TTL (zero values fall back to the defaults).
func New(src Source, size int, ttl time.Duration) *Instantiator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	inst := &Instantiator{src: src}
	inst.cache = expirable.NewLRU[string, *TypeInstance](size, func(key string, _ *TypeInstance) {
		rpclog.L().Debugw("instantiate: cache eviction", "canonical", key)
	}, ttl)
	return inst
}

// Instantiate resolves decl (a type expression, possibly generic) in the
// context of fromNamespace and scope (the generic variables currently
// bound, if any — nil when there is no enclosing generic context) into a
// TypeInstance. origin is carried through for error/debug reporting only.
func (inst *Instantiator) Instantiate(decl, fromNamespace string, scope map[string]*TypeInstance, origin string) (*TypeInstance, error) {
	expr, err := typeexpr.Parse(decl)
	if err != nil {
		return nil, err
	}

	// Step 1: is the head a generic variable name already in scope? If so
	// this expression can carry no further specialization arguments — a
	// bare variable reference like "T" never itself takes <...>.
	if bound, known := scope[expr.Head]; known {
		if len(expr.Args) > 0 {
			return nil, rpcerrors.New(rpcerrors.INS001, "instantiate", "generic variable "+expr.Head+" cannot be specialized")
		}
		if bound != nil {
			return bound.retain(), nil
		}
		return &TypeInstance{Proxy: true, VarName: expr.Head, Origin: origin}, nil
	}

	// Step 2: resolve the concrete type this expression names.
	t, err := inst.src.FindType(fromNamespace, expr.Head)
	if err != nil {
		return nil, err
	}

	if len(expr.Args) != t.Arity() {
		return nil, rpcerrors.New(rpcerrors.TYP003, "instantiate",
			fmt.Sprintf("%s expects %d generic argument(s), got %d", t.QualifiedName(), t.Arity(), len(expr.Args)))
	}

	// Step 3: recursively instantiate each specialization argument in the
	// same scope and namespace.
	specs := make([]*TypeInstance, len(expr.Args))
	for i, argDecl := range expr.Args {
		child, err := inst.Instantiate(argDecl, fromNamespace, scope, origin)
		if err != nil {
			return nil, err
		}
		specs[i] = child
	}

	ti := &TypeInstance{Type: t, Specializations: specs, Origin: origin}
	ti.retain()

	// Step 4: memoize only if this instance is ground (no unresolved
	// generic variables anywhere in its tree) — a proxy-bearing instance
	// is context-dependent and would poison the cache for other callers.
	if !ti.IsFullySpecialized() {
		return ti, nil
	}

	key := ti.CanonicalForm()
	if cached, ok := inst.cache.Get(key); ok {
		return cached.retain(), nil
	}
	inst.cache.Add(key, ti)
	return ti, nil
}

// Unwind follows a chain of typedefs down to the first non-typedef
// TypeInstance, substituting each typedef's own generic variables for its
// specializations as it goes — mirroring rpct_unwind_typei.
func (inst *Instantiator) Unwind(ti *TypeInstance) (*TypeInstance, error) {
	seen := map[string]bool{}
	for ti.Type != nil && ti.Type.Class == typedef.ClassTypedef {
		key := ti.CanonicalForm()
		if seen[key] {
			return nil, rpcerrors.New(rpcerrors.TYP005, "instantiate", "cyclic typedef chain at "+key)
		}
		seen[key] = true

		scope := bindScope(ti.Type.GenericVars, ti.Specializations)
		next, err := inst.Instantiate(ti.Type.ForceType, ti.Type.Namespace, scope, ti.Type.Origin)
		if err != nil {
			return nil, err
		}
		ti = next
	}
	return ti, nil
}

// InstantiateMember instantiates one member of a struct/union instance,
// binding the parent's own generic variables into scope before resolving
// the member's declared type expression — this is how "pet: Animal" and a
// generic "first: K" are both resolved against the same parent instance.
func (inst *Instantiator) InstantiateMember(parent *TypeInstance, member *typedef.Member) (*TypeInstance, error) {
	scope := bindScope(parent.Type.GenericVars, parent.Specializations)
	return inst.Instantiate(member.TypeExpr, parent.Type.Namespace, scope, member.Name)
}

// CacheLen reports how many fully-specialized instances are currently
// cached, for tests and CLI inspection.
func (inst *Instantiator) CacheLen() int {
	return inst.cache.Len()
}

// TypeSource exposes the registry this Instantiator resolves types
// against, so packages like internal/validate can walk Inherits chains
// and collect members without a second, independently-wired dependency
// on internal/typereg.
func (inst *Instantiator) TypeSource() Source {
	return inst.src
}
