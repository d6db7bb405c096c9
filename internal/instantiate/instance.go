// Package instantiate implements the Type Instantiator: turning a type
// expression plus a generic-variable scope into a concrete TypeInstance
// tree, with canonical-form computation, proxy instances for unresolved
// generic variables, and memoization of fully-specialized instances.
package instantiate

import (
	"strings"
	"sync/atomic"

	"github.com/arcflow/rpctyping/internal/typedef"
)

// TypeInstance is a concrete, possibly-generic-specialized reference to a
// Type: "Pair<int,string>" is one TypeInstance wrapping Type "Pair" with
// two Specializations, each itself a TypeInstance.
type TypeInstance struct {
	Type            *typedef.Type
	Specializations []*TypeInstance

	// Proxy instances stand in for a generic variable that is declared in
	// the enclosing scope but not yet bound to a concrete type — they
	// appear while instantiating a generic type's own member declarations
	// before any caller has supplied arguments.
	Proxy   bool
	VarName string

	Origin string // "path:line" of the declaration that produced this instance

	refcount int32
	canon    string
}

// retain increments the reference count and returns the receiver, mirroring
// rpct_typei_retain's atomic increment-and-return.
func (ti *TypeInstance) retain() *TypeInstance {
	atomic.AddInt32(&ti.refcount, 1)
	return ti
}

// Release decrements the reference count. Unlike the C original there is
// no explicit free: once the count reaches zero the instance becomes
// unreachable from any live caller and Go's garbage collector reclaims it
// on its own schedule — Release exists so the refcount itself (observable
// via RefCount, e.g. from tests or diagnostics) still reaches zero at the
// same logical point the original implementation would have freed the
// value. See DESIGN.md for this adaptation.
func (ti *TypeInstance) Release() {
	atomic.AddInt32(&ti.refcount, -1)
}

// RefCount reports the current reference count.
func (ti *TypeInstance) RefCount() int32 {
	return atomic.LoadInt32(&ti.refcount)
}

// IsFullySpecialized reports whether this instance and every nested
// specialization resolves to a concrete type — i.e. contains no proxy
// anywhere in its tree. Only fully-specialized instances are eligible for
// the instance cache.
func (ti *TypeInstance) IsFullySpecialized() bool {
	if ti.Proxy {
		return false
	}
	for _, s := range ti.Specializations {
		if !s.IsFullySpecialized() {
			return false
		}
	}
	return true
}

// CanonicalForm computes (and memoizes) the deterministic string key used
// for cache lookups and debug output: the type's qualified name followed
// by its specializations, in declared generic-variable order, e.g.
// "com.example/Pair<int64,string>". A proxy's canonical form is its
// variable name prefixed with "$", since it never appears in the cache on
// its own.
func (ti *TypeInstance) CanonicalForm() string {
	if ti.canon != "" {
		return ti.canon
	}
	if ti.Proxy {
		ti.canon = "$" + ti.VarName
		return ti.canon
	}
	if len(ti.Specializations) == 0 {
		ti.canon = ti.Type.QualifiedName()
		return ti.canon
	}
	parts := make([]string, len(ti.Specializations))
	for i, s := range ti.Specializations {
		parts[i] = s.CanonicalForm()
	}
	ti.canon = ti.Type.QualifiedName() + "<" + strings.Join(parts, ",") + ">"
	return ti.canon
}

// bindScope builds a generic-variable scope mapping declared variable
// names to their bound instances, used when unwinding a typedef or
// recursing into a struct/union's own member declarations.
func bindScope(vars []string, specializations []*TypeInstance) map[string]*TypeInstance {
	if len(vars) == 0 {
		return nil
	}
	scope := make(map[string]*TypeInstance, len(vars))
	for i, v := range vars {
		if i < len(specializations) {
			scope[v] = specializations[i]
		} else {
			scope[v] = nil
		}
	}
	return scope
}
