// Package typereg implements the Type Registry: the namespaced
// collection of loaded Files, materialized Types, and Interfaces, with
// single-writer/multi-reader concurrency and the fuzzy, chain-loading
// name resolution the IDL relies on instead of fully-qualified names
// everywhere.
package typereg

import (
	"fmt"
	"sync"

	"github.com/arcflow/rpctyping/internal/idl"
	"github.com/arcflow/rpctyping/internal/iface"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpclog"
	"github.com/arcflow/rpctyping/internal/typedef"
)

// Registry owns every File loaded into the process plus the Types and
// Interfaces materialized from them so far. Reads (FindType,
// FindInterface hits) take the read lock; a chain-load miss upgrades to
// the write lock for the duration of materializing the missing
// declaration, exactly as spec's concurrency model requires.
type Registry struct {
	mu sync.RWMutex

	files []*idl.File

	// types is keyed by "namespace/Name"; typesByNamespace additionally
	// indexes by namespace then bare name for fuzzy lookup.
	types            map[string]*typedef.Type
	typesByNamespace map[string]map[string]*typedef.Type

	interfaces            map[string]*iface.Interface
	interfacesByNamespace map[string]map[string]*iface.Interface

	realm string
}

// New creates an empty Registry pre-populated with the builtin scalar and
// container types (spec §6 process-wide init).
func New() *Registry {
	r := &Registry{
		types:                 make(map[string]*typedef.Type),
		typesByNamespace:      make(map[string]map[string]*typedef.Type),
		interfaces:            make(map[string]*iface.Interface),
		interfacesByNamespace: make(map[string]map[string]*iface.Interface),
	}
	for _, t := range typedef.NewBuiltins() {
		r.registerType(t)
	}
	return r
}

func (r *Registry) registerType(t *typedef.Type) {
	r.types[t.QualifiedName()] = t
	ns := r.typesByNamespace[t.Namespace]
	if ns == nil {
		ns = make(map[string]*typedef.Type)
		r.typesByNamespace[t.Namespace] = ns
	}
	ns[t.Name] = t
}

func (r *Registry) registerInterface(i *iface.Interface) {
	key := i.Namespace + "/" + i.Name
	r.interfaces[key] = i
	ns := r.interfacesByNamespace[i.Namespace]
	if ns == nil {
		ns = make(map[string]*iface.Interface)
		r.interfacesByNamespace[i.Namespace] = ns
	}
	ns[i.Name] = i
}

// LoadFiles registers a batch of loaded Files. It does not eagerly
// materialize their declarations — those are read lazily on first lookup,
// mirroring the original's lazy rpct_read_type. It performs no duplicate
// check across files: a name declared twice within one file is rejected
// by internal/idl, but when two files declare the same name, chain-load
// materializes the one from the file registered first and the other is
// never read.
func (r *Registry) LoadFiles(files []*idl.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range files {
		r.files = append(r.files, f)
	}
	rpclog.L().Infow("typereg: files registered", "count", len(files))
	return nil
}

// SetRealm validates realm handling per the reserved-%realm design
// decision: realm is never populated, so any non-empty name always comes
// back NotFound.
func (r *Registry) SetRealm(name string) error {
	if name == "" {
		r.mu.Lock()
		r.realm = ""
		r.mu.Unlock()
		return nil
	}
	return rpcerrors.New(rpcerrors.RLM001, "realm", "realm "+name+" not found (realm is reserved)")
}

// Realm returns the currently set realm name, always "" in this
// implementation.
func (r *Registry) Realm() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.realm
}

// FindType resolves a type name against fromNamespace following the
// fuzzy lookup precedence: exact match on the registry key (a builtin
// such as "string", or a qualified "namespace/Name"), then a match in
// fromNamespace, then each of fromNamespace's "use" namespaces, then a
// chain-load scan of every loaded file's declarations.
func (r *Registry) FindType(fromNamespace, name string) (*typedef.Type, error) {
	r.mu.RLock()
	if t, ok := r.lookupTypeLocked(fromNamespace, name); ok {
		r.mu.RUnlock()
		return t, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock: another goroutine may have
	// chain-loaded this exact type while we were waiting.
	if t, ok := r.lookupTypeLocked(fromNamespace, name); ok {
		return t, nil
	}
	if t, err := r.chainLoadType(name); err == nil {
		return t, nil
	}
	return nil, rpcerrors.New(rpcerrors.TYP001, "registry", "unknown type: "+name)
}

func (r *Registry) lookupTypeLocked(fromNamespace, name string) (*typedef.Type, bool) {
	if t, ok := r.types[name]; ok {
		return t, true
	}
	if t, ok := r.typesByNamespace[fromNamespace][name]; ok {
		return t, true
	}
	for _, f := range r.files {
		if f.Namespace != fromNamespace {
			continue
		}
		for _, use := range f.Uses {
			if t, ok := r.typesByNamespace[use][name]; ok {
				return t, true
			}
		}
	}
	return nil, false
}

// chainLoadType scans every loaded File's raw declarations for one
// matching name, materializes it, registers it, and returns it. Must be
// called with the write lock held.
func (r *Registry) chainLoadType(name string) (*typedef.Type, error) {
	for _, f := range r.files {
		decl, ok := f.TypeDecls[name]
		if !ok {
			continue
		}
		if existing, ok := r.typesByNamespace[f.Namespace][name]; ok {
			return existing, nil
		}
		t, err := readType(decl, f.Namespace, f.Path)
		if err != nil {
			return nil, err
		}
		r.registerType(t)
		rpclog.L().Infow("typereg: chain-loaded type", "name", t.QualifiedName())
		return t, nil
	}
	return nil, rpcerrors.New(rpcerrors.TYP001, "registry", "unknown type: "+name)
}

// FindInterface resolves an interface by its fully-qualified or bare
// name, chain-loading it from a raw declaration on first reference.
func (r *Registry) FindInterface(fromNamespace, name string) (*iface.Interface, error) {
	r.mu.RLock()
	if i, ok := r.interfacesByNamespace[fromNamespace][name]; ok {
		r.mu.RUnlock()
		return i, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.interfacesByNamespace[fromNamespace][name]; ok {
		return i, nil
	}
	for _, f := range r.files {
		decl, ok := f.InterfaceDecls[name]
		if !ok {
			continue
		}
		if existing, ok := r.interfacesByNamespace[f.Namespace][name]; ok {
			return existing, nil
		}
		i, err := readInterface(decl, f.Namespace, f.Path)
		if err != nil {
			return nil, err
		}
		r.registerInterface(i)
		return i, nil
	}
	return nil, rpcerrors.New(rpcerrors.TYP001, "registry", "unknown interface: "+name)
}

// ResolveInterface implements internal/hooks' dependency on a
// by-name interface resolver, used when walking an Inherits chain.
func (r *Registry) ResolveInterface(name string) *iface.Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for ns := range r.interfacesByNamespace {
		if i, ok := r.interfacesByNamespace[ns][name]; ok {
			return i
		}
	}
	return nil
}

// AllTypes returns every materialized Type across every namespace,
// builtins included.
func (r *Registry) AllTypes() []*typedef.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*typedef.Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out
}

// Files returns every loaded File, for inspection/download purposes.
func (r *Registry) Files() []*idl.File {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*idl.File, len(r.files))
	copy(out, r.files)
	return out
}

// String renders summary statistics, useful for CLI `inspect` output.
func (r *Registry) String() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("Registry{files=%d types=%d interfaces=%d}", len(r.files), len(r.types), len(r.interfaces))
}
