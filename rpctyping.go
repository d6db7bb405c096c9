// Package rpctyping is the process-wide facade over the typing core:
// init/free a Runtime, load IDL from disk or a stream, set the realm,
// instantiate and look up types, and validate/serialize/deserialize RPC
// payloads against them. It mirrors the `rpct_*` surface declared in
// librpc's include/rpc/typing.h, adapted to a Go value instead of
// process-global state so a test or a host process can run more than one
// independently-configured Runtime.
package rpctyping

import (
	"context"
	"io"
	"time"

	"github.com/arcflow/rpctyping/internal/download"
	"github.com/arcflow/rpctyping/internal/hooks"
	"github.com/arcflow/rpctyping/internal/idl"
	"github.com/arcflow/rpctyping/internal/instantiate"
	"github.com/arcflow/rpctyping/internal/rpcconfig"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpclog"
	"github.com/arcflow/rpctyping/internal/rpcvalue"
	"github.com/arcflow/rpctyping/internal/typedef"
	"github.com/arcflow/rpctyping/internal/typereg"
	"github.com/arcflow/rpctyping/internal/validate"
	"github.com/arcflow/rpctyping/internal/wire"
)

// Runtime bundles the registry and instantiator a process needs to drive
// the typing core end to end: load → register → instantiate → validate →
// serialize/deserialize → call hooks.
type Runtime struct {
	reg    *typereg.Registry
	inst   *instantiate.Instantiator
	cfg    *rpcconfig.Config
	allowD bool
}

// Init constructs a Runtime. cfg may be nil, in which case
// rpcconfig defaults apply (bounded instance cache, no realm, IDL
// download disabled).
func Init(cfg *rpcconfig.Config) *Runtime {
	if cfg == nil {
		cfg = &rpcconfig.Config{InstanceCacheSize: instantiate.DefaultCacheSize}
	}
	reg := typereg.New()
	inst := instantiate.New(reg, cfg.InstanceCacheSize, 0)
	rpclog.L().Infow("rpctyping: runtime initialized", "instance_cache_size", cfg.InstanceCacheSize)
	return &Runtime{reg: reg, inst: inst, cfg: cfg, allowD: cfg.AllowIDLDownload}
}

// Free releases the Runtime's resources. There is no explicit
// deallocation step — every Type, Interface, and TypeInstance becomes
// unreachable once the Runtime itself is, and Go's garbage collector
// reclaims them on its own schedule (see internal/instantiate.Release).
// Free exists to mirror the original's rpct_free call site; it only logs
// how many types the registry holds.
func (rt *Runtime) Free() {
	rpclog.L().Infow("rpctyping: runtime freed", "types", len(rt.reg.AllTypes()))
}

// LoadTypes loads IDL from one or more files or directories on disk.
func (rt *Runtime) LoadTypes(paths ...string) error {
	files, err := idl.LoadTypes(paths...)
	if err != nil {
		return err
	}
	return rt.reg.LoadFiles(files)
}

// LoadTypesStream loads a single IDL file read from r rather than disk,
// identified by path for Origin/error reporting.
func (rt *Runtime) LoadTypesStream(path string, r io.Reader) error {
	f, err := idl.LoadFileFromReader(path, r)
	if err != nil {
		return err
	}
	return rt.reg.LoadFiles([]*idl.File{f})
}

// SetRealm sets the active realm. Realm is reserved in this
// implementation (see DESIGN.md Open Question 2): any non-empty name
// always returns a NotFound-shaped error.
func (rt *Runtime) SetRealm(name string) error {
	return rt.reg.SetRealm(name)
}

// Realm returns the currently active realm name.
func (rt *Runtime) Realm() string {
	return rt.reg.Realm()
}

// NewTypei instantiates decl (a type expression) resolved against
// fromNamespace, with no enclosing generic scope.
func (rt *Runtime) NewTypei(decl, fromNamespace string) (*instantiate.TypeInstance, error) {
	return rt.inst.Instantiate(decl, fromNamespace, nil, "")
}

// New is an alias for NewTypei kept for parity with the original's
// `rpct_new`/`rpct_newi` pairing, where `new` additionally carried a
// prototype value; this Go port always takes the type expression path.
func (rt *Runtime) New(decl, fromNamespace string) (*instantiate.TypeInstance, error) {
	return rt.NewTypei(decl, fromNamespace)
}

// Newi instantiates a type instance and immediately validates v against
// it, returning the instance only if validation passes.
func (rt *Runtime) Newi(decl, fromNamespace string, v rpcvalue.Value) (*instantiate.TypeInstance, error) {
	ti, err := rt.NewTypei(decl, fromNamespace)
	if err != nil {
		return nil, err
	}
	if errs := rt.Validate(ti, v, ""); !errs.Empty() {
		return nil, errs.Err()
	}
	return ti, nil
}

// GetType looks up a registered Type by name without instantiating it.
func (rt *Runtime) GetType(fromNamespace, name string) (*typedef.Type, error) {
	return rt.reg.FindType(fromNamespace, name)
}

// GetTypei is GetType followed by an ungeneric-scope Instantiate, the
// common case of "give me a usable TypeInstance for this declared type
// name".
func (rt *Runtime) GetTypei(fromNamespace, name string) (*instantiate.TypeInstance, error) {
	return rt.inst.Instantiate(name, fromNamespace, nil, "")
}

// Validate checks v against ti, aggregating every violation.
func (rt *Runtime) Validate(ti *instantiate.TypeInstance, v rpcvalue.Value, path string) *rpcerrors.List {
	return validate.Validate(rt.inst, ti, v, path)
}

// Serialize converts v (typed by ti) into a wire-safe plain value.
func (rt *Runtime) Serialize(ti *instantiate.TypeInstance, v rpcvalue.Value) (any, error) {
	return wire.Serialize(rt.inst, ti, v)
}

// Deserialize recovers a TypeInstance and rpcvalue.Value pair from a
// wire-safe plain value (already YAML/JSON decoded), resolving type names
// against fromNamespace.
func (rt *Runtime) Deserialize(fromNamespace string, raw any) (*instantiate.TypeInstance, rpcvalue.Value, error) {
	return wire.Deserialize(rt.inst, fromNamespace, raw)
}

// PreCallHook validates call's arguments, per internal/hooks.
func (rt *Runtime) PreCallHook(call hooks.Call, args []rpcvalue.Value) *rpcerrors.List {
	return hooks.PreCallHook(rt.reg, rt.inst, call, args)
}

// PostCallHook validates call's result, per internal/hooks.
func (rt *Runtime) PostCallHook(call hooks.Call, result rpcvalue.Value) *rpcerrors.List {
	return hooks.PostCallHook(rt.reg, rt.inst, call, result)
}

// AllowIDLDownload toggles whether the download-IDL call streams loaded
// file bodies back to a caller.
func (rt *Runtime) AllowIDLDownload(allow bool) {
	rt.allowD = allow
}

// StreamIDL streams every loaded file's body back to the caller, gated by
// AllowIDLDownload.
func (rt *Runtime) StreamIDL(ctx context.Context) (<-chan download.FileBody, <-chan error) {
	return download.StreamFileBodies(ctx, rt.reg, rt.allowD)
}

// DefaultInstanceCacheTTL is the idle duration a cached, fully-specialized
// TypeInstance survives before eviction, exposed here so a caller
// constructing its own rpcconfig.Config can reference the same default
// the Instantiator falls back to.
const DefaultInstanceCacheTTL = 30 * time.Minute
