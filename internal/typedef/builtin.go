package typedef

// BuiltinNames lists the scalar and container types registered before any
// IDL is loaded, mirroring rpct_init's hard-coded builtin registration.
var BuiltinNames = []string{
	"nulltype",
	"bool",
	"uint64",
	"int64",
	"double",
	"date",
	"string",
	"binary",
	"fd",
	"dictionary",
	"array",
	"shmem",
	"error",
	"any",
}

// NewBuiltins constructs the builtin Type set, one per BuiltinNames entry,
// all in the empty (process-global) namespace.
func NewBuiltins() []*Type {
	out := make([]*Type, 0, len(BuiltinNames))
	for _, name := range BuiltinNames {
		out = append(out, New(name, "", ClassBuiltin))
	}
	return out
}

// IsAny reports whether name is the universal top type; any is
// structurally compatible with every other type per spec invariant.
func IsAny(name string) bool { return name == "any" }
