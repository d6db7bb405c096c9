// Package rpcvalue defines the tagged dynamic value used to carry RPC
// arguments, return values, and IDL-described payloads through the typing
// core. Transport and the RPC object model proper live outside this
// module; Value is the minimal stand-in the typing core needs in order to
// validate, instantiate, and serialize values without depending on a
// concrete RPC runtime.
package rpcvalue

import "fmt"

// Kind identifies the dynamic shape a Value carries.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUint64
	KindDouble
	KindDate
	KindString
	KindBinary
	KindFD
	KindArray
	KindDictionary
	KindError
	KindShmem
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "nulltype"
	case KindBool:
		return "bool"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindDouble:
		return "double"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindFD:
		return "fd"
	case KindArray:
		return "array"
	case KindDictionary:
		return "dictionary"
	case KindError:
		return "error"
	case KindShmem:
		return "shmem"
	default:
		return "unknown"
	}
}

// Wire field names for the tagged {%type, %value} envelope. %realm is
// reserved (see DESIGN.md Open Question 2) and is never emitted by this
// implementation.
const (
	RealmField = "%realm"
	TypeField  = "%type"
	ValueField = "%value"
)

// Value is a tagged dynamic value. Exactly one of the typed fields is
// meaningful for a given Kind; Array and Dictionary recurse into further
// Values.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Uint   uint64
	Double float64
	Str    string // also carries Date (RFC3339) and Binary (raw bytes as string)
	FD     int
	Array  []Value
	Dict   map[string]Value
	ErrMsg string
}

// Null returns the nulltype value.
func Null() Value { return Value{Kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int64 wraps a signed integer.
func Int64(i int64) Value { return Value{Kind: KindInt64, Int: i} }

// Uint64 wraps an unsigned integer.
func Uint64(u uint64) Value { return Value{Kind: KindUint64, Uint: u} }

// Double wraps a floating point number.
func Double(f float64) Value { return Value{Kind: KindDouble, Double: f} }

// String wraps a UTF-8 string.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Binary wraps an opaque byte string.
func Binary(b []byte) Value { return Value{Kind: KindBinary, Str: string(b)} }

// NewArray wraps an ordered list of values.
func NewArray(vs ...Value) Value { return Value{Kind: KindArray, Array: vs} }

// NewDictionary wraps a string-keyed map of values.
func NewDictionary(m map[string]Value) Value { return Value{Kind: KindDictionary, Dict: m} }

// Error wraps an RPC error value.
func Error(msg string) Value { return Value{Kind: KindError, ErrMsg: msg} }

// String renders the value for debugging; it is not the wire format.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt64:
		return fmt.Sprintf("%d", v.Int)
	case KindUint64:
		return fmt.Sprintf("%d", v.Uint)
	case KindDouble:
		return fmt.Sprintf("%g", v.Double)
	case KindDate, KindString, KindBinary:
		return v.Str
	case KindFD:
		return fmt.Sprintf("fd(%d)", v.FD)
	case KindArray:
		return fmt.Sprintf("%v", v.Array)
	case KindDictionary:
		return fmt.Sprintf("%v", v.Dict)
	case KindError:
		return fmt.Sprintf("error(%s)", v.ErrMsg)
	case KindShmem:
		return "shmem"
	default:
		return "?"
	}
}

// IsNull reports whether v is the nulltype value.
func (v Value) IsNull() bool { return v.Kind == KindNull }
