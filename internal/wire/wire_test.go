package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/arcflow/rpctyping/internal/instantiate"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpcvalue"
	"github.com/arcflow/rpctyping/internal/typedef"
)

type fakeSource struct {
	types map[string]*typedef.Type
}

func newFakeSource() *fakeSource { return &fakeSource{types: make(map[string]*typedef.Type)} }

func (f *fakeSource) add(t *typedef.Type) *fakeSource {
	f.types[t.Name] = t
	f.types[t.QualifiedName()] = t // serialized %type values carry the qualified name
	return f
}

func (f *fakeSource) FindType(_, name string) (*typedef.Type, error) {
	t, ok := f.types[name]
	if !ok {
		return nil, rpcerrors.New(rpcerrors.TYP001, "registry", "unknown type: "+name)
	}
	return t, nil
}

func builtin(name string) *typedef.Type { return typedef.New(name, "", typedef.ClassBuiltin) }

func pointType() *typedef.Type {
	p := typedef.New("Point", "demo", typedef.ClassStruct)
	_ = p.AddMember(&typedef.Member{Name: "x", TypeExpr: "int64"})
	_ = p.AddMember(&typedef.Member{Name: "y", TypeExpr: "int64"})
	return p
}

func colorType() *typedef.Type {
	e := typedef.New("Color", "demo", typedef.ClassEnum)
	e.EnumValues = []string{"RED", "GREEN"}
	return e
}

func newInstantiator(types ...*typedef.Type) *instantiate.Instantiator {
	src := newFakeSource()
	for _, t := range types {
		src.add(t)
	}
	for _, name := range []string{"nulltype", "bool", "int64", "uint64", "double", "string", "dictionary", "array"} {
		if _, ok := src.types[name]; !ok {
			src.add(builtin(name))
		}
	}
	return instantiate.New(src, 0, 0)
}

func TestSerializeScalarWrapsTypeValue(t *testing.T) {
	inst := newInstantiator()
	ti, err := inst.Instantiate("int64", "demo", nil, "")
	require.NoError(t, err)

	out, err := Serialize(inst, ti, rpcvalue.Int64(7))
	require.NoError(t, err)

	m, ok := out.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "int64", m[rpcvalue.TypeField])
	require.Equal(t, int64(7), m[rpcvalue.ValueField])
}

func TestSerializeStructFlattensFields(t *testing.T) {
	inst := newInstantiator(pointType())
	ti, err := inst.Instantiate("Point", "demo", nil, "")
	require.NoError(t, err)

	v := rpcvalue.NewDictionary(map[string]rpcvalue.Value{
		"x": rpcvalue.Int64(1),
		"y": rpcvalue.Int64(2),
	})
	out, err := Serialize(inst, ti, v)
	require.NoError(t, err)

	want := map[string]any{
		rpcvalue.TypeField: "demo/Point",
		"x": map[string]any{
			rpcvalue.TypeField:  "int64",
			rpcvalue.ValueField: int64(1),
		},
		"y": map[string]any{
			rpcvalue.TypeField:  "int64",
			rpcvalue.ValueField: int64(2),
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("serialized Point mismatch (-want +got):\n%s", diff)
	}
}

func TestDeserializeStructRoundTrip(t *testing.T) {
	inst := newInstantiator(pointType())
	raw := map[string]any{
		rpcvalue.TypeField: "demo/Point",
		"x":                float64(1),
		"y":                float64(2),
	}
	ti, v, err := Deserialize(inst, "demo", raw)
	require.NoError(t, err)
	require.Equal(t, "demo/Point", ti.CanonicalForm())
	require.Equal(t, rpcvalue.KindDictionary, v.Kind)
	require.Equal(t, rpcvalue.Int64(1), v.Dict["x"])
}

func TestDeserializeUntaggedDictionary(t *testing.T) {
	inst := newInstantiator()
	raw := map[string]any{"a": "hello", "b": float64(3)}
	ti, v, err := Deserialize(inst, "demo", raw)
	require.NoError(t, err)
	require.Equal(t, "dictionary", ti.CanonicalForm())
	require.Equal(t, rpcvalue.String("hello"), v.Dict["a"])
}

func TestDeserializeNullAliasesToNulltype(t *testing.T) {
	inst := newInstantiator()
	ti, v, err := Deserialize(inst, "demo", nil)
	require.NoError(t, err)
	require.Equal(t, "nulltype", ti.CanonicalForm())
	require.True(t, v.IsNull())
}

func TestEnumRoundTrip(t *testing.T) {
	inst := newInstantiator(colorType())
	ti, err := inst.Instantiate("Color", "demo", nil, "")
	require.NoError(t, err)

	out, err := Serialize(inst, ti, rpcvalue.String("RED"))
	require.NoError(t, err)
	m := out.(map[string]any)
	require.Equal(t, "demo/Color", m[rpcvalue.TypeField])
	require.Equal(t, "RED", m[rpcvalue.ValueField])

	_, v, err := Deserialize(inst, "demo", m)
	require.NoError(t, err)
	require.Equal(t, "RED", v.Str)
}
