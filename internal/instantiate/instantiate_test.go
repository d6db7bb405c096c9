package instantiate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/typedef"
)

type fakeSource struct {
	types map[string]*typedef.Type
}

func newFakeSource() *fakeSource {
	return &fakeSource{types: make(map[string]*typedef.Type)}
}

func (f *fakeSource) add(t *typedef.Type) *fakeSource {
	f.types[t.Name] = t
	return f
}

func (f *fakeSource) FindType(_, name string) (*typedef.Type, error) {
	if t, ok := f.types[name]; ok {
		return t, nil
	}
	return nil, rpcerrors.New(rpcerrors.TYP001, "registry", "unknown type: "+name)
}

func intType() *typedef.Type { return typedef.New("int64", "", typedef.ClassBuiltin) }
func strType() *typedef.Type { return typedef.New("string", "", typedef.ClassBuiltin) }

func pairType() *typedef.Type {
	p := typedef.New("Pair", "com.example", typedef.ClassStruct)
	p.GenericVars = []string{"K", "V"}
	_ = p.AddMember(&typedef.Member{Name: "first", TypeExpr: "K"})
	_ = p.AddMember(&typedef.Member{Name: "second", TypeExpr: "V"})
	return p
}

func TestInstantiateSimple(t *testing.T) {
	src := newFakeSource().add(intType())
	inst := New(src, 0, 0)
	ti, err := inst.Instantiate("int64", "com.example", nil, "")
	require.NoError(t, err)
	require.Equal(t, "int64", ti.CanonicalForm())
	require.True(t, ti.IsFullySpecialized())
}

func TestInstantiateGenericFullySpecialized(t *testing.T) {
	src := newFakeSource().add(intType()).add(strType()).add(pairType())
	inst := New(src, 0, 0)
	ti, err := inst.Instantiate("Pair<int64,string>", "com.example", nil, "")
	require.NoError(t, err)
	require.Equal(t, "com.example/Pair<int64,string>", ti.CanonicalForm())
	require.True(t, ti.IsFullySpecialized())
}

func TestInstantiateArityMismatch(t *testing.T) {
	src := newFakeSource().add(intType()).add(pairType())
	inst := New(src, 0, 0)
	_, err := inst.Instantiate("Pair<int64>", "com.example", nil, "")
	require.Error(t, err)
}

func TestInstantiateCachesFullySpecialized(t *testing.T) {
	src := newFakeSource().add(intType()).add(strType()).add(pairType())
	inst := New(src, 0, 0)
	a, err := inst.Instantiate("Pair<int64,string>", "com.example", nil, "")
	require.NoError(t, err)
	b, err := inst.Instantiate("Pair<int64,string>", "com.example", nil, "")
	require.NoError(t, err)
	require.Same(t, a, b)
	// int64, string and Pair<int64,string> are each ground, so each is cached.
	require.Equal(t, 3, inst.CacheLen())
}

func TestInstantiateMemberProxyForUnboundVariable(t *testing.T) {
	src := newFakeSource().add(pairType())
	inst := New(src, 0, 0)
	pair := pairType()
	parent := &TypeInstance{Type: pair} // no specializations bound: K, V proxy
	first, ok := pair.MemberByName("first")
	require.True(t, ok)
	ti, err := inst.InstantiateMember(parent, first)
	require.NoError(t, err)
	require.True(t, ti.Proxy)
	require.Equal(t, "K", ti.VarName)
	require.False(t, ti.IsFullySpecialized())
}

func TestInstantiateMemberBoundVariable(t *testing.T) {
	src := newFakeSource().add(intType()).add(strType()).add(pairType())
	inst := New(src, 0, 0)
	pairTi, err := inst.Instantiate("Pair<int64,string>", "com.example", nil, "")
	require.NoError(t, err)
	first, ok := pairTi.Type.MemberByName("first")
	require.True(t, ok)
	ti, err := inst.InstantiateMember(pairTi, first)
	require.NoError(t, err)
	require.False(t, ti.Proxy)
	require.Equal(t, "int64", ti.CanonicalForm())
}

func TestUnwindTypedef(t *testing.T) {
	inner := intType()
	td := typedef.New("UserId", "com.example", typedef.ClassTypedef)
	td.ForceType = "int64"
	src := newFakeSource().add(inner).add(td)
	inst := New(src, 0, 0)

	ti, err := inst.Instantiate("UserId", "com.example", nil, "")
	require.NoError(t, err)
	unwound, err := inst.Unwind(ti)
	require.NoError(t, err)
	require.Equal(t, "int64", unwound.CanonicalForm())
}
