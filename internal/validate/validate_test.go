package validate

import (
	"testing"

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
	return f
}

func (f *fakeSource) FindType(_, name string) (*typedef.Type, error) {
	t, ok := f.types[name]
	if !ok {
		return nil, rpcerrors.New(rpcerrors.TYP001, "registry", "unknown type: "+name)
	}
	return t, nil
}

func intType() *typedef.Type { return typedef.New("int64", "", typedef.ClassBuiltin) }
func strType() *typedef.Type { return typedef.New("string", "", typedef.ClassBuiltin) }
func anyType() *typedef.Type { return typedef.New("any", "", typedef.ClassBuiltin) }

func animalType() *typedef.Type {
	a := typedef.New("Animal", "com.example", typedef.ClassStruct)
	_ = a.AddMember(&typedef.Member{Name: "name", TypeExpr: "string"})
	return a
}

func petType() *typedef.Type {
	p := typedef.New("Pet", "com.example", typedef.ClassStruct)
	p.Inherits = "Animal"
	_ = p.AddMember(&typedef.Member{Name: "owner", TypeExpr: "string"})
	return p
}

func pairType() *typedef.Type {
	p := typedef.New("Pair", "com.example", typedef.ClassStruct)
	p.GenericVars = []string{"K", "V"}
	_ = p.AddMember(&typedef.Member{Name: "first", TypeExpr: "K"})
	_ = p.AddMember(&typedef.Member{Name: "second", TypeExpr: "V"})
	return p
}

func colorType() *typedef.Type {
	e := typedef.New("Color", "com.example", typedef.ClassEnum)
	e.EnumValues = []string{"RED", "GREEN", "BLUE"}
	return e
}

func newInstantiator(types ...*typedef.Type) (*instantiate.Instantiator, *fakeSource) {
	src := newFakeSource()
	for _, t := range types {
		src.add(t)
	}
	return instantiate.New(src, 0, 0), src
}

func TestIsCompatibleAnySucceeds(t *testing.T) {
	inst, src := newInstantiator(intType(), anyType())
	sub, err := inst.Instantiate("int64", "com.example", nil, "")
	require.NoError(t, err)
	super, err := inst.Instantiate("any", "com.example", nil, "")
	require.NoError(t, err)
	ok, err := IsCompatible(src, sub, super)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsCompatibleInheritance(t *testing.T) {
	inst, src := newInstantiator(strType(), animalType(), petType())
	sub, err := inst.Instantiate("Pet", "com.example", nil, "")
	require.NoError(t, err)
	super, err := inst.Instantiate("Animal", "com.example", nil, "")
	require.NoError(t, err)
	ok, err := IsCompatible(src, sub, super)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestIsCompatibleUnrelatedFails(t *testing.T) {
	inst, src := newInstantiator(strType(), animalType(), petType())
	sub, err := inst.Instantiate("Animal", "com.example", nil, "")
	require.NoError(t, err)
	super, err := inst.Instantiate("Pet", "com.example", nil, "")
	require.NoError(t, err)
	ok, err := IsCompatible(src, sub, super)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsCompatibleGenericSpecializationRecursive(t *testing.T) {
	inst, src := newInstantiator(intType(), strType(), animalType(), petType(), pairType())
	sub, err := inst.Instantiate("Pair<Pet,int64>", "com.example", nil, "")
	require.NoError(t, err)
	super, err := inst.Instantiate("Pair<Animal,int64>", "com.example", nil, "")
	require.NoError(t, err)
	ok, err := IsCompatible(src, sub, super)
	require.NoError(t, err)
	require.True(t, ok, "Pair<Pet,int64> should be compatible with Pair<Animal,int64> via recursive specialization check")

	mismatched, err := inst.Instantiate("Pair<int64,Pet>", "com.example", nil, "")
	require.NoError(t, err)
	ok, err = IsCompatible(src, mismatched, super)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestValidateBuiltinMismatch(t *testing.T) {
	inst, _ := newInstantiator(intType())
	ti, err := inst.Instantiate("int64", "com.example", nil, "")
	require.NoError(t, err)
	errs := Validate(inst, ti, rpcvalue.String("nope"), "")
	require.False(t, errs.Empty())
}

func TestValidateBuiltinOK(t *testing.T) {
	inst, _ := newInstantiator(intType())
	ti, err := inst.Instantiate("int64", "com.example", nil, "")
	require.NoError(t, err)
	errs := Validate(inst, ti, rpcvalue.Int64(42), "")
	require.True(t, errs.Empty())
}

func TestValidateEnumMembership(t *testing.T) {
	inst, _ := newInstantiator(colorType())
	ti, err := inst.Instantiate("Color", "com.example", nil, "")
	require.NoError(t, err)

	errs := Validate(inst, ti, rpcvalue.String("RED"), "")
	require.True(t, errs.Empty())

	errs = Validate(inst, ti, rpcvalue.String("PURPLE"), "")
	require.False(t, errs.Empty())
}

func TestValidateStructNestedMemberPath(t *testing.T) {
	inst, _ := newInstantiator(strType(), animalType(), petType())
	ti, err := inst.Instantiate("Pet", "com.example", nil, "")
	require.NoError(t, err)

	v := rpcvalue.NewDictionary(map[string]rpcvalue.Value{
		"name":  rpcvalue.Int64(5), // wrong kind: Animal.name wants string
		"owner": rpcvalue.String("alice"),
	})
	errs := Validate(inst, ti, v, "pet")
	require.False(t, errs.Empty())
	require.Equal(t, "pet.name", errs.Reports[0].Path)
}

func TestValidateStructMissingMembersReportsEachPath(t *testing.T) {
	inst, _ := newInstantiator(strType(), animalType(), petType())
	ti, err := inst.Instantiate("Pet", "com.example", nil, "")
	require.NoError(t, err)

	errs := Validate(inst, ti, rpcvalue.NewDictionary(map[string]rpcvalue.Value{}), "pet")
	require.Len(t, errs.Reports, 2)

	var paths []string
	for _, r := range errs.Reports {
		paths = append(paths, r.Path)
	}
	require.ElementsMatch(t, []string{"pet.name", "pet.owner"}, paths)
}

func TestValidateStringMinLengthConstraint(t *testing.T) {
	member := &typedef.Member{
		Name:     "name",
		TypeExpr: "string",
		Constraints: []typedef.Constraint{
			{Name: "min-length", Args: map[string]any{"value": 3}},
		},
	}
	errs := &rpcerrors.List{}
	RunConstraints(member, rpcvalue.String("ab"), "name", errs)
	require.False(t, errs.Empty())

	errs2 := &rpcerrors.List{}
	RunConstraints(member, rpcvalue.String("abcd"), "name", errs2)
	require.True(t, errs2.Empty())
}
