package typereg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcflow/rpctyping/internal/idl"
)

const basicsIDL = `
meta:
  namespace: com.example
  version: "1.0"
  description: Example types
struct Person:
  members:
    name:
      type: string
    pet:
      type: Animal
struct Animal:
  members:
    species:
      type: string
interface com.example.Greeter:
  description: Greets people
  method greet:
    args:
      who:
        type: Person
    returns:
      type: string
`

func loadBasics(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "basics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(basicsIDL), 0o644))
	f, err := idl.LoadFile(path)
	require.NoError(t, err)

	r := New()
	require.NoError(t, r.LoadFiles([]*idl.File{f}))
	return r
}

func TestNewRegistryHasBuiltins(t *testing.T) {
	r := New()
	ty, err := r.FindType("", "string")
	require.NoError(t, err)
	require.Equal(t, "string", ty.Name)
}

func TestChainLoadType(t *testing.T) {
	r := loadBasics(t)
	ty, err := r.FindType("com.example", "Person")
	require.NoError(t, err)
	require.Equal(t, "Person", ty.Name)
	m, ok := ty.MemberByName("pet")
	require.True(t, ok)
	require.Equal(t, "Animal", m.TypeExpr)
}

func TestChainLoadTypeCached(t *testing.T) {
	r := loadBasics(t)
	ty1, err := r.FindType("com.example", "Animal")
	require.NoError(t, err)
	ty2, err := r.FindType("com.example", "Animal")
	require.NoError(t, err)
	require.Same(t, ty1, ty2)
}

func TestFindTypeUnknown(t *testing.T) {
	r := loadBasics(t)
	_, err := r.FindType("com.example", "NoSuchType")
	require.Error(t, err)
}

func TestFindInterfaceAndMethod(t *testing.T) {
	r := loadBasics(t)
	i, err := r.FindInterface("com.example", "com.example.Greeter")
	require.NoError(t, err)
	m, ok := i.Methods["greet"]
	require.True(t, ok)
	require.Len(t, m.Args, 1)
	require.Equal(t, "Person", m.Args[0].Type)
	require.Len(t, m.Returns, 1)
	require.Equal(t, "string", m.Returns[0].Type)
}

func TestSetRealmReservedNonEmpty(t *testing.T) {
	r := New()
	err := r.SetRealm("prod")
	require.Error(t, err)
}

func TestSetRealmEmptyIsNoop(t *testing.T) {
	r := New()
	require.NoError(t, r.SetRealm(""))
}
