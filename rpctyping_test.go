package rpctyping

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcflow/rpctyping/internal/hooks"
	"github.com/arcflow/rpctyping/internal/rpcvalue"
)

const petIDL = `
meta:
  namespace: com.example
  version: "1.0"
  description: Pet example types
struct Pet:
  members:
    name:
      type: string
      constraints:
        - name: min-length
          args:
            value: 1
    age:
      type: int64
      constraints:
        - name: min
          args:
            value: 0
interface com.example.Greeter:
  description: Greets a named pet
  method greet:
    args:
      pet:
        type: Pet
    returns:
      type: string
`

func loadPetFixture(t *testing.T) *Runtime {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(petIDL), 0o644))

	rt := Init(nil)
	require.NoError(t, rt.LoadTypes(path))
	return rt
}

func TestInitDefaultsToFullCache(t *testing.T) {
	rt := Init(nil)
	require.NotNil(t, rt)
	ti, err := rt.NewTypei("string", "")
	require.NoError(t, err)
	require.True(t, ti.IsFullySpecialized())
}

func TestLoadTypesAndGetType(t *testing.T) {
	rt := loadPetFixture(t)
	ty, err := rt.GetType("com.example", "Pet")
	require.NoError(t, err)
	require.Equal(t, "Pet", ty.Name)
}

func TestNewiValidatesOnConstruction(t *testing.T) {
	rt := loadPetFixture(t)

	good := rpcvalue.NewDictionary(map[string]rpcvalue.Value{
		"name": rpcvalue.String("Rex"),
		"age":  rpcvalue.Int64(3),
	})
	_, err := rt.Newi("Pet", "com.example", good)
	require.NoError(t, err)

	bad := rpcvalue.NewDictionary(map[string]rpcvalue.Value{
		"name": rpcvalue.String(""),
		"age":  rpcvalue.Int64(-1),
	})
	_, err = rt.Newi("Pet", "com.example", bad)
	require.Error(t, err)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	rt := loadPetFixture(t)
	ti, err := rt.GetTypei("com.example", "Pet")
	require.NoError(t, err)

	v := rpcvalue.NewDictionary(map[string]rpcvalue.Value{
		"name": rpcvalue.String("Rex"),
		"age":  rpcvalue.Int64(3),
	})

	wireVal, err := rt.Serialize(ti, v)
	require.NoError(t, err)

	_, roundTripped, err := rt.Deserialize("com.example", wireVal)
	require.NoError(t, err)
	require.Equal(t, "Rex", roundTripped.Dict["name"].Str)
	require.Equal(t, int64(3), roundTripped.Dict["age"].Int)
}

func TestPreCallHookRejectsBadArgument(t *testing.T) {
	rt := loadPetFixture(t)
	call := hooks.NewCall("com.example", "com.example.Greeter", "greet")

	badPet := rpcvalue.NewDictionary(map[string]rpcvalue.Value{
		"name": rpcvalue.String(""),
		"age":  rpcvalue.Int64(3),
	})
	errs := rt.PreCallHook(call, []rpcvalue.Value{badPet})
	require.False(t, errs.Empty())
}

func TestStreamIDLRequiresAllowFlag(t *testing.T) {
	rt := loadPetFixture(t)
	_, errs := rt.StreamIDL(context.Background())
	err := <-errs
	require.Error(t, err)
}
