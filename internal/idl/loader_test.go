package idl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const personIDL = `
meta:
  namespace: com.example
  version: "1.0"
  description: Example person types
  use: [com.example.common]
struct Person:
  description: A person
  members:
    name:
      type: string
    age:
      type: int64
interface com.example.Greeter:
  description: Greets people
  method greet:
    args:
      who:
        type: Person
    returns:
      type: string
`

func writeIDL(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileBasic(t *testing.T) {
	dir := t.TempDir()
	path := writeIDL(t, dir, "person.yaml", personIDL)

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "com.example", f.Namespace)
	require.Equal(t, "1.0", f.Version)
	require.Equal(t, []string{"com.example.common"}, f.Uses)
	require.Contains(t, f.TypeDecls, "Person")
	require.Contains(t, f.InterfaceDecls, "com.example.Greeter")
}

func TestLoadFileMissingMeta(t *testing.T) {
	dir := t.TempDir()
	path := writeIDL(t, dir, "bad.yaml", "type Foo:\n  type: struct\n")
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadFileIncompleteMeta(t *testing.T) {
	dir := t.TempDir()
	body := `
meta:
  namespace: com.example
  version: "1.0"
type Foo:
  type: struct
`
	path := writeIDL(t, dir, "incomplete.yaml", body)
	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeIDL(t, dir, "person.yaml", personIDL)
	writeIDL(t, dir, "not-idl.txt", "ignore me")

	files, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestLoadTypesMixed(t *testing.T) {
	dir := t.TempDir()
	writeIDL(t, dir, "person.yaml", personIDL)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeIDL(t, sub, "other.yaml", personIDL)

	files, err := LoadTypes(filepath.Join(dir, "person.yaml"), sub)
	require.NoError(t, err)
	require.Len(t, files, 2)
}
