package download

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arcflow/rpctyping/internal/idl"
)

type fakeSource struct{ files []*idl.File }

func (f *fakeSource) Files() []*idl.File { return f.files }

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestStreamFileBodiesDisallowed(t *testing.T) {
	bodies, errs := StreamFileBodies(context.Background(), &fakeSource{}, false)

	var gotErr error
	for e := range errs {
		gotErr = e
	}
	require.Error(t, gotErr)

	var count int
	for range bodies {
		count++
	}
	require.Equal(t, 0, count)
}

func TestStreamFileBodiesReadsEachFile(t *testing.T) {
	p1 := writeTemp(t, "a.yaml", "meta: {}\n")
	p2 := writeTemp(t, "b.yaml", "meta: {}\n")
	src := &fakeSource{files: []*idl.File{
		{Path: p1, Namespace: "a"},
		{Path: p2, Namespace: "b"},
	}}

	bodies, errs := StreamFileBodies(context.Background(), src, true)

	var got []FileBody
	for b := range bodies {
		got = append(got, b)
	}
	for e := range errs {
		require.NoError(t, e)
	}
	require.Len(t, got, 2)
}

func TestStreamFileBodiesCancelledContext(t *testing.T) {
	p1 := writeTemp(t, "a.yaml", "meta: {}\n")
	src := &fakeSource{files: []*idl.File{{Path: p1, Namespace: "a"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bodies, errs := StreamFileBodies(ctx, src, true)
	for range bodies {
	}
	var sawCancellation bool
	for e := range errs {
		if e == context.Canceled {
			sawCancellation = true
		}
	}
	// The context is cancelled before the stream starts, so the first
	// per-file check always sees it and no file is read.
	require.True(t, sawCancellation)
}
