// Package download implements the registered download-IDL method: when
// permitted, it streams every loaded file's raw body back to the caller.
// The original C implementation exposed this as a push-style generator
// callback (rpct_stream_idl); this repo reframes it as a channel-producing
// iterator, a more idiomatic shape for a Go caller to range over (see
// DESIGN.md Open Question 3).
package download

import (
	"context"
	"os"

	"github.com/arcflow/rpctyping/internal/idl"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpclog"
)

// Source is the subset of the Type Registry needed to enumerate loaded
// files.
type Source interface {
	Files() []*idl.File
}

// FileBody is one streamed file: its namespace, path, and raw on-disk
// content at the time of the stream.
type FileBody struct {
	Path      string
	Namespace string
	Data      []byte
}

// StreamFileBodies streams the body of every file loaded into src back to
// the caller over a channel, one read per file, closing both channels
// when done. If allowed is false the stream immediately yields a single
// PermissionDenied-shaped error and closes, mirroring the original's
// download-disabled behavior without blocking the caller on a channel
// that will never produce anything.
func StreamFileBodies(ctx context.Context, src Source, allowed bool) (<-chan FileBody, <-chan error) {
	bodies := make(chan FileBody)
	errs := make(chan error, 1)

	if !allowed {
		errs <- rpcerrors.New(rpcerrors.LDR001, "download", "IDL download is not permitted")
		close(bodies)
		close(errs)
		return bodies, errs
	}

	files := src.Files()
	go func() {
		defer close(bodies)
		defer close(errs)
		for _, f := range files {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			default:
			}

			data, err := os.ReadFile(f.Path)
			if err != nil {
				rpclog.L().Debugw("download: failed to read file body", "path", f.Path, "error", err.Error())
				errs <- rpcerrors.New(rpcerrors.LDR001, "download", "could not read "+f.Path+": "+err.Error())
				continue
			}

			select {
			case bodies <- FileBody{Path: f.Path, Namespace: f.Namespace, Data: data}:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return bodies, errs
}
