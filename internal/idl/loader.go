package idl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpclog"
	"github.com/arcflow/rpctyping/internal/typeexpr"
)

// LoadFile reads and decodes a single IDL file. It does not resolve any
// type references — that is the registry's job once every file in a load
// operation has been read.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR001, "load", fmt.Sprintf("reading %s: %v", path, err)))
	}
	return decodeFile(path, data)
}

// LoadFileFromReader decodes a single IDL file read from r instead of
// disk, for the streaming load entry point (rpct_load_types_stream). path
// is used only for Origin strings and error messages — the bytes never
// touch the filesystem.
func LoadFileFromReader(path string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR001, "load", fmt.Sprintf("reading stream for %s: %v", path, err)))
	}
	return decodeFile(path, data)
}

func decodeFile(path string, data []byte) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR002, "load", fmt.Sprintf("decoding %s: %v", path, err)))
	}
	if len(root.Content) == 0 {
		return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR002, "load", path+" is empty"))
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR002, "load", path+" is not a mapping"))
	}

	f := newFile(path)
	var metaNode *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i]
		val := doc.Content[i+1]
		if key.Value == "meta" {
			metaNode = val
			continue
		}
		if err := decodeDecl(f, key, val); err != nil {
			return nil, err
		}
	}

	if metaNode == nil {
		return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR003, "load", path+" has no meta block"))
	}
	if err := decodeMeta(f, metaNode); err != nil {
		return nil, err
	}
	if err := ValidateEnvelope(f); err != nil {
		return nil, err
	}

	rpclog.L().Debugw("idl: loaded file", "path", path, "namespace", f.Namespace, "types", len(f.TypeDecls), "interfaces", len(f.InterfaceDecls))
	return f, nil
}

func decodeMeta(f *File, node *yaml.Node) error {
	var meta map[string]any
	if err := node.Decode(&meta); err != nil {
		return rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR003, "load", "meta block: "+err.Error()))
	}

	recognized := 0
	if v, ok := meta["namespace"].(string); ok && v != "" {
		f.Namespace = v
		recognized++
	}
	if v, ok := meta["version"].(string); ok && v != "" {
		f.Version = v
		recognized++
	}
	if v, ok := meta["description"].(string); ok && v != "" {
		f.Description = v
		recognized++
	}
	if recognized < 3 {
		return rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR003, "load",
			fmt.Sprintf("%s: meta block must declare namespace, version and description (found %d of 3)", f.Path, recognized)))
	}

	if raw, ok := meta["use"]; ok {
		switch vs := raw.(type) {
		case []any:
			for _, v := range vs {
				if s, ok := v.(string); ok {
					f.Uses = append(f.Uses, s)
				}
			}
		}
	}
	return nil
}

func decodeDecl(f *File, key, val *yaml.Node) error {
	kind, classWord, name, err := typeexpr.ParseKey(key.Value)
	if err != nil {
		return err
	}

	var body map[string]any
	if err := val.Decode(&body); err != nil {
		return rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR002, "load", fmt.Sprintf("%s: %s: %v", f.Path, key.Value, err)))
	}

	switch kind {
	case typeexpr.DeclType:
		expr, err := typeexpr.Parse(name)
		if err != nil {
			return err
		}
		if _, exists := f.TypeDecls[expr.Head]; exists {
			return rpcerrors.Wrap(rpcErrReport(rpcerrors.TYP002, "load", fmt.Sprintf("%s: duplicate type %q", f.Path, expr.Head)))
		}
		f.TypeDecls[expr.Head] = &RawDecl{Name: name, ClassWord: classWord, Body: body, Line: key.Line}
	case typeexpr.DeclInterface:
		if _, exists := f.InterfaceDecls[name]; exists {
			return rpcerrors.Wrap(rpcErrReport(rpcerrors.TYP002, "load", fmt.Sprintf("%s: duplicate interface %q", f.Path, name)))
		}
		f.InterfaceDecls[name] = &RawDecl{Name: name, Body: body, Line: key.Line}
	default:
		return rpcerrors.Wrap(rpcErrReport(rpcerrors.PAR003, "load", fmt.Sprintf("%s: unexpected top-level key %q", f.Path, key.Value)))
	}
	return nil
}

// LoadDirectory loads every ".yaml" file directly inside dir (not
// recursively — matching rpct_load_types_dir's flat suffix-filtered scan).
func LoadDirectory(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR001, "load", fmt.Sprintf("reading directory %s: %v", dir, err)))
	}
	var files []*File
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		f, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// LoadTypes loads every path given, dispatching to LoadFile or
// LoadDirectory depending on what each path names on disk.
func LoadTypes(paths ...string) ([]*File, error) {
	var all []*File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, rpcerrors.Wrap(rpcErrReport(rpcerrors.LDR001, "load", fmt.Sprintf("stat %s: %v", p, err)))
		}
		if info.IsDir() {
			fs, err := LoadDirectory(p)
			if err != nil {
				return nil, err
			}
			all = append(all, fs...)
			continue
		}
		f, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		all = append(all, f)
	}
	return all, nil
}

func rpcErrReport(code, phase, msg string) *rpcerrors.Report {
	return &rpcerrors.Report{Schema: "rpctyping.error/v1", Code: code, Phase: phase, Message: msg}
}
