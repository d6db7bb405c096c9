// Package idl loads the YAML Interface Definition Language files that
// describe types and interfaces. It owns the only code in this module
// that touches the wire YAML shape; everything downstream (the registry,
// the instantiator, the validator) works with the decoded File/RawDecl
// structures this package produces.
package idl

// RawDecl is a single top-level declaration body, still undecoded beyond
// the generic YAML map/slice/scalar shapes gopkg.in/yaml.v3 produces. The
// registry's chain-load and the type reader turn these into
// typedef.Type / iface.Interface values on demand, mirroring the
// original's lazy rpct_read_type.
type RawDecl struct {
	Name      string         // parsed name, e.g. "Person" or "Pair<K,V>" for types
	ClassWord string         // the key's class-word for type decls: struct/union/enum/typedef/type; empty for interfaces
	Body      map[string]any // decoded YAML mapping for this declaration
	Line      int            // 1-based source line, for Origin reporting
}

// File is one loaded IDL file: its meta block plus every type and
// interface declaration it contains, not yet resolved into live Types or
// Interfaces.
type File struct {
	Path        string
	Namespace   string
	Version     string
	Description string
	Uses        []string

	TypeDecls      map[string]*RawDecl // keyed by parsed type name (no generic args)
	InterfaceDecls map[string]*RawDecl // keyed by interface name
}

// newFile constructs an empty File ready to be populated by the decoder.
func newFile(path string) *File {
	return &File{
		Path:           path,
		TypeDecls:      make(map[string]*RawDecl),
		InterfaceDecls: make(map[string]*RawDecl),
	}
}

// UsesNamespace reports whether ns appears in this file's "use" list,
// consulted during fuzzy lookup's third resolution step.
func (f *File) UsesNamespace(ns string) bool {
	for _, u := range f.Uses {
		if u == ns {
			return true
		}
	}
	return false
}
