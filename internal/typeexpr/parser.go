// Package typeexpr parses generic type expressions ("Foo<A,B>") and the
// declaration keys the IDL uses for types, interfaces, and interface
// members. It performs no lookups of its own — it only splits text into
// the head/argument shapes the rest of the typing core consumes.
package typeexpr

import (
	"regexp"
	"strings"

	"github.com/arcflow/rpctyping/internal/rpcerrors"
)

// Expr is a parsed type expression: a head name plus zero or more
// argument expressions, each of which may itself carry nested generics
// ("Dictionary<string,List<int>>").
type Expr struct {
	Head string
	Args []string
}

// Parse splits a type expression into its head and top-level generic
// arguments. Arguments are split on commas that are not nested inside an
// inner "<...>" pair, so "Dictionary<string,List<int,float>>" yields one
// argument "List<int,float>" at depth 1, not three.
func Parse(decl string) (Expr, error) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return Expr{}, rpcerrors.New(rpcerrors.PAR002, "parse", "empty type expression")
	}

	open := strings.IndexByte(decl, '<')
	if open == -1 {
		return Expr{Head: decl}, nil
	}
	if !strings.HasSuffix(decl, ">") {
		return Expr{}, rpcerrors.New(rpcerrors.PAR001, "parse", "unbalanced generic bracket in "+decl)
	}

	head := strings.TrimSpace(decl[:open])
	if head == "" {
		return Expr{}, rpcerrors.New(rpcerrors.PAR002, "parse", "empty type head in "+decl)
	}

	body := decl[open+1 : len(decl)-1]
	args, err := splitArgs(body, decl)
	if err != nil {
		return Expr{}, err
	}
	return Expr{Head: head, Args: args}, nil
}

// splitArgs splits body on top-level commas, tracking "<"/">" nesting
// depth so inner generic arguments are not split apart. orig is only used
// to produce a useful error message.
func splitArgs(body, orig string) ([]string, error) {
	var args []string
	depth := 0
	start := 0
	for i, r := range body {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, rpcerrors.New(rpcerrors.PAR001, "parse", "unbalanced generic bracket in "+orig)
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, rpcerrors.New(rpcerrors.PAR001, "parse", "unbalanced generic bracket in "+orig)
	}
	last := strings.TrimSpace(body[start:])
	if last == "" {
		return nil, rpcerrors.New(rpcerrors.PAR002, "parse", "empty argument in "+orig)
	}
	args = append(args, last)
	return args, nil
}

// Declaration key shapes accepted at the top level of an IDL file:
//
//	<class-word> <Name>       struct/union/enum/typedef/type declarations,
//	                          class-word one of struct, union, enum,
//	                          typedef, or the generic "type" (whose class
//	                          is resolved from the body's own "type" field)
//	<class-word> <Name<T,U>>  generic declarations
//	interface <Name>          interface declarations
//	method <Name>             interface method declarations
//	event <Name>              interface event declarations
//	property <Name>           interface property declarations
var (
	typeKeyRe      = regexp.MustCompile(`^(struct|union|enum|typedef|type)\s+(.+)$`)
	interfaceKeyRe = regexp.MustCompile(`^interface\s+(\S+)$`)
	methodKeyRe    = regexp.MustCompile(`^method\s+(\S+)$`)
	eventKeyRe     = regexp.MustCompile(`^event\s+(\S+)$`)
	propertyKeyRe  = regexp.MustCompile(`^property\s+(\S+)$`)
)

// DeclKind identifies which of the five key shapes a declaration key is.
type DeclKind int

const (
	DeclUnknown DeclKind = iota
	DeclType
	DeclInterface
	DeclMethod
	DeclEvent
	DeclProperty
)

// ParseKey classifies a top-level IDL key and extracts the class-word
// (empty for non-type kinds) and the name portion that follows it (still
// possibly a generic expression for DeclType, e.g. "Pair<K,V>").
func ParseKey(key string) (DeclKind, string, string, error) {
	key = strings.TrimSpace(key)
	if m := typeKeyRe.FindStringSubmatch(key); m != nil {
		return DeclType, m[1], strings.TrimSpace(m[2]), nil
	}
	if m := interfaceKeyRe.FindStringSubmatch(key); m != nil {
		return DeclInterface, "", m[1], nil
	}
	if m := methodKeyRe.FindStringSubmatch(key); m != nil {
		return DeclMethod, "", m[1], nil
	}
	if m := eventKeyRe.FindStringSubmatch(key); m != nil {
		return DeclEvent, "", m[1], nil
	}
	if m := propertyKeyRe.FindStringSubmatch(key); m != nil {
		return DeclProperty, "", m[1], nil
	}
	return DeclUnknown, "", "", rpcerrors.New(rpcerrors.PAR003, "parse", "malformed declaration key: "+key)
}
