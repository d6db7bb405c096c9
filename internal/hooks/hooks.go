// Package hooks implements the Call Hooks component: validating an RPC
// call's arguments before dispatch and its result after return, against
// the signature declared on the target Interface's method.
package hooks

import (
	"github.com/google/uuid"

	"github.com/arcflow/rpctyping/internal/iface"
	"github.com/arcflow/rpctyping/internal/instantiate"
	"github.com/arcflow/rpctyping/internal/rpcerrors"
	"github.com/arcflow/rpctyping/internal/rpclog"
	"github.com/arcflow/rpctyping/internal/rpcvalue"
	"github.com/arcflow/rpctyping/internal/validate"
)

// InterfaceSource resolves an Interface by name, walking inheritance when
// a method isn't declared directly on the named interface.
type InterfaceSource interface {
	FindInterface(fromNamespace, name string) (*iface.Interface, error)
	ResolveInterface(name string) *iface.Interface
}

// Call describes one in-flight RPC invocation: the interface and method
// it targets, and a namespace to resolve argument/return type expressions
// against.
type Call struct {
	ID        string
	Namespace string
	Interface string
	Method    string
}

// NewCall builds a Call with a fresh correlation id, used to tie together
// the pre- and post-call log lines for the same invocation.
func NewCall(namespace, ifaceName, method string) Call {
	return Call{ID: uuid.NewString(), Namespace: namespace, Interface: ifaceName, Method: method}
}

// PreCallHook validates args positionally against call's method
// signature. If the interface or method is unknown the call is untyped
// and passes through unchecked, matching the original's "do nothing"
// behavior for calls made outside any declared interface. Arguments
// beyond the declared count fail immediately: an interface is a fixed
// contract, not a variadic one.
func PreCallHook(src InterfaceSource, inst *instantiate.Instantiator, call Call, args []rpcvalue.Value) *rpcerrors.List {
	errs := &rpcerrors.List{}

	ifc, err := src.FindInterface(call.Namespace, call.Interface)
	if err != nil {
		rpclog.L().Debugw("hooks: precall on unknown interface, skipping", "call_id", call.ID, "interface", call.Interface)
		return errs
	}
	method, ok := ifc.GetMethod(call.Method, src.ResolveInterface)
	if !ok {
		rpclog.L().Debugw("hooks: precall on unknown method, skipping", "call_id", call.ID, "method", call.Method)
		return errs
	}

	if len(args) > len(method.Args) {
		errs.Add(&rpcerrors.Report{
			Schema: "rpctyping.error/v1", Code: rpcerrors.VAL004, Phase: "hooks",
			Path:    call.Method,
			Message: "too many arguments",
		})
		return errs
	}

	for i, argDecl := range method.Args {
		if i >= len(args) {
			break
		}
		ti, err := inst.Instantiate(argDecl.Type, call.Namespace, nil, call.Method)
		if err != nil {
			errs.AddErr(err)
			continue
		}
		argErrs := validate.Validate(inst, ti, args[i], rpcerrors.JoinPath(call.Method, argDecl.Name))
		for _, r := range argErrs.Reports {
			r.Code = rpcerrors.VAL004
			errs.Add(r)
		}
	}

	if !errs.Empty() {
		rpclog.L().Infow("hooks: precall rejected", "call_id", call.ID, "interface", call.Interface, "method", call.Method, "errors", len(errs.Reports))
	}
	return errs
}

// PostCallHook validates result against call's method return type, if one
// is declared. A method with no declared result is untyped on return and
// always passes.
func PostCallHook(src InterfaceSource, inst *instantiate.Instantiator, call Call, result rpcvalue.Value) *rpcerrors.List {
	errs := &rpcerrors.List{}

	ifc, err := src.FindInterface(call.Namespace, call.Interface)
	if err != nil {
		return errs
	}
	method, ok := ifc.GetMethod(call.Method, src.ResolveInterface)
	if !ok || len(method.Returns) == 0 {
		return errs
	}

	ret := method.Returns[0]
	ti, err := inst.Instantiate(ret.Type, call.Namespace, nil, call.Method)
	if err != nil {
		errs.AddErr(err)
		return errs
	}
	retErrs := validate.Validate(inst, ti, result, rpcerrors.JoinPath(call.Method, ret.Name))
	for _, r := range retErrs.Reports {
		r.Code = rpcerrors.VAL005
		errs.Add(r)
	}
	if !errs.Empty() {
		rpclog.L().Infow("hooks: postcall rejected", "call_id", call.ID, "interface", call.Interface, "method", call.Method, "errors", len(errs.Reports))
	}
	return errs
}
