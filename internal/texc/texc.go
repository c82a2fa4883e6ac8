// Package texc implements the ThreadScript exception taxonomy: a flat
// set of error kinds, each optionally carrying a stack trace, mirroring
// threadscript::exception from the reference implementation.
package texc

import (
	"fmt"
	"strings"
)

// Kind identifies one of the fixed ThreadScript exception kinds. It is
// the name scripts use to catch exceptions in "try".
type Kind string

const (
	KindParseError     Kind = "parse_error"
	KindAllocBad       Kind = "alloc_bad"
	KindAllocLimit     Kind = "alloc_limit"
	KindUnknownSymbol  Kind = "unknown_symbol"
	KindValueBad       Kind = "value_bad"
	KindValueNull      Kind = "value_null"
	KindValueReadOnly  Kind = "value_read_only"
	KindValueType      Kind = "value_type"
	KindValueOutOfRange Kind = "value_out_of_range"
	KindValueMtUnsafe  Kind = "value_mt_unsafe"
	KindOpBad          Kind = "op_bad"
	KindOpNarg         Kind = "op_narg"
	KindOpRecursion    Kind = "op_recursion"
	KindOpOverflow     Kind = "op_overflow"
	KindOpDivZero      Kind = "op_div_zero"
	KindOpLibrary      Kind = "op_library"
	KindOpWouldBlock   Kind = "op_would_block"
	KindNotImplemented Kind = "not_implemented"
	KindScriptException Kind = "script_exception"
	KindWrapped        Kind = "wrapped"
)

// SrcLocation is a position in source code.
type SrcLocation struct {
	File   string
	Line   uint
	Column uint
}

func (l SrcLocation) String() string {
	if l.File == "" && l.Line == 0 {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	if l.Column == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// FrameLocation is one entry of a stack trace: a function name plus the
// source location currently being evaluated within it.
type FrameLocation struct {
	Function string
	SrcLocation
}

func (f FrameLocation) String() string {
	loc := f.SrcLocation.String()
	switch {
	case f.Function == "" && loc == "":
		return ""
	case f.Function == "":
		return loc
	case loc == "":
		return f.Function
	default:
		return fmt.Sprintf("%s (%s)", f.Function, loc)
	}
}

// StackTrace is a call stack, most recent frame first.
type StackTrace []FrameLocation

func (t StackTrace) String() string {
	lines := make([]string, 0, len(t))
	for _, f := range t {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, "\n")
}

// Error is the base ThreadScript exception type. All errors raised or
// propagated by the interpreter are *Error values (or are wrapped into
// one with KindWrapped).
type Error struct {
	Kind    Kind
	Msg     string
	Name    string // symbol/method name for unknown_symbol/not_implemented
	Trace   StackTrace
	wrapped error
}

// New creates a new exception of the given kind with a default message.
func New(kind Kind) *Error {
	return &Error{Kind: kind, Msg: defaultMsg[kind]}
}

// Newf creates a new exception of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Named creates a kind of exception that carries a name, such as
// unknown_symbol(name) or not_implemented(name).
func Named(kind Kind, name string) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf("%s: %s", defaultMsg[kind], name), Name: name}
}

// Wrap wraps an arbitrary Go error as a ThreadScript "wrapped" exception.
func Wrap(err error, trace StackTrace) *Error {
	return &Error{Kind: KindWrapped, Msg: err.Error(), Trace: trace, wrapped: err}
}

var defaultMsg = map[Kind]string{
	KindParseError:      "Parse error",
	KindAllocBad:        "Allocation failed",
	KindAllocLimit:      "Allocation denied by limit",
	KindUnknownSymbol:   "Symbol not found",
	KindValueBad:        "Bad value",
	KindValueNull:       "Value is null",
	KindValueReadOnly:   "Value is read-only",
	KindValueType:       "Bad value type",
	KindValueOutOfRange: "Value out of range",
	KindValueMtUnsafe:   "Value is not thread-safe",
	KindOpBad:           "Bad operation",
	KindOpNarg:          "Bad number of arguments",
	KindOpRecursion:     "Stack depth exceeded",
	KindOpOverflow:      "Overflow",
	KindOpDivZero:       "Division by zero",
	KindOpLibrary:       "Library failure",
	KindOpWouldBlock:    "Operation would block",
	KindNotImplemented:  "Not implemented",
	KindScriptException: "Script exception",
	KindWrapped:         "Wrapped exception",
}

// Error implements the error interface. It prefixes the message with
// the top stack frame's location, mirroring threadscript::exception::base.
func (e *Error) Error() string {
	if len(e.Trace) == 0 {
		return e.Msg
	}
	loc := e.Trace[0].String()
	if loc == "" {
		return e.Msg
	}
	return loc + ": " + e.Msg
}

// Unwrap exposes the wrapped error, if any, for errors.Is/As interop.
func (e *Error) Unwrap() error { return e.wrapped }

// WithTrace returns a copy of e with its trace set, unless it already
// carries one (propagation policy: only the first emission tags the
// trace).
func (e *Error) WithTrace(trace StackTrace) *Error {
	if len(e.Trace) != 0 {
		return e
	}
	ne := *e
	ne.Trace = trace
	return &ne
}

// Is reports whether err is a ThreadScript exception of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// Dump renders a full human-readable report: the one-line message
// followed by the stack trace, matching §7's "User-visible failure
// behavior".
func (e *Error) Dump(withTrace bool) string {
	var b strings.Builder
	b.WriteString(e.Error())
	if withTrace && len(e.Trace) > 0 {
		b.WriteByte('\n')
		b.WriteString(e.Trace.String())
	}
	return b.String()
}
