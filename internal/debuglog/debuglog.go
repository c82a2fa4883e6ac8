// Package debuglog implements the optional debug-message logger
// described in spec.md §6: controlled by the THREADSCRIPT_DEBUG and
// THREADSCRIPT_DEBUG_FORMAT environment variables. It is not part of
// the core (the core never calls it directly on the hot path except
// through the Logger interface passed in explicitly), but it is carried
// as ambient infrastructure the way the reference implementation's
// debug.hpp is always linked in.
package debuglog

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes debug messages if enabled by environment, and is a
// no-op otherwise.
type Logger struct {
	zl      zerolog.Logger
	enabled bool
	prefix  string
	pid     bool
	tid     bool
}

// FromEnv builds a Logger from THREADSCRIPT_DEBUG and
// THREADSCRIPT_DEBUG_FORMAT, matching §6:
//
//	THREADSCRIPT_DEBUG: "cout", "cerr", empty (disabled), or a file path
//	THREADSCRIPT_DEBUG_FORMAT: [p][t][' '|':'][prefix], default prefix "DBG"
func FromEnv() *Logger {
	dest := os.Getenv("THREADSCRIPT_DEBUG")
	if dest == "" {
		return &Logger{enabled: false}
	}
	var w *os.File
	switch dest {
	case "cout":
		w = os.Stdout
	case "cerr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(dest, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return &Logger{enabled: false}
		}
		w = f
	}

	format := os.Getenv("THREADSCRIPT_DEBUG_FORMAT")
	l := &Logger{enabled: true, prefix: "DBG"}
	rest := format
	for len(rest) > 0 {
		switch rest[0] {
		case 'p':
			l.pid = true
			rest = rest[1:]
			continue
		case 't':
			l.tid = true
			rest = rest[1:]
			continue
		}
		break
	}
	if len(rest) > 0 && (rest[0] == ' ' || rest[0] == ':') {
		rest = rest[1:]
	}
	if rest != "" {
		l.prefix = rest
	}

	l.zl = zerolog.New(w).With().Timestamp().Logger()
	return l
}

// Printf writes a formatted debug line if logging is enabled.
func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil || !l.enabled {
		return
	}
	var sb strings.Builder
	sb.WriteString(l.prefix)
	if l.pid {
		fmt.Fprintf(&sb, "[pid=%d]", os.Getpid())
	}
	if l.tid {
		fmt.Fprintf(&sb, "[tid=%p]", &sb)
	}
	sb.WriteString(": ")
	fmt.Fprintf(&sb, format, args...)
	l.zl.Log().Msg(sb.String())
}

// Enabled reports whether this logger actually writes anything.
func (l *Logger) Enabled() bool { return l != nil && l.enabled }
