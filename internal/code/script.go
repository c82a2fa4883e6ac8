package code

import (
	"github.com/threadscript/ts/internal/texc"
	"github.com/threadscript/ts/internal/value"
)

// Script owns a single root node and a file-name string. Scripts are
// shared by reference (a *Script may be embedded in a value.Value of
// kind KScript and handed to any number of threads once resolved and
// mt-safe).
type Script struct {
	File string
	Root *Node
}

// NewScript creates an empty script for the given file name (use "" or
// another placeholder name for non-file sources).
func NewScript(file string) *Script {
	return &Script{File: file}
}

// AddNode appends a new child to parent, or sets the script's root if
// parent is nil. It fails with parse_error if parent is nil and the
// root is already set (§4.2).
func (s *Script) AddNode(parent *Node, loc texc.SrcLocation, name string, val *value.Value, hasValue bool) (*Node, error) {
	n := &Node{Loc: loc, name: name, value: val, hasValue: hasValue, script: s}
	if parent == nil {
		if s.Root != nil {
			return nil, texc.Newf(texc.KindParseError, "script already has a root node")
		}
		s.Root = n
		return n, nil
	}
	parent.children = append(parent.children, n)
	return n, nil
}
