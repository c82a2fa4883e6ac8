package code

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"github.com/threadscript/ts/internal/value"
)

// Dump renders a code tree as an indented tree diagram, used by the
// `-n` parse-only CLI mode and general debugging (SPEC_FULL.md, DOMAIN
// STACK: github.com/xlab/treeprint).
func Dump(s *Script) string {
	if s == nil || s.Root == nil {
		return "(empty script)"
	}
	root := treeprint.NewWithRoot(labelOf(s.Root))
	addChildren(root, s.Root)
	return root.String()
}

func addChildren(branch treeprint.Tree, n *Node) {
	for _, c := range n.children {
		b := branch.AddBranch(labelOf(c))
		addChildren(b, c)
	}
}

func labelOf(n *Node) string {
	var sb strings.Builder
	if n.name != "" {
		sb.WriteString(n.name)
	} else {
		sb.WriteString("<literal>")
	}
	if n.hasValue {
		if n.value == nil {
			sb.WriteString(" = null")
		} else {
			fmt.Fprintf(&sb, " = %s(%s)", n.value.TypeName(), n.value.String())
		}
	}
	fmt.Fprintf(&sb, "  [%s:%d:%d]", n.script.File, n.Loc.Line, n.Loc.Column)
	return sb.String()
}

// Unparse renders a code tree back into the canonical syntax, the
// serializer half of §8's round-trip law
// `parse(print_script(tree)) == tree`: every literal and call node it
// emits is valid canon-grammar source that Parse accepts again.
func Unparse(s *Script) string {
	if s == nil || s.Root == nil {
		return ""
	}
	var sb strings.Builder
	unparseNode(&sb, s.Root)
	return sb.String()
}

func unparseNode(sb *strings.Builder, n *Node) {
	if n.name == "" {
		unparseLiteral(sb, n)
		return
	}
	sb.WriteString(n.name)
	sb.WriteByte('(')
	for i, c := range n.children {
		if i > 0 {
			sb.WriteString(", ")
		}
		unparseNode(sb, c)
	}
	sb.WriteByte(')')
}

func unparseLiteral(sb *strings.Builder, n *Node) {
	if !n.hasValue || n.value == nil {
		sb.WriteString("null")
		return
	}
	switch n.value.Kind() {
	case value.KBool:
		if n.value.BoolValue() {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case value.KInt:
		i := n.value.IntValue()
		if i >= 0 {
			sb.WriteByte('+')
		}
		fmt.Fprintf(sb, "%d", i)
	case value.KUnsigned:
		fmt.Fprintf(sb, "%d", n.value.UnsignedValue())
	case value.KString:
		sb.WriteByte('"')
		sb.WriteString(escapeString(n.value.StringValue()))
		sb.WriteByte('"')
	default:
		// Other kinds (vector, hash, function, object, ...) never occur
		// as literal nodes straight out of the canonical parser; they
		// only arise at runtime, outside any code tree Unparse sees.
		sb.WriteString("null")
	}
}

// escapeString reverses scanner.scanString's escape handling so the
// result re-scans to the original bytes.
func escapeString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\t':
			sb.WriteString(`\t`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case 0:
			sb.WriteString(`\0`)
		default:
			if c < 0x20 || c > 0x7e {
				fmt.Fprintf(&sb, `\x%02x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	return sb.String()
}
