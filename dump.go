package databook

import (
	"strconv"
	"strings"
)

// Dump renders the node on a single line, fields sorted by name:
//
//	{hp: 10, name: "orc", pos: {x: 1.5, y: -2}}
func (n *Node) Dump() string {
	var buf strings.Builder
	dump(&buf, n)
	return buf.String()
}

func dump(buf *strings.Builder, n *Node) {
	if n == nil {
		buf.WriteString("<nil>")
		return
	}
	buf.WriteByte('{')
	for i, name := range n.Names() {
		if i > 0 {
			buf.WriteByte(',')
			buf.WriteByte(' ')
		}
		if isBareName(name) {
			buf.WriteString(name)
		} else {
			buf.WriteString(strconv.Quote(name))
		}
		buf.WriteByte(':')
		buf.WriteByte(' ')
		v := n.fields[name]
		if v.kind == KindNode {
			dump(buf, v.node)
			continue
		}
		buf.WriteString(v.String())
	}
	buf.WriteByte('}')
}

func isBareName(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-', c == '.':
		default:
			return false
		}
	}
	return true
}
