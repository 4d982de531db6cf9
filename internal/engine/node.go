package engine

import (
	"html"
	"sort"
	"strings"
)

// Node is the renderable document tree produced by createElement, for both
// trusted built-in templates and sandboxed custom templates.
type Node struct {
	Tag   string
	Key   string
	Props map[string]any
	// Children holds *Node and string text runs, already flattened.
	Children []any
}

var voidTags = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "meta": true, "link": true,
}

// El builds a node the same way sandboxed createElement does; built-in
// templates use it directly.
func El(tag string, props map[string]any, children ...any) *Node {
	n := &Node{Tag: tag, Props: props}
	if props != nil {
		if k, ok := props["key"]; ok {
			n.Key = jsString(k)
		}
	}
	appendChildren(n, children)
	return n
}

func appendChildren(n *Node, children []any) {
	for _, c := range children {
		switch v := c.(type) {
		case nil:
			// skipped, like null/undefined children
		case bool:
			// booleans render nothing
		case *Node:
			n.Children = append(n.Children, v)
		case string:
			n.Children = append(n.Children, v)
		case float64, int:
			n.Children = append(n.Children, jsString(v))
		case []any:
			appendChildren(n, v)
		default:
			n.Children = append(n.Children, jsString(v))
		}
	}
}

// HTML serializes the tree. Text runs are escaped; style maps become inline
// CSS; className maps to class; the render key is emitted as data-key so
// output stays inspectable.
func (n *Node) HTML() string {
	var sb strings.Builder
	n.writeHTML(&sb)
	return sb.String()
}

func (n *Node) writeHTML(sb *strings.Builder) {
	tag := n.Tag
	if tag == "" {
		tag = "div"
	}
	sb.WriteByte('<')
	sb.WriteString(tag)
	n.writeAttrs(sb)
	if voidTags[tag] {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, c := range n.Children {
		switch v := c.(type) {
		case *Node:
			v.writeHTML(sb)
		case string:
			sb.WriteString(html.EscapeString(v))
		}
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
}

func (n *Node) writeAttrs(sb *strings.Builder) {
	if n.Key != "" {
		sb.WriteString(` data-key="`)
		sb.WriteString(html.EscapeString(n.Key))
		sb.WriteByte('"')
	}
	if len(n.Props) == 0 {
		return
	}
	names := make([]string, 0, len(n.Props))
	for k := range n.Props {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := n.Props[k]
		switch k {
		case "key":
			continue
		case "className":
			writeAttr(sb, "class", jsString(v))
			continue
		case "style":
			if m, ok := v.(map[string]any); ok {
				writeAttr(sb, "style", styleCSS(m))
			} else {
				writeAttr(sb, "style", jsString(v))
			}
			continue
		}
		// event handlers and function props have no HTML form
		if strings.HasPrefix(k, "on") {
			continue
		}
		switch tv := v.(type) {
		case nil:
		case bool:
			if tv {
				sb.WriteByte(' ')
				sb.WriteString(k)
			}
		default:
			writeAttr(sb, k, jsString(v))
		}
	}
}

func writeAttr(sb *strings.Builder, name, val string) {
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	sb.WriteString(html.EscapeString(val))
	sb.WriteByte('"')
}

// styleCSS converts a {fontSize: "12px"} style object into inline CSS with
// camelCase names kebab-cased.
func styleCSS(style map[string]any) string {
	names := make([]string, 0, len(style))
	for k := range style {
		names = append(names, k)
	}
	sort.Strings(names)
	var sb strings.Builder
	for i, k := range names {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(kebab(k))
		sb.WriteByte(':')
		sb.WriteString(jsString(style[k]))
	}
	return sb.String()
}

func kebab(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			sb.WriteByte('-')
			sb.WriteRune(r - 'A' + 'a')
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
