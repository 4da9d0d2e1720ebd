package markdown

import "strings"

// render serialises n. Clean containers reuse their source unless canonical
// is set, in which case every container is rebuilt from its children.
func render(n *Node, canonical bool) string {
	if n == nil {
		return ""
	}
	if !n.Kind.IsContainer() {
		return n.Literal
	}
	if !n.dirty && !canonical {
		return n.raw
	}

	switch n.Kind {
	case KindBlockquote:
		return quote(joinChildren(n, "\n\n", canonical))
	case KindList:
		sep := "\n\n"
		if n.tight {
			sep = "\n"
		}
		return joinChildren(n, sep, canonical)
	case KindListItem:
		sep := "\n\n"
		if n.parent != nil && n.parent.tight {
			sep = "\n"
		}
		return bullet(n.marker, joinChildren(n, sep, canonical))
	default:
		return joinChildren(n, "\n\n", canonical)
	}
}

func joinChildren(n *Node, sep string, canonical bool) string {
	parts := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		if out := render(child, canonical); out != "" {
			parts = append(parts, out)
		}
	}
	return strings.Join(parts, sep)
}

func quote(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func bullet(marker, body string) string {
	if marker == "" {
		marker = "-"
	}
	pad := strings.Repeat(" ", len(marker)+1)
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = strings.TrimRight(marker+" "+line, " ")
		case line == "":
		default:
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
