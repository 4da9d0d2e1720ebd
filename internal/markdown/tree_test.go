package markdown

import (
	"errors"
	"testing"
)

func TestNodeMutations(t *testing.T) {
	root := &Node{Kind: KindDocument}
	a, b, c := NewHTML("a"), NewHTML("b"), NewHTML("c")
	root.Append(a, c)

	if err := root.InsertAfter(a, b); err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}
	if got := render(root, true); got != "a\n\nb\n\nc" {
		t.Fatalf("unexpected order %q", got)
	}
	if b.Parent() != root {
		t.Fatalf("inserted node should point at its container")
	}

	if err := root.InsertAfter(NewHTML("stray"), NewHTML("x")); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}

	if !root.Remove(b) || b.Parent() != nil {
		t.Fatalf("expected b to be detached")
	}
	if root.Remove(b) {
		t.Fatalf("removing a detached node should report false")
	}

	d := NewHTML("d")
	if err := root.Replace(c, d); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	root.Prepend(b)
	if got := render(root, true); got != "b\n\na\n\nd" {
		t.Fatalf("unexpected order after replace %q", got)
	}
}

func TestInsertMarksAncestorsDirty(t *testing.T) {
	doc, err := Default().ParseString("> - item\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	item := doc.Root.Children[0].Children[0].Children[0]
	if item.Kind != KindListItem {
		t.Fatalf("expected list item, got %s", item.Kind)
	}

	item.Append(NewHTML("<!-- note -->"))
	for n := item; n != nil; n = n.Parent() {
		if !n.dirty {
			t.Fatalf("%s should be dirty", n.Kind)
		}
	}
	if got, want := doc.Markdown(), "> - item\n>   <!-- note -->\n"; got != want {
		t.Fatalf("unexpected output\nwant: %q\ngot:  %q", want, got)
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	doc, err := Default().ParseString("> quoted\n\ntext\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var kinds []Kind
	doc.Root.Walk(func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != KindBlockquote
	})
	want := []Kind{KindDocument, KindBlockquote, KindParagraph}
	if len(kinds) != len(want) {
		t.Fatalf("unexpected walk %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("unexpected walk %v", kinds)
		}
	}
}

func TestCommentSegments(t *testing.T) {
	segments := CommentSegments("<!-- a -->\n text \n<!--\n/a\n-->  ")
	want := []Segment{
		{Text: "<!-- a -->", Comment: true},
		{Text: "text"},
		{Text: "<!--\n/a\n-->", Comment: true},
	}
	if len(segments) != len(want) {
		t.Fatalf("unexpected segments %#v", segments)
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Fatalf("segment %d: want %#v, got %#v", i, want[i], segments[i])
		}
	}
}

func TestSplitComments(t *testing.T) {
	doc, err := Default().ParseString("<!-- a --><!-- /a -->\n\n<div>kept<!-- x --></div>\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	n := SplitComments(doc.Root, func([]Segment) bool { return true })
	if n != 1 {
		t.Fatalf("expected one split, got %d", n)
	}
	want := "<!-- a -->\n\n<!-- /a -->\n\n<div>kept<!-- x --></div>\n"
	if got := doc.Markdown(); got != want {
		t.Fatalf("unexpected output\nwant: %q\ngot:  %q", want, got)
	}
}

func TestOnlyComments(t *testing.T) {
	if !OnlyComments(CommentSegments("<!-- a -->\n  <!-- b -->")) {
		t.Fatal("whitespace between comments should not count as text")
	}
	if OnlyComments(CommentSegments("<div><!-- a --></div>")) {
		t.Fatal("HTML around a comment is not comment-only")
	}
	if OnlyComments(nil) {
		t.Fatal("no segments is not comment-only")
	}
}
