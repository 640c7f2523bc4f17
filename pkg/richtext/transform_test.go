package richtext

import (
	"strings"
	"testing"
)

func snapshot(t *testing.T, blocks ...*Node) string {
	t.Helper()
	s, err := Serialize(&Node{Type: NodeRoot, Children: blocks})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	return s
}

func parse(t *testing.T, content string) *Node {
	t.Helper()
	root, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return root
}

func TestBoldToggle(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("hello world")))
	sel := Selection{StartBlock: 0, StartOffset: 0, EndBlock: 0, EndOffset: 5}

	bolded, err := Apply(content, CmdBold, sel, nil)
	if err != nil {
		t.Fatalf("Apply bold: %v", err)
	}

	root := parse(t, bolded)
	children := root.Children[0].Children
	if len(children) != 2 {
		t.Fatalf("expected split into 2 text nodes, got %d", len(children))
	}
	if children[0].Text != "hello" || children[0].Format&FormatBold == 0 {
		t.Errorf("first node = %q format %d; want bold %q", children[0].Text, children[0].Format, "hello")
	}
	if children[1].Text != " world" || children[1].Format&FormatBold != 0 {
		t.Errorf("second node = %q format %d; want plain %q", children[1].Text, children[1].Format, " world")
	}

	// Toggling the same range again removes the style and the split
	// merges back into a single node.
	plain, err := Apply(bolded, CmdBold, sel, nil)
	if err != nil {
		t.Fatalf("Apply bold twice: %v", err)
	}
	root = parse(t, plain)
	children = root.Children[0].Children
	if len(children) != 1 || children[0].Text != "hello world" || children[0].Format != 0 {
		t.Errorf("after un-bold: %+v; want single plain node", children)
	}
}

func TestPartiallyFormattedSelectionGetsFullyFormatted(t *testing.T) {
	content := snapshot(t, NewParagraph(
		&Node{Type: NodeText, Text: "ab", Format: FormatBold},
		NewText("cd"),
	))
	sel := Selection{StartBlock: 0, StartOffset: 0, EndBlock: 0, EndOffset: 4}

	out, err := Apply(content, CmdBold, sel, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root := parse(t, out)
	children := root.Children[0].Children
	if len(children) != 1 || children[0].Format&FormatBold == 0 || children[0].Text != "abcd" {
		t.Errorf("mixed selection should become uniformly bold, got %+v", children)
	}
}

func TestFormatAcrossBlocks(t *testing.T) {
	content := snapshot(t,
		NewParagraph(NewText("first")),
		NewParagraph(NewText("second")),
	)
	sel := Selection{StartBlock: 0, StartOffset: 2, EndBlock: 1, EndOffset: 3}

	out, err := Apply(content, CmdItalic, sel, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root := parse(t, out)

	first := root.Children[0].Children
	if first[1].Text != "rst" || first[1].Format&FormatItalic == 0 {
		t.Errorf("tail of first block should be italic, got %+v", first)
	}
	second := root.Children[1].Children
	if second[0].Text != "sec" || second[0].Format&FormatItalic == 0 {
		t.Errorf("head of second block should be italic, got %+v", second)
	}
}

func TestHeadingAppliesToWholeSelection(t *testing.T) {
	content := snapshot(t,
		NewParagraph(NewText("one")),
		NewParagraph(NewText("two")),
	)
	sel := Selection{StartBlock: 0, EndBlock: 1, EndOffset: 3}

	out, err := Apply(content, CmdHeading, sel, 2)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root := parse(t, out)
	for i, block := range root.Children {
		if block.Type != NodeHeading || block.Level != 2 {
			t.Errorf("block %d = %s level %d; want heading level 2", i, block.Type, block.Level)
		}
	}

	// Level 0 converts back.
	out, err = Apply(out, CmdHeading, sel, 0)
	if err != nil {
		t.Fatalf("Apply level 0: %v", err)
	}
	root = parse(t, out)
	for i, block := range root.Children {
		if block.Type != NodeParagraph {
			t.Errorf("block %d = %s; want paragraph", i, block.Type)
		}
	}
}

func TestHeadingRejectsUnconvertibleBlockAtomically(t *testing.T) {
	content := snapshot(t,
		NewParagraph(NewText("text")),
		newImageNode(ImageOptions{Source: "https://example.com/a.png", Size: SizeMedium, Align: AlignLeft}),
	)
	sel := Selection{StartBlock: 0, EndBlock: 1}

	_, err := Apply(content, CmdHeading, sel, 1)
	if err == nil {
		t.Fatal("expected rejection when the selection includes an image")
	}

	// Nothing changed: the first block did not become a heading.
	root := parse(t, content)
	if root.Children[0].Type != NodeParagraph {
		t.Error("rejected command must leave the document untouched")
	}
}

func TestListToggle(t *testing.T) {
	content := snapshot(t,
		NewParagraph(NewText("alpha")),
		NewParagraph(NewText("beta")),
	)
	sel := Selection{StartBlock: 0, EndBlock: 1, EndOffset: 4}

	out, err := Apply(content, CmdBulletedList, sel, nil)
	if err != nil {
		t.Fatalf("Apply list: %v", err)
	}
	root := parse(t, out)
	if len(root.Children) != 1 {
		t.Fatalf("expected one list block, got %d blocks", len(root.Children))
	}
	list := root.Children[0]
	if list.Type != NodeList || list.ListType != ListBullet || len(list.Children) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Toggling again unwraps back to paragraphs.
	out, err = Apply(out, CmdBulletedList, Selection{StartBlock: 0, EndBlock: 0}, nil)
	if err != nil {
		t.Fatalf("Apply unwrap: %v", err)
	}
	root = parse(t, out)
	if len(root.Children) != 2 || root.Children[0].Type != NodeParagraph {
		t.Errorf("expected two paragraphs after unwrap, got %+v", root.Children)
	}
}

func TestListTypeConversion(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("item")))
	sel := Selection{StartBlock: 0, EndBlock: 0, EndOffset: 4}

	bulleted, err := Apply(content, CmdBulletedList, sel, nil)
	if err != nil {
		t.Fatalf("Apply bulleted: %v", err)
	}
	numbered, err := Apply(bulleted, CmdNumberedList, Selection{StartBlock: 0, EndBlock: 0}, nil)
	if err != nil {
		t.Fatalf("Apply numbered: %v", err)
	}
	root := parse(t, numbered)
	if root.Children[0].ListType != ListNumber {
		t.Errorf("list type = %q; want number", root.Children[0].ListType)
	}
}

func TestIndentOutdentClamps(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("text")))
	sel := Selection{StartBlock: 0, EndBlock: 0}

	out, err := Apply(content, CmdOutdent, sel, nil)
	if err != nil {
		t.Fatalf("Apply outdent: %v", err)
	}
	root := parse(t, out)
	if root.Children[0].Indent != 0 {
		t.Errorf("outdent at zero must stay zero, got %d", root.Children[0].Indent)
	}

	out, err = Apply(out, CmdIndent, sel, nil)
	if err != nil {
		t.Fatalf("Apply indent: %v", err)
	}
	root = parse(t, out)
	if root.Children[0].Indent != 1 {
		t.Errorf("indent = %d; want 1", root.Children[0].Indent)
	}
}

func TestFontFamily(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("styled text")))
	sel := Selection{StartBlock: 0, StartOffset: 0, EndBlock: 0, EndOffset: 6}

	out, err := Apply(content, CmdFontFamily, sel, "Georgia")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root := parse(t, out)
	children := root.Children[0].Children
	if children[0].Font != "Georgia" || children[0].Text != "styled" {
		t.Errorf("font not applied to selection: %+v", children)
	}
	if children[1].Font != "" {
		t.Errorf("font leaked past the selection: %+v", children[1])
	}
}

func TestLinkWrapsSelection(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("visit the docs today")))
	sel := Selection{StartBlock: 0, StartOffset: 6, EndBlock: 0, EndOffset: 14}

	out, err := Apply(content, CmdLink, sel, "https://example.com")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	root := parse(t, out)
	children := root.Children[0].Children
	if len(children) != 3 {
		t.Fatalf("expected text-link-text, got %d nodes", len(children))
	}
	link := children[1]
	if link.Type != NodeLink || link.URL != "https://example.com" {
		t.Fatalf("unexpected link node: %+v", link)
	}
	if link.Children[0].Text != "the docs" {
		t.Errorf("link text = %q; want %q", link.Children[0].Text, "the docs")
	}
}

func TestLinkValidation(t *testing.T) {
	content := snapshot(t,
		NewParagraph(NewText("one")),
		NewParagraph(NewText("two")),
	)

	cases := []struct {
		name string
		sel  Selection
		url  interface{}
	}{
		{"spans blocks", Selection{StartBlock: 0, EndBlock: 1, EndOffset: 3}, "https://x.com"},
		{"bad scheme", Selection{StartBlock: 0, EndBlock: 0, EndOffset: 3}, "javascript:alert(1)"},
		{"collapsed", Selection{StartBlock: 0, StartOffset: 1, EndBlock: 0, EndOffset: 1}, "https://x.com"},
		{"not a string", Selection{StartBlock: 0, EndBlock: 0, EndOffset: 3}, 42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Apply(content, CmdLink, tc.sel, tc.url); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestInsertImage(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("above")))
	sel := Selection{StartBlock: 0, EndBlock: 0, EndOffset: 5}

	opts := ImageOptions{
		Source:  "data:image/png;base64,AAAA",
		Size:    SizeLarge,
		Caption: "a caption",
		Align:   AlignCenter,
	}
	out, err := Apply(content, CmdInsertImage, sel, opts)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	root := parse(t, out)
	if len(root.Children) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(root.Children))
	}
	img := root.Children[1]
	if img.Type != NodeImage {
		t.Fatalf("second block = %s; want image", img.Type)
	}
	if img.Src != opts.Source || img.Size != SizeLarge || img.Caption != "a caption" || img.Align != AlignCenter {
		t.Errorf("image attributes not preserved: %+v", img)
	}
}

func TestInsertImageValidation(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("x")))
	sel := Selection{StartBlock: 0, EndBlock: 0}

	cases := []struct {
		name string
		opts ImageOptions
	}{
		{"bad source", ImageOptions{Source: "ftp://files/a.png", Size: SizeSmall, Align: AlignLeft}},
		{"bad size", ImageOptions{Source: "https://x.com/a.png", Size: "huge", Align: AlignLeft}},
		{"bad align", ImageOptions{Source: "https://x.com/a.png", Size: SizeFull, Align: "justify"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Apply(content, CmdInsertImage, sel, tc.opts); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSelectionBounds(t *testing.T) {
	content := snapshot(t, NewParagraph(NewText("abc")))

	cases := []struct {
		name string
		sel  Selection
	}{
		{"block out of range", Selection{StartBlock: 0, EndBlock: 5}},
		{"negative block", Selection{StartBlock: -1, EndBlock: 0}},
		{"offset past end", Selection{StartBlock: 0, EndBlock: 0, EndOffset: 99}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Apply(content, CmdBold, tc.sel, nil); err == nil {
				t.Error("expected a selection error")
			}
		})
	}

	// Inverted selections are normalized, not rejected.
	out, err := Apply(content, CmdBold, Selection{StartBlock: 0, StartOffset: 3, EndBlock: 0, EndOffset: 0}, nil)
	if err != nil {
		t.Fatalf("inverted selection should normalize: %v", err)
	}
	if !strings.Contains(out, "abc") {
		t.Errorf("content lost during normalization: %s", out)
	}
}

func TestEmptySnapshotParsesToEmptyParagraph(t *testing.T) {
	root := parse(t, "")
	if len(root.Children) != 1 || root.Children[0].Type != NodeParagraph {
		t.Fatalf("empty snapshot should parse to one empty paragraph, got %+v", root.Children)
	}

	// And it is editable straight away.
	if _, err := Apply("", CmdHeading, Selection{}, 1); err != nil {
		t.Errorf("command on empty document failed: %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, bad := range []string{
		"{not json",
		`{"type":"paragraph"}`,
		`{"type":"root","children":[{"type":"text","text":"loose"}]}`,
	} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}
