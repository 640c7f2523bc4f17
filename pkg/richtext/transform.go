package richtext

import (
	"fmt"
	"strings"
)

// Command names a formatting operation. Commands are pure transforms:
// given a snapshot, a selection and an optional value they produce a new
// snapshot or an error, never a partially applied document.
type Command string

const (
	CmdBold         Command = "bold"
	CmdItalic       Command = "italic"
	CmdUnderline    Command = "underline"
	CmdBulletedList Command = "bulleted_list"
	CmdNumberedList Command = "numbered_list"
	CmdIndent       Command = "indent"
	CmdOutdent      Command = "outdent"
	CmdHeading      Command = "heading"      // value: level 1-6, 0 converts back to paragraph
	CmdFontFamily   Command = "font_family"  // value: font name, empty clears
	CmdLink         Command = "link"         // value: http(s) URL
	CmdInsertImage  Command = "insert_image" // value: ImageOptions
)

const maxIndent = 8

// Selection addresses a contiguous range: block indices into the root's
// children plus rune offsets into each boundary block's text.
type Selection struct {
	StartBlock  int
	StartOffset int
	EndBlock    int
	EndOffset   int
}

// Apply runs one command against a snapshot and returns the resulting
// snapshot. On error the input snapshot is the still-valid current state;
// nothing is ever half-applied.
func Apply(content string, cmd Command, sel Selection, value interface{}) (string, error) {
	root, err := Parse(content)
	if err != nil {
		return "", err
	}

	sel, err = normalizeSelection(root, sel)
	if err != nil {
		return "", err
	}

	switch cmd {
	case CmdBold:
		err = toggleFormat(root, sel, FormatBold)
	case CmdItalic:
		err = toggleFormat(root, sel, FormatItalic)
	case CmdUnderline:
		err = toggleFormat(root, sel, FormatUnderline)
	case CmdBulletedList:
		err = toggleList(root, sel, ListBullet)
	case CmdNumberedList:
		err = toggleList(root, sel, ListNumber)
	case CmdIndent:
		err = shiftIndent(root, sel, 1)
	case CmdOutdent:
		err = shiftIndent(root, sel, -1)
	case CmdHeading:
		err = setHeading(root, sel, value)
	case CmdFontFamily:
		err = setFont(root, sel, value)
	case CmdLink:
		err = wrapLink(root, sel, value)
	case CmdInsertImage:
		err = insertImage(root, sel, value)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return "", err
	}

	return Serialize(root)
}

func normalizeSelection(root *Node, sel Selection) (Selection, error) {
	last := len(root.Children) - 1
	if sel.StartBlock < 0 || sel.EndBlock < 0 || sel.StartBlock > last || sel.EndBlock > last {
		return sel, fmt.Errorf("selection block out of range")
	}
	if sel.StartBlock > sel.EndBlock ||
		(sel.StartBlock == sel.EndBlock && sel.StartOffset > sel.EndOffset) {
		sel.StartBlock, sel.EndBlock = sel.EndBlock, sel.StartBlock
		sel.StartOffset, sel.EndOffset = sel.EndOffset, sel.StartOffset
	}
	if sel.StartOffset < 0 || sel.StartOffset > root.Children[sel.StartBlock].textLength() {
		return sel, fmt.Errorf("selection start offset out of range")
	}
	if sel.EndOffset < 0 || sel.EndOffset > root.Children[sel.EndBlock].textLength() {
		return sel, fmt.Errorf("selection end offset out of range")
	}
	return sel, nil
}

// blockRange yields the local rune range the selection covers in block i.
func blockRange(root *Node, sel Selection, i int) (int, int) {
	from, to := 0, root.Children[i].textLength()
	if i == sel.StartBlock {
		from = sel.StartOffset
	}
	if i == sel.EndBlock {
		to = sel.EndOffset
	}
	return from, to
}

// toggleFormat adds the style when any selected rune lacks it, otherwise
// removes it from the whole selection.
func toggleFormat(root *Node, sel Selection, f Format) error {
	sawUnformatted := false
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		from, to := blockRange(root, sel, i)
		scanFormat(root.Children[i], 0, from, to, f, &sawUnformatted)
	}

	apply := func(n *Node) {
		if sawUnformatted {
			n.Format |= f
		} else {
			n.Format &^= f
		}
	}
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		from, to := blockRange(root, sel, i)
		mutateInlineRange(root.Children[i], 0, from, to, apply)
		normalizeInline(root.Children[i])
	}
	return nil
}

func setFont(root *Node, sel Selection, value interface{}) error {
	font, ok := value.(string)
	if !ok {
		return fmt.Errorf("font_family requires a font name value")
	}
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		from, to := blockRange(root, sel, i)
		mutateInlineRange(root.Children[i], 0, from, to, func(n *Node) { n.Font = font })
		normalizeInline(root.Children[i])
	}
	return nil
}

func setHeading(root *Node, sel Selection, value interface{}) error {
	level, err := intValue(value)
	if err != nil || level < 0 || level > 6 {
		return fmt.Errorf("heading requires a level between 0 and 6")
	}

	// Reject before touching anything so the change is all-or-nothing.
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		switch root.Children[i].Type {
		case NodeParagraph, NodeHeading:
		default:
			return fmt.Errorf("heading cannot apply to a %s block", root.Children[i].Type)
		}
	}

	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		block := root.Children[i]
		if level == 0 {
			block.Type = NodeParagraph
			block.Level = 0
		} else {
			block.Type = NodeHeading
			block.Level = level
		}
	}
	return nil
}

// toggleList converts the selected blocks into one list of the target
// type, or unwraps them back to paragraphs when they already all are.
func toggleList(root *Node, sel Selection, listType string) error {
	allTarget := true
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		block := root.Children[i]
		if block.Type == NodeImage {
			return fmt.Errorf("an image block cannot become a list item")
		}
		if block.Type != NodeList || block.ListType != listType {
			allTarget = false
		}
	}

	var replacement []*Node
	if allTarget {
		for i := sel.StartBlock; i <= sel.EndBlock; i++ {
			for _, item := range root.Children[i].Children {
				replacement = append(replacement, NewParagraph(item.Children...))
			}
		}
	} else {
		list := &Node{Type: NodeList, ListType: listType}
		for i := sel.StartBlock; i <= sel.EndBlock; i++ {
			block := root.Children[i]
			switch block.Type {
			case NodeList:
				for _, item := range block.Children {
					item.ListType = ""
					list.Children = append(list.Children, item)
				}
			default:
				list.Children = append(list.Children, &Node{
					Type:     NodeListItem,
					Children: block.Children,
					Indent:   block.Indent,
				})
			}
		}
		replacement = []*Node{list}
	}

	rebuilt := make([]*Node, 0, len(root.Children))
	rebuilt = append(rebuilt, root.Children[:sel.StartBlock]...)
	rebuilt = append(rebuilt, replacement...)
	rebuilt = append(rebuilt, root.Children[sel.EndBlock+1:]...)
	if len(rebuilt) == 0 {
		rebuilt = []*Node{NewParagraph()}
	}
	root.Children = rebuilt
	return nil
}

func shiftIndent(root *Node, sel Selection, delta int) error {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > maxIndent {
			return maxIndent
		}
		return v
	}
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		block := root.Children[i]
		if block.Type == NodeList {
			for _, item := range block.Children {
				item.Indent = clamp(item.Indent + delta)
			}
			continue
		}
		block.Indent = clamp(block.Indent + delta)
	}
	return nil
}

// wrapLink wraps the selected inline range of a single text block in a
// link node. Selecting across an existing link re-wraps its contents, so
// repeating the command updates the URL.
func wrapLink(root *Node, sel Selection, value interface{}) error {
	url, ok := value.(string)
	if !ok || (!strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://")) {
		return fmt.Errorf("link requires an http(s) URL value")
	}
	if sel.StartBlock != sel.EndBlock {
		return fmt.Errorf("a link cannot span blocks")
	}
	block := root.Children[sel.StartBlock]
	if block.Type != NodeParagraph && block.Type != NodeHeading {
		return fmt.Errorf("link requires a text block")
	}
	from, to := sel.StartOffset, sel.EndOffset
	if from == to {
		return fmt.Errorf("link requires a non-empty selection")
	}

	// Split boundary text nodes so the range aligns with node edges.
	mutateInlineRange(block, 0, from, to, func(*Node) {})

	var rebuilt, linked []*Node
	flush := func() {
		if len(linked) > 0 {
			rebuilt = append(rebuilt, &Node{Type: NodeLink, URL: url, Children: linked})
			linked = nil
		}
	}
	pos := 0
	for _, child := range block.Children {
		start := pos
		pos += child.textLength()
		if start >= from && pos <= to && pos > start {
			if child.Type == NodeLink {
				linked = append(linked, child.Children...)
			} else {
				linked = append(linked, child)
			}
			continue
		}
		flush()
		rebuilt = append(rebuilt, child)
	}
	flush()
	block.Children = rebuilt
	return nil
}

// insertImage places an image block immediately after the selection's end
// block.
func insertImage(root *Node, sel Selection, value interface{}) error {
	var opts ImageOptions
	switch v := value.(type) {
	case ImageOptions:
		opts = v
	case *ImageOptions:
		opts = *v
	default:
		return fmt.Errorf("insert_image requires image options")
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	at := sel.EndBlock + 1
	rebuilt := make([]*Node, 0, len(root.Children)+1)
	rebuilt = append(rebuilt, root.Children[:at]...)
	rebuilt = append(rebuilt, newImageNode(opts))
	rebuilt = append(rebuilt, root.Children[at:]...)
	root.Children = rebuilt
	return nil
}

// scanFormat reports whether any text rune in [from, to) lacks the style.
func scanFormat(parent *Node, pos, from, to int, f Format, sawUnformatted *bool) int {
	for _, child := range parent.Children {
		if child.Type != NodeText {
			pos = scanFormat(child, pos, from, to, f, sawUnformatted)
			continue
		}
		start := pos
		pos += len([]rune(child.Text))
		if overlaps(start, pos, from, to) && child.Format&f == 0 {
			*sawUnformatted = true
		}
	}
	return pos
}

// mutateInlineRange splits text nodes that straddle [from, to) and calls
// fn on every text node fully inside the range. It recurses through inline
// containers and list items, counting runes depth-first.
func mutateInlineRange(parent *Node, pos, from, to int, fn func(*Node)) int {
	rebuilt := make([]*Node, 0, len(parent.Children))
	for _, child := range parent.Children {
		if child.Type != NodeText {
			pos = mutateInlineRange(child, pos, from, to, fn)
			rebuilt = append(rebuilt, child)
			continue
		}

		runes := []rune(child.Text)
		start := pos
		end := start + len(runes)
		pos = end

		os, oe := start, end
		if from > os {
			os = from
		}
		if to < oe {
			oe = to
		}
		if os >= oe {
			rebuilt = append(rebuilt, child)
			continue
		}

		if os > start {
			left := *child
			left.Text = string(runes[:os-start])
			rebuilt = append(rebuilt, &left)
		}
		mid := *child
		mid.Text = string(runes[os-start : oe-start])
		fn(&mid)
		rebuilt = append(rebuilt, &mid)
		if oe < end {
			right := *child
			right.Text = string(runes[oe-start:])
			rebuilt = append(rebuilt, &right)
		}
	}
	parent.Children = rebuilt
	return pos
}

// normalizeInline merges adjacent text nodes with identical styling and
// drops empty ones, so a transform's splits never leak into the snapshot.
func normalizeInline(parent *Node) {
	rebuilt := make([]*Node, 0, len(parent.Children))
	for _, child := range parent.Children {
		if child.Type != NodeText {
			normalizeInline(child)
			rebuilt = append(rebuilt, child)
			continue
		}
		if child.Text == "" {
			continue
		}
		if len(rebuilt) > 0 {
			prev := rebuilt[len(rebuilt)-1]
			if prev.Type == NodeText && prev.Format == child.Format && prev.Font == child.Font {
				prev.Text += child.Text
				continue
			}
		}
		rebuilt = append(rebuilt, child)
	}
	parent.Children = rebuilt
}

func overlaps(start, end, from, to int) bool {
	if from > start {
		start = from
	}
	if to < end {
		end = to
	}
	return start < end
}

func intValue(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("expected a numeric value")
}
