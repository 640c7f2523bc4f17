// Package richtext models document content as a structured node tree and
// implements formatting commands as pure transforms over it. Snapshots are
// the JSON serialization of the tree, so every transform is deterministic
// and testable without a rendering engine.
package richtext

// NodeType discriminates tree nodes. Root children are blocks; text and
// link nodes are inline.
type NodeType string

const (
	NodeRoot      NodeType = "root"
	NodeParagraph NodeType = "paragraph"
	NodeHeading   NodeType = "heading"
	NodeList      NodeType = "list"
	NodeListItem  NodeType = "listitem"
	NodeText      NodeType = "text"
	NodeLink      NodeType = "link"
	NodeImage     NodeType = "image"
)

// Format is a bitmask of inline text styles.
type Format uint8

const (
	FormatBold Format = 1 << iota
	FormatItalic
	FormatUnderline
)

const (
	ListBullet = "bullet"
	ListNumber = "number"
)

// Node is the single tree node shape; which fields are meaningful depends
// on Type. Zero-valued fields are omitted from the snapshot.
type Node struct {
	Type     NodeType `json:"type"`
	Children []*Node  `json:"children,omitempty"`

	// text
	Text   string `json:"text,omitempty"`
	Format Format `json:"format,omitempty"`
	Font   string `json:"font,omitempty"`

	// heading
	Level int `json:"level,omitempty"`

	// list / listitem
	ListType string `json:"listType,omitempty"`
	Indent   int    `json:"indent,omitempty"`

	// link
	URL string `json:"url,omitempty"`

	// image
	Src     string `json:"src,omitempty"`
	Size    string `json:"size,omitempty"`
	Caption string `json:"caption,omitempty"`
	Align   string `json:"align,omitempty"`
}

// NewParagraph builds an empty paragraph block.
func NewParagraph(children ...*Node) *Node {
	return &Node{Type: NodeParagraph, Children: children}
}

// NewText builds a plain text node.
func NewText(text string) *Node {
	return &Node{Type: NodeText, Text: text}
}

// textLength is the number of runes of text under the node.
func (n *Node) textLength() int {
	if n.Type == NodeText {
		return len([]rune(n.Text))
	}
	total := 0
	for _, child := range n.Children {
		total += child.textLength()
	}
	return total
}

func (n *Node) isBlock() bool {
	switch n.Type {
	case NodeParagraph, NodeHeading, NodeList, NodeImage:
		return true
	}
	return false
}
