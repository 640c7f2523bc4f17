package richtext

import (
	"encoding/json"
	"fmt"
)

// Parse decodes a snapshot into a node tree. An empty snapshot is a valid
// document with one empty paragraph, so new documents need no seeding.
func Parse(content string) (*Node, error) {
	if content == "" {
		return &Node{Type: NodeRoot, Children: []*Node{NewParagraph()}}, nil
	}

	var root Node
	if err := json.Unmarshal([]byte(content), &root); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if root.Type != NodeRoot {
		return nil, fmt.Errorf("parse snapshot: top-level node is %q, want %q", root.Type, NodeRoot)
	}
	for i, child := range root.Children {
		if child == nil || !child.isBlock() {
			return nil, fmt.Errorf("parse snapshot: child %d is not a block node", i)
		}
	}
	if len(root.Children) == 0 {
		root.Children = []*Node{NewParagraph()}
	}
	return &root, nil
}

// Serialize encodes a tree back into a snapshot string.
func Serialize(root *Node) (string, error) {
	if root == nil || root.Type != NodeRoot {
		return "", fmt.Errorf("serialize snapshot: not a root node")
	}
	out, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("serialize snapshot: %w", err)
	}
	return string(out), nil
}
