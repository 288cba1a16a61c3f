package posts

import (
	"encoding/json"
	"strings"

	"github.com/rylenlobo/blog-app-client/internal/domain"
)

type contentNode struct {
	Type    string        `json:"type"`
	Content []contentNode `json:"content"`
	Text    string        `json:"text"`
}

// FlattenDocument turns the editor document into plain text for terminal
// display. It only walks text leaves and inserts breaks between blocks;
// node semantics stay with the editor.
func FlattenDocument(doc domain.Document) string {
	if doc.IsZero() {
		return ""
	}

	var root contentNode
	if err := json.Unmarshal(doc, &root); err != nil {
		return ""
	}

	blocks := make([]string, 0, len(root.Content))
	for _, child := range root.Content {
		var b strings.Builder
		flattenNode(child, &b)
		if text := strings.TrimRight(b.String(), "\n"); text != "" {
			blocks = append(blocks, text)
		}
	}

	return strings.Join(blocks, "\n\n")
}

func flattenNode(n contentNode, b *strings.Builder) {
	if n.Type == "hardBreak" {
		b.WriteByte('\n')
		return
	}
	if n.Text != "" {
		b.WriteString(n.Text)
	}

	for i, child := range n.Content {
		if i > 0 && isBlockNode(child.Type) {
			b.WriteByte('\n')
		}
		flattenNode(child, b)
	}
}

func isBlockNode(nodeType string) bool {
	switch nodeType {
	case "paragraph", "heading", "blockquote", "codeBlock", "listItem", "bulletList", "orderedList", "horizontalRule":
		return true
	}
	return false
}
