package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Document is the rich-text payload exchanged with the editor. The client
// carries it opaquely; Validate only checks the recursive node shape at the
// boundary (type, optional attrs, ordered child content, optional marks,
// optional text) and never the node semantics.
type Document []byte

var (
	ErrEmptyDocument   = errors.New("document is empty")
	ErrNotRootDocument = errors.New("document root must have type \"doc\"")
)

type documentNode struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs"`
	Content []documentNode `json:"content"`
	Marks   []documentMark `json:"marks"`
	Text    *string        `json:"text"`
}

type documentMark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	if d == nil {
		return errors.New("unmarshal into nil document")
	}
	*d = append((*d)[:0], data...)
	return nil
}

func (d Document) IsZero() bool {
	return len(d) == 0 || string(d) == "null"
}

// Validate enforces the editor document shape: a "doc" root with at least
// one child, and well-formed nodes all the way down. Unknown keys are
// allowed everywhere.
func (d Document) Validate() error {
	if d.IsZero() {
		return ErrEmptyDocument
	}

	var root documentNode
	if err := json.Unmarshal(d, &root); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if root.Type != "doc" {
		return ErrNotRootDocument
	}
	if len(root.Content) == 0 {
		return errors.New("document content is required")
	}

	for i := range root.Content {
		if err := validateNode(root.Content[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateNode(n documentNode) error {
	for _, mark := range n.Marks {
		if mark.Type == "" {
			return errors.New("document mark is missing a type")
		}
	}

	for i := range n.Content {
		if err := validateNode(n.Content[i]); err != nil {
			return err
		}
	}

	return nil
}
