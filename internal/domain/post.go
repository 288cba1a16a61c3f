package domain

import "time"

type PostID string

type Author struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (a Author) DisplayName() string {
	if a.FirstName == "" {
		return a.LastName
	}
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}

// Post is a published blog entry. Content is the editor document and is
// never interpreted beyond its boundary shape.
type Post struct {
	ID        PostID    `json:"_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Author    Author    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	Content   Document  `json:"content,omitempty"`
}

// PostDraft is the payload for creating or updating a post.
type PostDraft struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Content Document `json:"content"`
}

func (d PostDraft) Validate() error {
	fields := FieldErrors{}
	if d.Title == "" {
		fields["title"] = "Title is required"
	}
	if d.Summary == "" {
		fields["summary"] = "Summary is required"
	}
	if err := d.Content.Validate(); err != nil {
		fields["content"] = err.Error()
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}
