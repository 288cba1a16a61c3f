package posts

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/rylenlobo/blog-app-client/internal/domain"
)

type RenderOptions struct {
	ShowIDs bool
}

const dateLayout = "January 2, 2006"

// RenderList renders post cards: title, byline, date, summary.
func RenderList(entries []domain.Post, opts RenderOptions) string {
	s := defaultStyles()

	lines := []string{
		s.title.Render("Blog Posts"),
		s.header.Render(fmt.Sprintf("posts: %d", len(entries))),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("No blog posts found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range entries {
		lines = append(lines, s.section.Render(renderCard(entry, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderPost renders a single post with its content flattened to plain
// text.
func RenderPost(post domain.Post) string {
	s := defaultStyles()

	parts := []string{
		s.post.Render(post.Title),
		renderByline(post, s),
	}

	body := FlattenDocument(post.Content)
	if body == "" {
		parts = append(parts, s.empty.Render("(no content)"))
	} else {
		parts = append(parts, s.body.Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCard(post domain.Post, opts RenderOptions, s styles) string {
	header := s.post.Render(post.Title)
	if opts.ShowIDs {
		header += " " + s.date.Render(fmt.Sprintf("(%s)", post.ID))
	}

	parts := []string{
		header,
		renderByline(post, s),
	}
	if post.Summary != "" {
		parts = append(parts, s.summary.Render(post.Summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderByline(post domain.Post, s styles) string {
	byline := s.byline.Render("By " + post.Author.DisplayName())
	if post.CreatedAt.IsZero() {
		return byline
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		byline,
		" ",
		s.date.Render("• "+post.CreatedAt.Format(dateLayout)),
	)
}
