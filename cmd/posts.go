package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	postsrender "github.com/rylenlobo/blog-app-client/internal/adapters/render/posts"
	"github.com/rylenlobo/blog-app-client/internal/domain"
)

func newPostsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse and manage blog posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}

			var entries []domain.Post
			fetch := func(ctx context.Context) error {
				var err error
				entries, err = app.blog.ListPosts(ctx)
				return err
			}
			if err := runFetch(cmd, "Fetching posts...", asJSON, fetch); err != nil {
				return err
			}

			return writePostsOutput(cmd, entries, postsrender.RenderOptions{}, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	cmd.AddCommand(
		newPostsViewCmd(app),
		newPostsMineCmd(app),
		newPostsCreateCmd(app),
		newPostsEditCmd(app),
		newPostsDeleteCmd(app),
	)

	return cmd
}

func newPostsViewCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Read a single post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}

			var post domain.Post
			fetch := func(ctx context.Context) error {
				var err error
				post, err = app.blog.GetPost(ctx, domain.PostID(args[0]))
				return err
			}
			if err := runFetch(cmd, "Fetching post...", asJSON, fetch); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, post)
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), postsrender.RenderPost(post))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newPostsMineCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := requireLogin(app, "/my-posts"); err != nil {
				return err
			}

			var entries []domain.Post
			fetch := func(ctx context.Context) error {
				var err error
				entries, err = app.blog.MyPosts(ctx)
				return err
			}
			if err := runFetch(cmd, "Fetching your posts...", asJSON, fetch); err != nil {
				return err
			}

			return writePostsOutput(cmd, entries, postsrender.RenderOptions{ShowIDs: true}, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newPostsCreateCmd(app *app) *cobra.Command {
	var title string
	var summary string
	var contentFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a new post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := requireLogin(app, "/create-post"); err != nil {
				return err
			}

			content, err := readContent(cmd, contentFile)
			if err != nil {
				return err
			}

			post, err := app.blog.CreatePost(cmd.Context(), domain.PostDraft{
				Title:   title,
				Summary: summary,
				Content: content,
			})
			if err != nil {
				return fmt.Errorf("publish post: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Post published (%s)\n", post.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&summary, "summary", "", "Concise summary of the content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Path to the editor document JSON ('-' for stdin)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("summary")
	_ = cmd.MarkFlagRequired("content-file")

	return cmd
}

func newPostsEditCmd(app *app) *cobra.Command {
	var title string
	var summary string
	var contentFile string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}

			id := domain.PostID(args[0])
			if err := requireLogin(app, "/edit-post/"+args[0]); err != nil {
				return err
			}

			existing, err := app.blog.GetPost(cmd.Context(), id)
			if err != nil {
				return err
			}

			draft := domain.PostDraft{
				Title:   existing.Title,
				Summary: existing.Summary,
				Content: existing.Content,
			}
			if cmd.Flags().Changed("title") {
				draft.Title = title
			}
			if cmd.Flags().Changed("summary") {
				draft.Summary = summary
			}
			if cmd.Flags().Changed("content-file") {
				content, err := readContent(cmd, contentFile)
				if err != nil {
					return err
				}
				draft.Content = content
			}

			if _, err := app.blog.UpdatePost(cmd.Context(), id, draft); err != nil {
				return fmt.Errorf("update post: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Post updated (%s)\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Post title")
	cmd.Flags().StringVar(&summary, "summary", "", "Concise summary of the content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Path to the editor document JSON ('-' for stdin)")

	return cmd
}

func newPostsDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}
			if err := requireLogin(app, "/my-posts"); err != nil {
				return err
			}

			if err := app.blog.DeletePost(cmd.Context(), domain.PostID(args[0])); err != nil {
				return fmt.Errorf("delete post: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Post deleted (%s)\n", args[0])
			return nil
		},
	}
}

func runFetch(cmd *cobra.Command, label string, asJSON bool, fetch func(context.Context) error) error {
	if asJSON {
		return fetch(cmd.Context())
	}
	return runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), label, fetch)
}

func writePostsOutput(cmd *cobra.Command, entries []domain.Post, opts postsrender.RenderOptions, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, entries)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), postsrender.RenderList(entries, opts))
	return err
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func readContent(cmd *cobra.Command, path string) (domain.Document, error) {
	var data []byte
	var err error

	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read content document: %w", err)
	}

	content := domain.Document(data)
	if err := content.Validate(); err != nil {
		return nil, fmt.Errorf("invalid content document: %w", err)
	}

	return content, nil
}
