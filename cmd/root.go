package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blogctl",
		Short:         "Blog client: sign in, browse posts, publish and edit your own",
		Long:          "blogctl is a terminal client for the blog service. It keeps a persisted session (principal record plus access token), refreshes expired credentials transparently, and lets you list, read, create, edit, and delete posts.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newPostsCmd(app),
	)

	return rootCmd
}
