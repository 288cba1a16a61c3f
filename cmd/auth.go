package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rylenlobo/blog-app-client/internal/domain"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the signed-in session",
	}

	cmd.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
	)

	return cmd
}

func newLoginCmd(app *app) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}

			user, err := app.session.Login(cmd.Context(), domain.Credentials{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return loginFailure("login", err)
			}

			app.nav.Consume()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var firstName string
	var lastName string
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}

			user, err := app.session.Register(cmd.Context(), domain.Registration{
				FirstName: firstName,
				LastName:  lastName,
				Email:     email,
				Password:  password,
			})
			if err != nil {
				return loginFailure("registration", err)
			}

			app.nav.Consume()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", user.DisplayName())
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}

			if err := app.session.Logout(cmd.Context()); err != nil {
				return err
			}

			app.nav.Consume()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Restore(cmd.Context()); err != nil {
				return err
			}

			user := app.session.User()
			if user == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.DisplayName(), user.Email)
			return nil
		},
	}
}

func loginFailure(operation string, err error) error {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		return fmt.Errorf("%s rejected: %w", operation, fields)
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
