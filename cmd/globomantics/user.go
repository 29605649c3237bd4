package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/globomantics/cms/internal/auth"
	"github.com/globomantics/cms/internal/models"
	"github.com/globomantics/cms/internal/repository"
	"github.com/globomantics/cms/pkg/db"
)

const defaultPassword = "password123"

// registrar creates accounts; *auth.Service implements it.
type registrar interface {
	Register(ctx context.Context, username, email, password string, admin bool) (*models.User, error)
}

type newUser struct {
	username string
	email    string
	password string
	admin    bool
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var u newUser
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := db.Connect(ctx, a.cfg.DB)
			if err != nil {
				return err
			}
			defer pool.Close()
			return createUser(ctx, cmd.OutOrStdout(), auth.NewService(repository.New(pool).Users), u)
		},
	}
	create.Flags().StringVarP(&u.username, "username", "u", "", "username")
	create.Flags().StringVarP(&u.email, "email", "e", "", "email address")
	create.Flags().StringVarP(&u.password, "password", "p", defaultPassword, "password")
	create.Flags().BoolVarP(&u.admin, "admin", "a", false, "grant admin rights")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}

// createUser reports duplicates on out and returns only unexpected errors.
func createUser(ctx context.Context, out io.Writer, accounts registrar, u newUser) error {
	_, err := accounts.Register(ctx, u.username, u.email, u.password, u.admin)
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		fmt.Fprintln(out, "A user already exists with that username. Choose another one.")
	case errors.Is(err, auth.ErrEmailTaken):
		fmt.Fprintln(out, "A user already exists with that email. Choose another one.")
	case err != nil:
		fmt.Fprintln(out, "Something went wrong.")
		return err
	default:
		fmt.Fprintf(out, "User %s has been successfully saved to the database.\n", u.username)
	}
	return nil
}
