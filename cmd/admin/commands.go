package main

import (
	"fmt"
	"text/tabwriter"

	"recipebox/internal/models"
	"recipebox/internal/service"

	"github.com/spf13/cobra"
)

// serviceOpener yields the user service a command runs against.
type serviceOpener func() (*service.UserService, func(), error)

func newRootCmd(open serviceOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Recipebox administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newListUsersCmd(open), newDeleteUserCmd(open))
	return root
}

func newListUsersCmd(open serviceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list-users",
		Short: "List every user with its recipe count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			users, err := svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tRECIPES")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%d\n", u.User.ID, u.User.Username, u.Recipes)
			}
			return w.Flush()
		},
	}
}

func newDeleteUserCmd(open serviceOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user <username>",
		Short: "Delete a user and all of its recipes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := open()
			if err != nil {
				return err
			}
			defer closeFn()

			removed, err := svc.DeleteUser(cmd.Context(), args[0])
			if err != nil {
				if models.HasCode(err, models.CodeNotFound) {
					return fmt.Errorf("user %q not found", args[0])
				}
				return fmt.Errorf("delete user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s and %d recipe(s)\n", args[0], removed)
			return nil
		},
	}
}
