package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/upb/blog-platform/app"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}
	cmd.AddCommand(newSetAdminCmd("grant", "Give an account the admin role", true))
	cmd.AddCommand(newSetAdminCmd("revoke", "Take the admin role away from an account", false))
	return cmd
}

func newSetAdminCmd(use, short string, admin bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, err := cmd.Flags().GetString("email")
			if err != nil {
				return err
			}
			return runSetAdmin(cmd, email, admin)
		},
	}
	cmd.Flags().String("email", "", "Email of the account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runSetAdmin(cmd *cobra.Command, email string, admin bool) (err error) {
	ctx := cmd.Context()
	cfg, logger, err := loadRuntime(ctx)
	if err != nil {
		return err
	}

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, deps.Close(context.Background())) }()

	if err := deps.Start(); err != nil {
		return err
	}

	user, err := deps.Auth.SetAdmin(ctx, email, admin)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s now has the %s role\n", user.Email, user.Role())
	return nil
}
