package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ArionMiles/finlog/pkg/api"
)

func (a *app) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user profiles",
	}
	cmd.AddCommand(a.newUserCreateCmd())
	return cmd
}

func (a *app) newUserCreateCmd() *cobra.Command {
	var name, email, id string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user profile",
		Long: `Create a user profile.

Tokens accepted by the API must carry the printed id as {"user":{"id":"<id>"}}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd.Context(), a.cfg, a.logger, false)
			if err != nil {
				return err
			}
			defer store.Close()

			u := &api.User{
				ID:    strings.TrimSpace(id),
				Name:  strings.TrimSpace(name),
				Email: strings.ToLower(strings.TrimSpace(email)),
			}
			if err := store.CreateUser(cmd.Context(), u); err != nil {
				if errors.Is(err, api.ErrConflict) {
					return fmt.Errorf("a user with email %s already exists", u.Email)
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(u)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&id, "id", "", "user id (generated when empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
