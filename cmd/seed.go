package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ariebrainware/medibook/model"
	"github.com/ariebrainware/medibook/util"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

const minAdminPasswordLen = 8

func seedAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an admin account, or promote an existing user to admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			email = strings.ToLower(strings.TrimSpace(email))

			if err := validator.New().Var(email, "required,email"); err != nil {
				return fmt.Errorf("invalid --email %q", email)
			}
			if len(password) < minAdminPasswordLen {
				return errors.New("--password must be at least 8 characters")
			}

			db, err := openMigrated()
			if err != nil {
				return err
			}
			hash, err := util.HashPassword(password)
			if err != nil {
				return err
			}
			user, err := model.SeedAdmin(db, email, hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s ready (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Admin e-mail address")
	cmd.Flags().String("password", "", "Admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
