package main

import (
	"fmt"

	"catalog/internal/infra/db"
	"catalog/internal/usecase"

	"github.com/spf13/cobra"
)

// catalog migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Println("Running migrations…")
		return db.Migrate(a.db)
	},
}

var superuser struct {
	email    string
	password string
	name     string
}

// catalog createsuperuser
var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create a staff account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := boot()
		if err != nil {
			return err
		}
		defer a.close()

		u, err := a.auth.CreateSuperuser(cmd.Context(), usecase.RegisterInput{
			Email:    superuser.email,
			Password: superuser.password,
			Name:     superuser.name,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Superuser %s created (id=%d)\n", u.Email, u.ID)
		return nil
	},
}

func init() {
	createSuperuserCmd.Flags().StringVar(&superuser.email, "email", "", "email address")
	createSuperuserCmd.Flags().StringVar(&superuser.password, "password", "", "password")
	createSuperuserCmd.Flags().StringVar(&superuser.name, "name", "", "display name")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	_ = createSuperuserCmd.MarkFlagRequired("password")
}
