package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnkhanh/survey-hub/auth"
	"github.com/vnkhanh/survey-hub/database"
	"github.com/vnkhanh/survey-hub/exports"
	"github.com/vnkhanh/survey-hub/forms"
	"github.com/vnkhanh/survey-hub/services"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userAdmin    bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account, e.g. the first administrator",
	Args:  cobra.NoArgs,
	RunE:  runUserCreate,
}

func init() {
	f := userCreateCmd.Flags()
	f.StringVar(&userName, "name", "", "login name")
	f.StringVar(&userEmail, "email", "", "email used for Google sign-in")
	f.StringVar(&userPassword, "password", "", "password, at least 8 characters")
	f.BoolVar(&userAdmin, "admin", false, "grant the ADMIN role")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store, err := exports.NewLocalStore(cfg.ExportDir)
	if err != nil {
		return err
	}

	role := auth.RoleUser
	if userAdmin {
		role = auth.RoleAdmin
	}
	user, err := services.New(db, store).BootstrapUser(cmd.Context(), forms.UserInput{
		Name:     userName,
		Email:    userEmail,
		Password: userPassword,
		Role:     string(role),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Name, user.ID)
	return nil
}
