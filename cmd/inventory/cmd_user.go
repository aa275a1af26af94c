package main

import (
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/spf13/cobra"
)

var (
	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}
	userAddCmd = &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Create an account (admin only)",
		Args:  cobra.ExactArgs(2),
		RunE:  runUserAdd,
	}
	userListCmd = &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE:  runUserList,
	}
	userWhoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Check the --user credentials and show the account",
		Args:  cobra.NoArgs,
		RunE:  runUserWhoami,
	}
	userPasswdCmd = &cobra.Command{
		Use:         "passwd <new-password>",
		Short:       "Change the password of --user; --password is the current one",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{allowPasswordChange: "true"},
		RunE:        runUserPasswd,
	}
)

var userRole string

func init() {
	userAddCmd.Flags().StringVar(&userRole, "role", string(models.UserRoleUser), "admin or user")
	userCmd.AddCommand(userAddCmd, userListCmd, userWhoamiCmd, userPasswdCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(cmd.Context()); err != nil {
		return err
	}
	role, err := models.ParseUserRole(userRole)
	if err != nil {
		return err
	}
	user, err := models.CreateUser(cmd.Context(), &models.NewUser{
		Username: args[0],
		Password: args[1],
		Role:     role,
	})
	if err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Created %s account %s", user.Role, user.Username)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	users, err := models.GetUsers(cmd.Context())
	if err != nil {
		return err
	}
	renderUsers(cmd.OutOrStdout(), users)
	return nil
}

func runUserWhoami(cmd *cobra.Command, args []string) error {
	name, _ := utils.GetUsernameFromContext(cmd.Context())
	user, err := models.GetUserByUsername(cmd.Context(), name)
	if err != nil {
		return err
	}
	renderUsers(cmd.OutOrStdout(), []*models.User{user})
	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	name, _ := utils.GetUsernameFromContext(cmd.Context())
	if _, err := models.ChangePassword(cmd.Context(), name, password, args[0]); err != nil {
		return err
	}
	printf(cmd.OutOrStdout(), "Password changed for %s", name)
	return nil
}
