package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
	"github.com/spf13/cobra"
)

var (
	errLoginRequired = errors.New("log in with --user and --password")
	errAdminRequired = errors.New("this command requires an admin account")
)

// commands carrying this annotation run for users that still hold the bootstrap password
const allowPasswordChange = "allowPasswordChange"

// --- Global Command Variables ---
var (
	settings *config.Settings
	username string
	password string
	logLevel string

	rootCmd = &cobra.Command{
		Use:                "inventory",
		Short:              "Track products, suppliers, orders and encrypted backups",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  openSession,
		PersistentPostRunE: closeSession,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", os.Getenv("INVENTORY_USER"), "operator username (env INVENTORY_USER)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", os.Getenv("INVENTORY_PASSWORD"), "operator password (env INVENTORY_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(productCmd, supplierCmd, orderCmd, reportCmd, backupCmd, logsCmd, userCmd)
}

// openSession connects the data file, authenticates --user and puts the
// operator identity into the command context. Every command needs a login.
func openSession(cmd *cobra.Command, args []string) error {
	settings = config.LoadSettings()
	if logLevel != "" {
		settings.LogLevel = logLevel
	}
	config.SetLogLevel(settings.LogLevel)

	if strings.TrimSpace(username) == "" {
		return errLoginRequired
	}
	if err := models.Open(settings.DatabasePath); err != nil {
		return err
	}

	ctx := utils.SetSessionIdInContext(cmd.Context(), uuid.NewString())
	user, err := models.Authenticate(ctx, username, password)
	if errors.Is(err, models.ErrPasswordChangeRequired) && cmd.Annotations[allowPasswordChange] == "true" {
		err = nil
	}
	if err != nil {
		_ = config.CloseDatabase()
		return err
	}
	ctx = utils.SetUsernameInContext(ctx, user.Username)
	ctx = utils.SetUserIdInContext(ctx, user.ID)
	ctx = utils.SetUserRoleInContext(ctx, string(user.Role))
	cmd.SetContext(ctx)

	config.LogInfo(config.GetLogger(), "cmd", cmd.CommandPath(), "session opened", map[string]string{
		"user":    utils.GetAuditUser(ctx),
		"session": sessionId(ctx),
	})
	return nil
}

func closeSession(cmd *cobra.Command, args []string) error {
	return config.CloseDatabase()
}

func sessionId(ctx context.Context) string {
	id, _ := utils.GetSessionIdFromContext(ctx)
	return id
}

func requireAdmin(ctx context.Context) error {
	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != string(models.UserRoleAdmin) {
		return errAdminRequired
	}
	return nil
}
