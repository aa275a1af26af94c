package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mmdatafocus/inventory_backend/backup"
	"github.com/spf13/cobra"
)

var (
	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Create, list, verify and restore encrypted backups (admin only)",
	}
	backupCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Encrypt the current database into a new backup file",
		Args:  cobra.NoArgs,
		RunE:  runBackupCreate,
	}
	backupListCmd = &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE:  runBackupList,
	}
	backupVerifyCmd = &cobra.Command{
		Use:   "verify <name|path>",
		Short: "Check that a backup decrypts with the current key",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupVerify,
	}
	backupRestoreCmd = &cobra.Command{
		Use:   "restore <name>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupRestore,
	}
	backupDeleteCmd = &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a backup file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupDelete,
	}
)

func init() {
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupVerifyCmd, backupRestoreCmd, backupDeleteCmd)
}

// withManager runs fn with a manager built from the settings; admin sessions only
func withManager(cmd *cobra.Command, fn func(m *backup.Manager) error) error {
	if err := requireAdmin(cmd.Context()); err != nil {
		return err
	}
	m, err := backup.NewManagerFromSettings(settings)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(m *backup.Manager) error {
		path, err := m.CreateBackup(cmd.Context())
		if path != "" {
			printf(cmd.OutOrStdout(), "Backup written to %s", path)
		}
		return err
	})
}

func runBackupList(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(m *backup.Manager) error {
		t := newTable(cmd.OutOrStdout(), table.Row{"Name", "Created", "Size"})
		for _, info := range m.ListBackupInfo() {
			t.AppendRow(table.Row{info.Name, localTime(info.CreatedAt), info.Size})
		}
		t.Render()
		return nil
	})
}

func runBackupVerify(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(m *backup.Manager) error {
		if !m.VerifyBackup(args[0]) {
			return backup.ErrBackupCorrupted
		}
		printf(cmd.OutOrStdout(), "%s is valid", args[0])
		return nil
	})
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(m *backup.Manager) error {
		if err := m.RestoreBackup(cmd.Context(), args[0]); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Restored %s", args[0])
		return nil
	})
}

func runBackupDelete(cmd *cobra.Command, args []string) error {
	return withManager(cmd, func(m *backup.Manager) error {
		if err := m.DeleteBackup(cmd.Context(), args[0]); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "Deleted %s", args[0])
		return nil
	})
}
