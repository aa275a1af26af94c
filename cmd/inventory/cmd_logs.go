package main

import (
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/spf13/cobra"
)

var (
	logsCmd = &cobra.Command{
		Use:   "logs",
		Short: "Browse the audit log, newest first (admin only)",
	}
	logsListCmd = &cobra.Command{
		Use:   "list",
		Short: "Show the latest audit entries",
		Args:  cobra.NoArgs,
		RunE:  runLogsList,
	}
	logsByUserCmd = &cobra.Command{
		Use:   "by-user <username>",
		Short: "Show audit entries of one user",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogsByUser,
	}
	logsByActionCmd = &cobra.Command{
		Use:   "by-action <text>",
		Short: "Show audit entries whose action contains text",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogsByAction,
	}
)

var logsLimit int

func init() {
	logsCmd.PersistentFlags().IntVarP(&logsLimit, "limit", "n", models.DefaultAuditLogLimit, "maximum number of entries")
	logsCmd.AddCommand(logsListCmd, logsByUserCmd, logsByActionCmd)
}

func runLogsList(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(cmd.Context()); err != nil {
		return err
	}
	logs, err := models.GetAuditLogs(cmd.Context(), logsLimit)
	if err != nil {
		return err
	}
	renderAuditLogs(cmd.OutOrStdout(), logs)
	return nil
}

func runLogsByUser(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(cmd.Context()); err != nil {
		return err
	}
	logs, err := models.GetAuditLogsByUser(cmd.Context(), args[0], logsLimit)
	if err != nil {
		return err
	}
	renderAuditLogs(cmd.OutOrStdout(), logs)
	return nil
}

func runLogsByAction(cmd *cobra.Command, args []string) error {
	if err := requireAdmin(cmd.Context()); err != nil {
		return err
	}
	logs, err := models.GetAuditLogsByAction(cmd.Context(), args[0], logsLimit)
	if err != nil {
		return err
	}
	renderAuditLogs(cmd.OutOrStdout(), logs)
	return nil
}
