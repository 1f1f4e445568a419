package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write progress or score workbooks",
}

var exportProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Export a client's progress as an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("progress-%s.xlsx", clientID)
		}

		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			data, err := a.services.Report().ExportProgress(ctx, clientID)
			if err != nil {
				return fmt.Errorf("export progress: %w", err)
			}
			return writeWorkbook(cmd, out, data)
		})
	},
}

var exportScoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Export a user's score history as an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetUint("user")
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("scores-%d.xlsx", userID)
		}

		return withApp(cmd, appOptions{needDatabase: true}, func(ctx context.Context, a *app) error {
			data, err := a.services.Report().ExportScores(ctx, userID)
			if err != nil {
				return fmt.Errorf("export scores: %w", err)
			}
			return writeWorkbook(cmd, out, data)
		})
	},
}

func init() {
	exportProgressCmd.Flags().String("client", "cli", "Client id owning the progress")
	exportProgressCmd.Flags().String("out", "", "Output file (default progress-<client>.xlsx)")

	exportScoresCmd.Flags().Uint("user", 0, "User id")
	exportScoresCmd.Flags().String("out", "", "Output file (default scores-<user>.xlsx)")
	_ = exportScoresCmd.MarkFlagRequired("user")

	exportCmd.AddCommand(exportProgressCmd)
	exportCmd.AddCommand(exportScoresCmd)
}

func writeWorkbook(cmd *cobra.Command, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
