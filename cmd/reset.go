package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cyberguard/awareness-service/internal/cache"
	"github.com/cyberguard/awareness-service/internal/services"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear stored progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		clientID, _ := cmd.Flags().GetString("client")
		all, _ := cmd.Flags().GetBool("all")
		if clientID == "" && !all {
			return errors.New("pass --client <id> or --all")
		}

		return withApp(cmd, appOptions{}, func(ctx context.Context, a *app) error {
			if !all {
				if err := a.services.Progress().ClearProgress(ctx, services.Actor{ClientID: clientID}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared progress for %s\n", clientID)
				return nil
			}

			store, ok := a.store.(*cache.RedisStore)
			if !ok {
				return fmt.Errorf("--all is only supported by the redis backend, not %q", a.cfg.StoreBackend)
			}
			n, err := store.DeletePattern(ctx, "*")
			if err != nil {
				return err
			}
			a.logger.Info("Cleared all progress", "keys", n)
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d progress records\n", n)
			return nil
		})
	},
}

func init() {
	resetCmd.Flags().String("client", "", "Client id to clear")
	resetCmd.Flags().Bool("all", false, "Clear every client (redis backend only)")
}
