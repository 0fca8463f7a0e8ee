package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runtime settings",
		Long:  "Print the CORS and rate limit settings the server reloads from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			ctx := context.Background()
			out := cmd.OutOrStdout()

			cors, err := database.NewCorsConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get cors config: %w", err)
			}
			if cors == nil {
				fmt.Fprintln(out, "CORS configuration: not set (server falls back to FRONTEND_URL)")
			} else {
				printCors(out, cors)
			}

			rl, err := database.NewRatelimitConfigRepository(db).Get(ctx)
			if err != nil {
				return fmt.Errorf("failed to get ratelimit config: %w", err)
			}
			if rl == nil {
				fmt.Fprintln(out, "Rate limit configuration: not set (server seeds its default)")
			} else {
				printRatelimit(out, rl)
			}

			return nil
		},
	}

	return cmd
}
