package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/life-rpg/internal/database"
	"github.com/benvon/life-rpg/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with list and set subcommands.
func NewCorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update CORS allowed origins and options (stored in database).",
	}
	cmd.AddCommand(newCorsListCmd())
	cmd.AddCommand(newCorsSetCmd())
	return cmd
}

func newCorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()
			repo := database.NewCorsConfigRepository(db)
			c, err := repo.Get(context.Background())
			if err != nil {
				return fmt.Errorf("get cors config: %w", err)
			}
			if c == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No CORS configuration in database. Use 'cors set' to add one.")
				return nil
			}
			printCors(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func newCorsSetCmd() *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Update CORS allowed origins (comma-separated). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(origins) == "" {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			list, err := database.ValidateOrigins(origins)
			if err != nil {
				return err
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age cannot be negative")
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()
			repo := database.NewCorsConfigRepository(db)
			c := &models.CorsConfig{
				AllowedOrigins:   strings.Join(list, ","),
				AllowCredentials: allowCreds,
				MaxAge:           maxAge,
			}
			if err := repo.Set(context.Background(), c); err != nil {
				return fmt.Errorf("set cors config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", 86400, "Access-Control-Max-Age (seconds)")
	return cmd
}

func printCors(w io.Writer, c *models.CorsConfig) {
	fmt.Fprintln(w, "CORS configuration:")
	fmt.Fprintf(w, "  Allowed origins: %s\n", c.AllowedOrigins)
	fmt.Fprintf(w, "  Allow credentials: %v\n", c.AllowCredentials)
	fmt.Fprintf(w, "  Max-Age: %d\n", c.MaxAge)
}
