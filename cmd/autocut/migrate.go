package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tycoonteritory/AutoCut/internal/db"
)

// MigrateCmd creates the "migrate" command, which applies pending database
// migrations and exits without starting the server. Useful for ops
// pipelines that want the schema ready before a rolling deploy.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Run: func(cmd *cobra.Command, args []string) {
			store, err := db.NewSQLite(ServerConfig.Database.SQLitePath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
				os.Exit(1)
			}
			defer store.Close()
			fmt.Println("migrations applied")
		},
	}
}
