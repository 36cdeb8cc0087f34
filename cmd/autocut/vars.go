package cli

import (
	"github.com/spf13/cobra"

	"github.com/tycoonteritory/AutoCut/internal/config"
)

// cfgFile is the path to an optional YAML config file, set by the --config
// root flag and shared across subcommands.
var cfgFile string

// ServerConfig holds the loaded configuration (set by main before Execute).
var ServerConfig *config.Config

// SetupRootCmd configures the root command with all subcommands and flags.
func SetupRootCmd(c *config.Config) *cobra.Command {
	ServerConfig = c

	rootCmd := &cobra.Command{
		Use:   "autocut",
		Short: "AutoCut - automatic silence and filler-word editor",
		Long: `AutoCut analyzes a recorded video for silence and filler words and
produces non-destructive edit decision lists for use in a video editor.

Running with no subcommand starts the HTTP server.`,
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			loaded, err := config.LoadFromFile(cfgFile)
			if err != nil {
				return err
			}
			*ServerConfig = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(WorkerCmd())

	return rootCmd
}
