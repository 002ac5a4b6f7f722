// Package commands implements the suitkaise CLI.
package commands

import (
	"os"

	"github.com/ceetaro/suitkaise/internal/logger"
	"github.com/ceetaro/suitkaise/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "suitkaise",
	Short: "suitkaise - serialize arbitrary Go values to a portable IR",
	Long: `suitkaise encodes Go values into a portable, versioned intermediate
representation and reconstructs them on the other side, including inert
placeholders for live resources (connections, files, handles) that a later
ReconnectAll pass brings back to life.

Use "suitkaise [command] --help" for more information about a command.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/suitkaise/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "attach the descent path to errors and enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(reconnectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(completionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func initLogging(cmd *cobra.Command, args []string) error {
	level := "INFO"
	if debug {
		level = "DEBUG"
	}
	return logger.Init(logger.Config{Level: level, Format: "text", Output: "stderr"})
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

// Exit prints an error and exits with code 1.
func Exit(format string, args ...any) {
	PrintErr(format, args...)
	os.Exit(1)
}
