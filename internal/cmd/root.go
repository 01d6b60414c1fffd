// Package cmd implements the robocmd command line.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vnykmshr/robocmd/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "robocmd",
	Short: "Command-based robot control loop",
	Long: `robocmd runs a simulated robot on a fixed-period control loop. Commands
claim subsystems, the scheduler arbitrates between them every tick, and the
scheduler state can be mirrored to Redis for dashboards.`,
	SilenceUsage: true,
}

// configErr is set when an explicitly named config file cannot be read.
var configErr error

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./robocmd.yaml or $HOME/.config/robocmd/robocmd.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	configErr = nil

	// Defaults and ROBOCMD_* overrides first so they apply without a file
	config.Bind(viper.GetViper())

	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("robocmd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "robocmd"))
		}
	}

	// A missing default file is fine; a named one must load
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		configErr = err
	}
}

// loadConfig returns the validated configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	return config.Load(viper.GetViper())
}
