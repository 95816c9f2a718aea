package cmd

import (
	"os"

	"registry/domain/config"

	"github.com/spf13/cobra"
)

var cfgFile string

// quit stops the scheduled tasks of 'start' command.
var quit = make(chan bool, 1)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "registry",
	Short: "Staking registry of entities and members",
	Long: `Staking registry: entities gather member stake in two pools, activate once
enough is staked, and pay out withdrawals after a timelock.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	config.ReadConfig(cfgFile)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}
