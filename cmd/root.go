package cmd

import (
	"context"

	"github.com/basinlabs/baseswap/utils"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "baseswap",
	Short: "A constant-product asset/base exchange with a price oracle surface",
	Long: `baseswap runs a constant-product exchange where every pool trades one
asset against a common base asset, with proportional liquidity shares and a
decimal-safe price oracle conversion layer, exposed over an HTTP API.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.baseswap.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initConfig() {
	utils.InitLogger(debug)
}
