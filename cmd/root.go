package cmd

import (
	"context"

	"github.com/michaelpento.lv/arbx/utils"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "arbx",
	Short: "Atomic cross-venue arbitrage executor",
	Long: `arbx borrows working capital from a credit facility, routes it through
two venues expecting a price discrepancy, verifies the round trip yielded a
surplus, and repays principal plus premium, all as one indivisible unit of
work that either fully settles or fully reverts.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./arbx.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initConfig() {
	utils.InitLogger(debug)
}
