package cmd

import (
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/arbx/config"
	"github.com/michaelpento.lv/arbx/sandbox"
	"github.com/michaelpento.lv/arbx/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Simulate the route and report whether it clears the premium",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := utils.GetLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		env, err := sandbox.Build(cfg, log)
		if err != nil {
			return err
		}

		est, err := env.Executor.Estimate(cmd.Context())
		if err != nil {
			return fmt.Errorf("estimate failed: %w", err)
		}

		borrow := config.MustAmount(cfg.BorrowAmount)
		log.Info("Route estimate",
			zap.String("borrow", borrow.String()),
			zap.String("quote1", est.Quote1.String()),
			zap.String("quote2", est.Quote2.String()),
			zap.String("fee", est.Fee.String()),
			zap.String("net_profit", est.NetProfit(borrow).String()),
			zap.Bool("profitable", est.Profitable))

		breakeven := new(big.Int).Add(borrow, est.Fee)
		fmt.Printf("profitable: %v (quote2=%s, breakeven=%s)\n",
			est.Profitable, est.Quote2, breakeven)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}

func loadConfig() (*config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		// A missing .env file is fine.
		utils.GetLogger().Debug("No .env file loaded", zap.Error(err))
	}
	path := cfgFile
	if path == "" {
		path = config.GetEnvWithDefault(config.EnvConfigPath, "arbx.yaml")
	}
	return config.Load(path)
}
