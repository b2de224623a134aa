package cmd

import (
	"fmt"

	"github.com/michaelpento.lv/arbx/sandbox"
	"github.com/michaelpento.lv/arbx/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var force bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate the route and execute it when profitable",
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
		prometheus.DefaultRegisterer.MustRegister(env.Executor.Metrics())

		est, err := env.Executor.Estimate(cmd.Context())
		if err != nil {
			return fmt.Errorf("estimate failed: %w", err)
		}
		if !est.Profitable && !force {
			log.Info("Route not profitable, skipping execution",
				zap.String("quote2", est.Quote2.String()),
				zap.String("fee", est.Fee.String()))
			return nil
		}

		if err := env.Executor.Initiate(cmd.Context(), env.Owner); err != nil {
			return fmt.Errorf("execution discarded: %w", err)
		}

		for _, rec := range env.Recorder.RecentExecutions() {
			log.Info("Settled execution",
				zap.Uint64("id", rec.ID),
				zap.String("borrowed", rec.Borrowed.String()),
				zap.String("premium", rec.Premium.String()),
				zap.String("profit", rec.Profit.String()),
				zap.Time("at", rec.Timestamp))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&force, "force", false, "execute even when the estimate is unprofitable")
}
