package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the robot control loop",
	Long: `Run starts the simulated robot and ticks its scheduler at the configured
period until interrupted. The driver-station mode starts at --mode and
follows station.schedule when one is configured.`,
	RunE: runRobot,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("mode", "", "initial mode: disabled, autonomous, teleop, test")
	runCmd.Flags().Int("period-ms", 0, "control loop period in milliseconds")
	runCmd.Flags().String("redis", "", "publish dashboard snapshots to this Redis address")
	_ = viper.BindPFlag("station.initial_mode", runCmd.Flags().Lookup("mode"))
	_ = viper.BindPFlag("loop.period_ms", runCmd.Flags().Lookup("period-ms"))
	_ = viper.BindPFlag("dashboard.redis_addr", runCmd.Flags().Lookup("redis"))
}

func runRobot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Dashboard.RedisAddr != "" {
		cfg.Dashboard.Enabled = true
	}

	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.serveMetrics(ctx)
	runErr := a.loop.Run(ctx)
	if runErr != nil {
		a.log.Error("loop failed", slog.Any("error", runErr))
	}
	closeErr := a.close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}
