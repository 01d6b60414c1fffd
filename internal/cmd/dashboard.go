package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/vnykmshr/robocmd/pkg/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Read and control a running robot through Redis",
}

var dashboardStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last published scheduler snapshot",
	RunE:  runDashboardStatus,
}

var dashboardCancelCmd = &cobra.Command{
	Use:   "cancel <command-id>...",
	Short: "Ask the robot to cancel active commands",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDashboardCancel,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardStatusCmd)
	dashboardCmd.AddCommand(dashboardCancelCmd)
}

// redisStore connects to the configured dashboard Redis.
func redisStore() (*dashboard.RedisStore, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Dashboard.RedisAddr == "" {
		return nil, nil, fmt.Errorf("dashboard.redis_addr is not configured")
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Dashboard.RedisAddr, DB: cfg.Dashboard.RedisDB})
	store, err := dashboard.NewRedisStore(dashboard.RedisConfig{Redis: client, Key: cfg.Dashboard.KeyPrefix})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return store, client.Close, nil
}

func runDashboardStatus(cmd *cobra.Command, _ []string) error {
	store, closeFn, err := redisStore()
	if err != nil {
		return err
	}
	defer closeFn()

	snap, err := store.Load(cmd.Context())
	if err != nil {
		return err
	}
	return printSnapshot(cmd, snap)
}

func printSnapshot(cmd *cobra.Command, snap dashboard.Snapshot) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  tick %d  mode %s  at %s\n\n",
		snap.Scheduler, snap.Tick, snap.Mode, snap.Time.Format("15:04:05.000"))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tREQUIRES\tINTERRUPT")
	for _, c := range snap.Commands {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", c.ID, c.Name, c.Requirements, c.Interruption)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	subs := make([]string, 0, len(snap.Owners))
	for s := range snap.Owners {
		subs = append(subs, s)
	}
	sort.Strings(subs)
	fmt.Fprintln(out)
	for _, s := range subs {
		owner := snap.Owners[s]
		if owner == "" {
			owner = "-"
		}
		fmt.Fprintf(out, "%-12s %s\n", s, owner)
	}
	return nil
}

func runDashboardCancel(cmd *cobra.Command, args []string) error {
	store, closeFn, err := redisStore()
	if err != nil {
		return err
	}
	defer closeFn()

	for _, id := range args {
		if err := store.RequestCancel(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cancel requested: %s\n", id)
	}
	return nil
}
