package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vnykmshr/robocmd/internal/config"
	"github.com/vnykmshr/robocmd/internal/testutil"
	rcerrors "github.com/vnykmshr/robocmd/pkg/common/errors"
	"github.com/vnykmshr/robocmd/pkg/dashboard"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "robocmd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigShow(t *testing.T) {
	path := writeConfig(t, "loop:\n  name: bench\n  period_ms: 5\n")

	out, err := execute(t, "config", "show", "--config", path)
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "name: bench") || !strings.Contains(out, "period_ms: 5") {
		t.Errorf("unexpected output:\n%s", out)
	}
	// defaults fill the sections the file leaves out
	if !strings.Contains(out, "initial_mode: disabled") {
		t.Errorf("defaults missing:\n%s", out)
	}
}

func TestConfigValidate(t *testing.T) {
	path := writeConfig(t, "loop:\n  name: bench\n  period_ms: 20\n")
	out, err := execute(t, "config", "validate", "--config", path)
	testutil.AssertNoError(t, err)
	if !strings.Contains(out, "configuration OK") {
		t.Errorf("unexpected output: %q", out)
	}

	bad := writeConfig(t, "loop:\n  period_ms: 0\nstation:\n  initial_mode: sleeping\n")
	_, err = execute(t, "config", "validate", "--config", bad)
	testutil.AssertErrorIs(t, err, rcerrors.ErrInvalidConfiguration)

	_, err = execute(t, "config", "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertError(t, err)
}

func TestAppPublishesToMemoryDashboard(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	cfg.Station.InitialMode = "teleop"
	cfg.Dashboard.Enabled = true
	cfg.Dashboard.PublishEveryTicks = 10

	var logs bytes.Buffer
	a, err := newApp(cfg, &logs)
	testutil.AssertNoError(t, err)

	for i := 0; i < 20; i++ {
		testutil.AssertNoError(t, a.loop.Step())
	}
	testutil.AssertNoError(t, a.close())

	store := a.store.(*dashboard.MemoryStore)
	snap, published := store.Latest()
	testutil.AssertEqual(t, published, 2)
	testutil.AssertEqual(t, snap.Mode, "teleop")
	testutil.AssertEqual(t, snap.Scheduler, "robot")
	testutil.AssertEqual(t, snap.Owners["drivetrain"] != "", true)

	if !strings.Contains(logs.String(), "entering mode") {
		t.Errorf("expected mode log, got:\n%s", logs.String())
	}
	testutil.AssertEqual(t, len(a.sched.Active()), 0)
}

func TestAppMetricsRegistry(t *testing.T) {
	cfg := config.Default()
	cfg.Station.InitialMode = "teleop"

	a, err := newApp(cfg, &bytes.Buffer{})
	testutil.AssertNoError(t, err)
	defer func() { testutil.AssertNoError(t, a.close()) }()

	testutil.AssertNoError(t, a.loop.Step())

	families, err := a.registry.Gather()
	testutil.AssertNoError(t, err)
	found := false
	for _, mf := range families {
		if mf.GetName() == "robocmd_loop_ticks_total" {
			found = true
		}
	}
	testutil.AssertEqual(t, found, true)
	testutil.AssertEqual(t, a.metricsSrv != nil, true)
}

func TestPrintSnapshot(t *testing.T) {
	snap := dashboard.Snapshot{
		Scheduler: "robot",
		Tick:      42,
		Mode:      "autonomous",
		Time:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Commands: []dashboard.CommandInfo{
			{ID: "abc", Name: "autonomous", Requirements: []string{"arm", "drivetrain"}, Interruption: "cancel_incoming"},
		},
		Owners: map[string]string{"drivetrain": "abc", "intake": ""},
	}

	var out bytes.Buffer
	dashboardStatusCmd.SetOut(&out)
	testutil.AssertNoError(t, printSnapshot(dashboardStatusCmd, snap))

	text := out.String()
	for _, want := range []string{"tick 42", "mode autonomous", "abc", "[arm drivetrain]", "intake       -"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}
