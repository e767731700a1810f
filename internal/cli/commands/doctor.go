package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/testrig/internal/cli/config"
	"github.com/leapstack-labs/testrig/internal/cli/styles"
	"github.com/leapstack-labs/testrig/pkg/dbclient"
	"github.com/leapstack-labs/testrig/pkg/httpclient"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Timeout    time.Duration
	HealthPath string
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check connectivity of every configured target",
		Long: `Probe every configured database and the API endpoint concurrently.

Each database is connected and issued a trivial query; the API target
is checked with a GET against its health path. The command reports
per-target status and latency and exits non-zero if any probe fails.`,
		Example: `  # Check all targets
  testrig doctor

  # Machine-readable output
  testrig doctor --format json

  # Slow network, longer probe timeout
  testrig doctor --timeout 30s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "Per-probe timeout")
	cmd.Flags().StringVar(&opts.HealthPath, "health-path", "/health", "Path probed on the API endpoint")

	return cmd
}

// CheckResult is the outcome of a single connectivity probe.
type CheckResult struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Latency string `json:"latency"`
	Error   string `json:"error,omitempty"`
}

// DoctorSummary describes the configuration the probes ran against.
type DoctorSummary struct {
	ConfigFile     string `json:"config_file,omitempty"`
	Databases      int    `json:"databases"`
	HTTPConfigured bool   `json:"http_configured"`
	MigrationsDir  string `json:"migrations_dir"`
	SeedsDir       string `json:"seeds_dir"`
}

// DoctorOutput is the JSON output for the doctor command.
type DoctorOutput struct {
	Summary DoctorSummary `json:"summary"`
	Checks  []CheckResult `json:"checks"`
	Healthy int           `json:"healthy"`
	Total   int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg

	type probe struct {
		name string
		kind string
		run  func(context.Context) error
	}

	var probes []probe
	for _, name := range cfg.DatabaseNames() {
		dbCfg := cfg.Databases[name]
		probes = append(probes, probe{
			name: name,
			kind: "databases",
			run: func(ctx context.Context) error {
				return probeDatabase(ctx, dbCfg, cmdCtx.Logger)
			},
		})
	}
	if cfg.HTTP.BaseURL != "" {
		httpCfg := cfg.HTTP
		probes = append(probes, probe{
			name: httpCfg.BaseURL,
			kind: "endpoints",
			run: func(ctx context.Context) error {
				return probeEndpoint(ctx, httpCfg, opts.HealthPath, cmdCtx.Logger)
			},
		})
	}

	if len(probes) == 0 {
		return fmt.Errorf("nothing to check: no databases or http endpoint configured")
	}

	results := make([]CheckResult, len(probes))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, p := range probes {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()

			start := time.Now()
			err := p.run(probeCtx)
			latency := time.Since(start).Round(time.Millisecond)

			result := CheckResult{
				Name:    p.name,
				Kind:    p.kind,
				Status:  "ok",
				Latency: latency.String(),
			}
			if err != nil {
				result.Status = "failed"
				result.Error = err.Error()
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	healthy := 0
	for _, r := range results {
		if r.Status == "ok" {
			healthy++
		}
	}

	out := &DoctorOutput{
		Summary: DoctorSummary{
			ConfigFile:     config.GetConfigFileUsed(),
			Databases:      len(cfg.Databases),
			HTTPConfigured: cfg.HTTP.BaseURL != "",
			MigrationsDir:  cfg.MigrationsDir,
			SeedsDir:       cfg.SeedsDir,
		},
		Checks:  results,
		Healthy: healthy,
		Total:   len(results),
	}

	if cfg.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		renderDoctorText(cmd.OutOrStdout(), out)
	}

	if healthy < len(results) {
		return fmt.Errorf("%d of %d checks failed", len(results)-healthy, len(results))
	}
	return nil
}

// probeDatabase connects and runs a trivial query.
func probeDatabase(ctx context.Context, cfg dbclient.Config, logger *slog.Logger) error {
	client, err := dbclient.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	_, err = client.Query(ctx, "SELECT 1")
	return err
}

// probeEndpoint issues a GET against the configured health path.
func probeEndpoint(ctx context.Context, cfg httpclient.Config, healthPath string, logger *slog.Logger) error {
	client, err := httpclient.New(cfg, logger)
	if err != nil {
		return err
	}

	resp, err := client.Get(ctx, healthPath)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func renderDoctorText(w io.Writer, out *DoctorOutput) {
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Header.Render("Project"))
	if out.Summary.ConfigFile != "" {
		_, _ = fmt.Fprintf(w, "  %-14s %s\n", "Config", out.Summary.ConfigFile)
	}
	_, _ = fmt.Fprintf(w, "  %-14s %d\n", "Databases", out.Summary.Databases)
	api := "not configured"
	if out.Summary.HTTPConfigured {
		api = "configured"
	}
	_, _ = fmt.Fprintf(w, "  %-14s %s\n", "API", api)
	_, _ = fmt.Fprintf(w, "  %-14s %s\n", "Migrations", renderDirStatus(out.Summary.MigrationsDir))
	_, _ = fmt.Fprintf(w, "  %-14s %s\n", "Seeds", renderDirStatus(out.Summary.SeedsDir))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.Header.Render("Connectivity Checks"))

	currentKind := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.Checks {
		if check.Kind != currentKind {
			currentKind = check.Kind
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, styles.Bold.Render("  "+titleCaser.String(currentKind)))
		}

		_, _ = fmt.Fprintf(w, "  %s %-24s %s\n", styles.StatusIcon(check.Status == "ok"), check.Name, styles.Muted.Render(check.Latency))
		if check.Error != "" {
			_, _ = fmt.Fprintln(w, styles.Muted.Render("      "+check.Error))
		}
	}

	_, _ = fmt.Fprintln(w)
	summary := fmt.Sprintf("%d/%d checks passed", out.Healthy, out.Total)
	switch {
	case out.Healthy == out.Total:
		_, _ = fmt.Fprintln(w, styles.Success.Render(summary))
	case out.Healthy > 0:
		_, _ = fmt.Fprintln(w, styles.Warning.Render(summary))
	default:
		_, _ = fmt.Fprintln(w, styles.Error.Render(summary))
	}
}

// renderDirStatus appends a warning marker when the directory is absent.
func renderDirStatus(dir string) string {
	if _, err := os.Stat(dir); err != nil {
		return dir + " " + styles.Warning.Render("(missing)")
	}
	return dir
}
