package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"roastlog/internal/config"
	"roastlog/internal/repository"
	"roastlog/internal/repository/db"
	"roastlog/internal/roastlog"
	"roastlog/internal/service"

	"github.com/spf13/cobra"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report <roast-id>",
	Short: "Print the summary of a stored roast",
	Long: `Reads a roast and its events from the local database and prints its
duration, milestones, development, phase and weight loss. Values the log
cannot determine are shown as N/A.

Examples:
  roastlog report 0b6f1c1e-...          # table
  roastlog report 0b6f1c1e-... --json   # summary, session and curve as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print JSON instead of a table")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer conn.Close()

	repos := repository.NewRepository(conn)
	ctx := cmd.Context()
	session, err := repos.SessionRepo.Get(ctx, args[0])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("roast %s: %w", args[0], service.ErrRoastNotFound)
		}
		return err
	}
	events, err := repos.EventRepo.List(ctx, session.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reportJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(service.Report{
			Session: session,
			Summary: roastlog.Summarize(events, session),
			Curve:   service.BuildCurve(events, service.CurveQuery{Mode: roastlog.ModeHistorical, WithROR: true}),
		})
	}
	return writeReport(out, session.ID, session.BeanProfile, roastlog.Summarize(events, session))
}

// writeReport prints s as an aligned two-column table.
func writeReport(w io.Writer, roastID, bean string, s roastlog.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	milestones := make([]string, 0, len(s.Milestones))
	for _, k := range s.Milestones {
		milestones = append(milestones, string(k))
	}
	if len(milestones) == 0 {
		milestones = append(milestones, roastlog.NotAvailable)
	}
	peak := roastlog.NotAvailable
	if s.PeakROR != nil {
		peak = fmt.Sprintf("%.1f °F/min at %s", s.PeakROR.DegreesPerMinute, roastlog.FormatClock(s.PeakROR.OffsetSeconds))
	}
	rows := [][2]string{
		{"Roast", roastID},
		{"Beans", orNA(bean)},
		{"Phase", string(s.Phase)},
		{"Duration", s.Duration.String()},
		{"Dry end", s.DryEnd.String()},
		{"First crack", s.FirstCrack.String()},
		{"Second crack", s.SecondCrack.String()},
		{"Drop", s.Drop.String()},
		{"Development", s.Development.String() + " (" + s.DevelopmentPct.String() + ")"},
		{"Weight loss", s.WeightLoss.String()},
		{"Peak ROR", peak},
		{"Milestones", strings.Join(milestones, ", ")},
		{"Events", fmt.Sprintf("%d (%d samples)", s.EventCount, s.SampleCount)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return roastlog.NotAvailable
	}
	return s
}
