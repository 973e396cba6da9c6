package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"draftkit/internal/batch"
	"draftkit/internal/config"
	"draftkit/internal/edit"
	"draftkit/internal/journal"
	"draftkit/internal/media/ffprobe"
	"draftkit/internal/project"
)

// buildMutation turns flags into a mutation for one opened project.
type buildMutation func(cfg *config.Config, p *project.Project) (project.Mutation, error)

// projectOutcome is what --json prints for one project.
type projectOutcome struct {
	Dir    string          `json:"dir"`
	Result *project.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// runMutation applies the mutation from build to every target project and
// reports per-project outcomes followed by a success/failure count.
func runMutation(cmd *cobra.Command, ctx *commandContext, args []string, all bool, build buildMutation) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	dirs, err := ctx.projectDirs(args, all)
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	return ctx.withJournal(func(store *journal.Store) error {
		outcomes, runErr := batch.Run(cmd.Context(), logger, cfg.Batch.Workers, dirs,
			func(runCtx context.Context, dir string) (project.Result, error) {
				p, err := ctx.openProject(dir, store)
				if err != nil {
					return project.Result{}, err
				}
				m, err := build(cfg, p)
				if err != nil {
					return project.Result{}, err
				}
				return p.Apply(runCtx, m)
			})

		if err := printMutationOutcomes(cmd, ctx.jsonOutput(), outcomes); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}
		if _, failed := batch.Tally(outcomes); failed > 0 {
			if len(outcomes) == 1 {
				return outcomes[0].Err
			}
			return fmt.Errorf("%d of %d projects failed", failed, len(outcomes))
		}
		return nil
	})
}

func printMutationOutcomes(cmd *cobra.Command, asJSON bool, outcomes []batch.Outcome[project.Result]) error {
	if asJSON {
		rows := make([]projectOutcome, 0, len(outcomes))
		for _, o := range outcomes {
			row := projectOutcome{Dir: o.Dir}
			if o.Value.RunID != "" {
				result := o.Value
				row.Result = &result
			}
			if o.Err != nil {
				row.Error = o.Err.Error()
			}
			rows = append(rows, row)
		}
		return writeJSON(cmd, rows)
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	for _, o := range outcomes {
		label := filepath.Base(o.Dir)
		if o.Err != nil {
			fmt.Fprintln(out, renderStatusLine(label, statusError, o.Err.Error(), colorize))
			for _, issue := range o.Value.Issues {
				fmt.Fprintf(out, "%s    %s\n", statusIndent, issue.String())
			}
			continue
		}
		kind, message := describeResult(o.Value)
		fmt.Fprintln(out, renderStatusLine(label, kind, message, colorize))
		for _, line := range detailLines(o.Value.Details) {
			fmt.Fprintf(out, "%s    %s\n", statusIndent, line)
		}
	}
	if len(outcomes) > 1 {
		succeeded, failed := batch.Tally(outcomes)
		fmt.Fprintf(out, "%d succeeded, %d failed\n", succeeded, failed)
	}
	return nil
}

func describeResult(r project.Result) (statusKind, string) {
	switch {
	case r.Status == journal.StatusDryRun:
		return statusInfo, r.Operation + " dry run, nothing written"
	case !r.Changed:
		return statusInfo, r.Operation + ": no changes"
	default:
		return statusOK, r.Operation + " written"
	}
}

func detailLines(details any) []string {
	switch d := details.(type) {
	case []project.TrackResult:
		lines := make([]string, 0, len(d))
		for _, tr := range d {
			lines = append(lines, fmt.Sprintf("track %s: %d injected, %d replaced, %d pruned",
				tr.TrackID, tr.Injected, tr.Replaced, tr.Pruned))
		}
		return lines
	case edit.RetimeResult:
		return []string{fmt.Sprintf("track %s: %d segments retimed, %d speeds changed",
			d.TrackID, d.SegmentsRetimed, d.SpeedsChanged)}
	case edit.DedupeResult:
		if d.TracksRemoved == 0 {
			return nil
		}
		return []string{fmt.Sprintf("removed %d tracks (%s), pruned %d materials",
			d.TracksRemoved, strings.Join(d.RemovedTracks, ", "), d.MaterialsPruned)}
	case edit.SwapResult:
		lines := []string{fmt.Sprintf("%s -> %s: %d references", d.OldID, d.NewID, len(d.References))}
		if d.StoredPath != "" {
			lines = append(lines, "stored "+d.StoredPath)
		}
		return lines
	case map[string]string:
		ids := make([]string, 0, len(d))
		for id := range d {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		lines := make([]string, 0, len(ids))
		for _, id := range ids {
			lines = append(lines, fmt.Sprintf("%s = %q", id, d[id]))
		}
		return lines
	}
	return nil
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "validate [project...]",
		Short: "Check project files against every document invariant",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dirs, err := ctx.projectDirs(args, all)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			outcomes, runErr := batch.Run(cmd.Context(), logger, cfg.Batch.Workers, dirs,
				func(runCtx context.Context, dir string) (project.Report, error) {
					p, err := ctx.openProject(dir, nil)
					if err != nil {
						return project.Report{}, err
					}
					report, err := p.Inspect(runCtx)
					if err != nil {
						return report, err
					}
					return report, report.Issues.Err()
				})

			if ctx.jsonOutput() {
				reports := make([]project.Report, 0, len(outcomes))
				for _, o := range outcomes {
					if o.Value.Project == "" {
						o.Value.Project = filepath.Base(o.Dir)
					}
					reports = append(reports, o.Value)
				}
				if err := writeJSON(cmd, reports); err != nil {
					return err
				}
			} else {
				printReports(cmd.OutOrStdout(), outcomes)
			}
			if runErr != nil {
				return runErr
			}
			if _, failed := batch.Tally(outcomes); failed > 0 {
				return fmt.Errorf("%d of %d projects failed validation", failed, len(outcomes))
			}
			return nil
		},
	}
	addAllFlag(cmd, &all)
	return cmd
}

func printReports(out io.Writer, outcomes []batch.Outcome[project.Report]) {
	colorize := shouldColorize(out)
	for i, o := range outcomes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		for _, line := range renderSectionHeader(filepath.Base(o.Dir), colorize) {
			fmt.Fprintln(out, line)
		}
		report := o.Value
		if len(report.Tracks) > 0 {
			rows := make([][]string, 0, len(report.Tracks))
			for _, t := range report.Tracks {
				rows = append(rows, []string{t.ID, string(t.Kind), t.Name,
					fmt.Sprintf("%d", t.Segments), formatMicros(t.EndUS)})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Track", "Kind", "Name", "Segments", "End"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, formatMicros(report.DurationUS), colorize))
			if report.MirrorInSync {
				fmt.Fprintln(out, renderStatusLine("Info document", statusOK, "in sync", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Info document", statusWarn, "out of sync; run draftkit sync", colorize))
			}
			if n := len(report.DeadMaterials); n > 0 {
				fmt.Fprintln(out, renderStatusLine("Unused materials", statusWarn, fmt.Sprintf("%d", n), colorize))
			}
		}
		switch {
		case o.Err != nil && len(report.Issues) == 0:
			fmt.Fprintln(out, renderStatusLine("Result", statusError, o.Err.Error(), colorize))
		case len(report.Issues) > 0:
			fmt.Fprintln(out, renderStatusLine("Result", statusError, fmt.Sprintf("%d issues", len(report.Issues)), colorize))
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "%s    %s\n", statusIndent, issue.String())
			}
		default:
			fmt.Fprintln(out, renderStatusLine("Result", statusOK, "valid", colorize))
		}
	}
}

func formatMicros(us int64) string {
	return fmt.Sprintf("%.3fs", float64(us)/1e6)
}

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "normalize [project...]",
		Short: "Give every track a unique non-empty name",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, args, all, func(*config.Config, *project.Project) (project.Mutation, error) {
				return project.Normalize(), nil
			})
		},
	}
	addAllFlag(cmd, &all)
	return cmd
}

func newDedupeCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "dedupe [project...]",
		Short: "Remove duplicated automation tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, args, all, func(cfg *config.Config, _ *project.Project) (project.Mutation, error) {
				return project.Dedupe(cfg.Tracks.AutomationPrefix, cfg.Tracks.TemplateNames), nil
			})
		},
	}
	addAllFlag(cmd, &all)
	return cmd
}

func newCrossfadeCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var track string
	var durationUS, toleranceUS int64

	cmd := &cobra.Command{
		Use:   "crossfade [project...]",
		Short: "Rebuild crossfade transitions between adjacent segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, args, all, func(cfg *config.Config, _ *project.Project) (project.Mutation, error) {
				tolerance := cfg.Timeline.AdjacencyToleranceUS
				if cmd.Flags().Changed("tolerance-us") {
					tolerance = toleranceUS
				}
				spec := edit.TransitionSpec{
					DurationUS: cfg.Timeline.TransitionDurationUS,
					Tolerance:  &tolerance,
					Name:       cfg.Timeline.TransitionName,
					EffectID:   cfg.Timeline.TransitionEffectID,
					ResourceID: cfg.Timeline.TransitionResourceID,
				}
				if cmd.Flags().Changed("duration-us") {
					spec.DurationUS = durationUS
				}
				return project.Crossfade(track, spec), nil
			})
		},
	}
	addAllFlag(cmd, &all)
	cmd.Flags().StringVar(&track, "track", "", "Track id, name, largest:<kind>, or prefix:<p> (default: every video track)")
	cmd.Flags().Int64Var(&durationUS, "duration-us", 0, "Transition duration in microseconds")
	cmd.Flags().Int64Var(&toleranceUS, "tolerance-us", 0, "Largest gap between segments that still counts as adjacent; 0 requires exact adjacency (default from config)")
	return cmd
}

func newFadeCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var track string
	var durationUS int64

	cmd := &cobra.Command{
		Use:   "fade [project...]",
		Short: "Add fade-in and fade-out animations to every segment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, args, all, func(cfg *config.Config, _ *project.Project) (project.Mutation, error) {
				spec := edit.FadeSpec{
					DurationUS:    cfg.Timeline.FadeDurationUS,
					InResourceID:  cfg.Timeline.FadeInResourceID,
					OutResourceID: cfg.Timeline.FadeOutResourceID,
				}
				if cmd.Flags().Changed("duration-us") {
					spec.DurationUS = durationUS
				}
				return project.Fade(track, spec), nil
			})
		},
	}
	addAllFlag(cmd, &all)
	cmd.Flags().StringVar(&track, "track", "", "Track id, name, largest:<kind>, or prefix:<p> (default: every video track)")
	cmd.Flags().Int64Var(&durationUS, "duration-us", 0, "Fade duration in microseconds")
	return cmd
}

func newRetimeCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var track string
	var cuesPath string

	cmd := &cobra.Command{
		Use:   "retime [project...]",
		Short: "Move a track's segments onto cue times",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(track) == "" {
				return errors.New("--track is required")
			}
			cues, err := readCues(cuesPath)
			if err != nil {
				return err
			}
			return runMutation(cmd, ctx, args, all, func(*config.Config, *project.Project) (project.Mutation, error) {
				return project.Retime(track, cues), nil
			})
		},
	}
	addAllFlag(cmd, &all)
	cmd.Flags().StringVar(&track, "track", "", "Track id, name, largest:<kind>, or prefix:<p>")
	cmd.Flags().StringVar(&cuesPath, "cues", "", "JSON file of [{start_sec, end_sec}] cues")
	_ = cmd.MarkFlagRequired("cues")
	return cmd
}

func readCues(path string) ([]edit.Cue, error) {
	path, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cues: %w", err)
	}
	defer f.Close()
	return edit.LoadCues(f)
}

func newSwapCommand(ctx *commandContext) *cobra.Command {
	var material string
	var asset string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "swap <project>",
		Short: "Replace the asset behind a material",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(material) == "" {
				return errors.New("--material is required")
			}
			assetPath, err := config.ExpandPath(strings.TrimSpace(asset))
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return runMutation(cmd, ctx, args, false, func(cfg *config.Config, p *project.Project) (project.Mutation, error) {
				swapper := edit.Swapper{
					StoreDir: cfg.AssetStoreDir(p.Dir),
					Prober:   ffprobe.Prober{Binary: cfg.FFprobeBinary()},
					Logger:   logger,
				}
				return project.Swap(swapper, material, assetPath, dryRun), nil
			})
		},
	}
	cmd.Flags().StringVar(&material, "material", "", "Id of the material to replace")
	cmd.Flags().StringVar(&asset, "asset", "", "Path of the replacement media file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the references without changing anything")
	_ = cmd.MarkFlagRequired("asset")
	return cmd
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "sync [project...]",
		Short: "Rebuild the info document from the content document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, ctx, args, all, func(*config.Config, *project.Project) (project.Mutation, error) {
				return project.Sync(), nil
			})
		},
	}
	addAllFlag(cmd, &all)
	return cmd
}
