package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"draftkit/internal/config"
	"draftkit/internal/project"
	"draftkit/internal/schedule"
)

type scheduleOutput struct {
	Schedule schedule.Schedule  `json:"schedule"`
	Captions []schedule.Caption `json:"captions"`
}

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var itemsPath string
	var fps float64
	var crossfade float64
	var apply bool
	var track string
	var all bool

	cmd := &cobra.Command{
		Use:   "schedule [project...]",
		Short: "Lay out items in frames and align captions to them",
		Long: `Lay out a JSON list of {summary, duration_sec} items back to back with a
crossfade overlap and print the placements and caption windows.

With --apply, the named track of each project is retimed onto the schedule.
Combined with --json only the per-project results are printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("fps") {
				fps = cfg.Timeline.FPS
			}
			if !cmd.Flags().Changed("crossfade") {
				crossfade = cfg.Timeline.CrossfadeSeconds
			}
			if !apply && (len(args) > 0 || all) {
				return errors.New("projects are only used with --apply")
			}
			if apply && strings.TrimSpace(track) == "" {
				return errors.New("--apply requires --track")
			}

			sched, captions, err := buildSchedule(itemsPath, fps, crossfade)
			if err != nil {
				return err
			}

			if !apply {
				if ctx.jsonOutput() {
					return writeJSON(cmd, scheduleOutput{Schedule: sched, Captions: captions})
				}
				printSchedule(cmd.OutOrStdout(), sched, captions)
				return nil
			}
			if !ctx.jsonOutput() {
				printSchedule(cmd.OutOrStdout(), sched, captions)
			}
			cues := sched.Cues()
			return runMutation(cmd, ctx, args, all, func(*config.Config, *project.Project) (project.Mutation, error) {
				return project.Retime(track, cues), nil
			})
		},
	}
	cmd.Flags().StringVar(&itemsPath, "items", "", "JSON file of [{summary, duration_sec}] items")
	cmd.Flags().Float64Var(&fps, "fps", 0, "Frames per second (default: timeline.fps)")
	cmd.Flags().Float64Var(&crossfade, "crossfade", 0, "Overlap between items in seconds (default: timeline.crossfade_seconds)")
	cmd.Flags().BoolVar(&apply, "apply", false, "Retime --track in each project onto the schedule")
	cmd.Flags().StringVar(&track, "track", "", "Track id, name, or index to retime with --apply")
	addAllFlag(cmd, &all)
	_ = cmd.MarkFlagRequired("items")
	return cmd
}

func buildSchedule(path string, fps, crossfade float64) (schedule.Schedule, []schedule.Caption, error) {
	path, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return schedule.Schedule{}, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return schedule.Schedule{}, nil, fmt.Errorf("open items: %w", err)
	}
	defer f.Close()
	return schedule.Build(f, fps, crossfade)
}

func printSchedule(out io.Writer, sched schedule.Schedule, captions []schedule.Caption) {
	rows := make([][]string, 0, len(sched.Placed))
	for i, p := range sched.Placed {
		row := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", p.StartFrame),
			fmt.Sprintf("%d", p.DurationFrame),
			"", "", "",
		}
		if i < len(captions) {
			c := captions[i]
			row[3] = fmt.Sprintf("%d", c.StartFrame)
			row[4] = fmt.Sprintf("%d", c.EndFrame)
			row[5] = c.Text
		}
		rows = append(rows, row)
	}
	fmt.Fprint(out, renderTable(
		[]string{"#", "Start", "Frames", "Caption start", "Caption end", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d frames at %g fps, %d frame overlap\n", sched.TotalFrames, sched.FPS, sched.OverlapFrames)
}
