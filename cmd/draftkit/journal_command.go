package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"draftkit/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	var projectFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recorded edit runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := journal.Filter{Limit: limit}
			if name := strings.TrimSpace(projectFlag); name != "" {
				dir, err := ctx.configValue().ProjectDir(name)
				if err != nil {
					return err
				}
				filter.Project = dir
			}
			return ctx.withJournal(func(store *journal.Store) error {
				runs, err := store.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if runs == nil {
						runs = []*journal.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "Journal is empty")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						fmt.Sprintf("%d", run.ID),
						run.StartedAt.Local().Format(time.DateTime),
						filepath.Base(run.Project),
						run.Operation,
						string(run.Status),
						run.Message,
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"ID", "Started", "Project", "Operation", "Status", "Message"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&projectFlag, "project", "", "Only show runs for this project")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}
