package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"draftkit/internal/journal"
	"draftkit/internal/project"
)

func newBackupsCommand(ctx *commandContext) *cobra.Command {
	backupsCmd := &cobra.Command{
		Use:   "backups",
		Short: "List and restore project backups",
	}
	backupsCmd.AddCommand(newBackupsListCommand(ctx))
	backupsCmd.AddCommand(newBackupsRestoreCommand(ctx))
	return backupsCmd
}

func newBackupsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List backup sets, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := ctx.projectDirs(args, false)
			if err != nil {
				return err
			}
			p, err := ctx.openProject(dirs[0], nil)
			if err != nil {
				return err
			}
			sets, err := p.Backups()
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if sets == nil {
					sets = []project.BackupSet{}
				}
				return writeJSON(cmd, sets)
			}
			out := cmd.OutOrStdout()
			if len(sets) == 0 {
				fmt.Fprintf(out, "No backups for %s\n", p.Name)
				return nil
			}
			rows := make([][]string, 0, len(sets))
			for _, set := range sets {
				created := ""
				var files []string
				if set.Content != nil {
					created = set.Content.CreatedAt.Format(time.DateTime)
					files = append(files, filepath.Base(p.ContentPath))
				}
				if set.Info != nil {
					if created == "" {
						created = set.Info.CreatedAt.Format(time.DateTime)
					}
					files = append(files, filepath.Base(p.InfoPath))
				}
				rows = append(rows, []string{set.Suffix, created, strings.Join(files, ", "), yesNo(set.Complete())})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Suffix", "Created", "Files", "Complete"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newBackupsRestoreCommand(ctx *commandContext) *cobra.Command {
	var suffix string

	cmd := &cobra.Command{
		Use:   "restore <project>",
		Short: "Restore both project files from a backup set",
		Long: `Restore both project files from the backup set named by --suffix, or from
the newest complete set when --suffix is omitted. The current files are
backed up first, so a restore can itself be undone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := ctx.projectDirs(args, false)
			if err != nil {
				return err
			}
			return ctx.withJournal(func(store *journal.Store) error {
				p, err := ctx.openProject(dirs[0], store)
				if err != nil {
					return err
				}
				result, err := p.Restore(cmd.Context(), strings.TrimSpace(suffix))
				if ctx.jsonOutput() {
					if jsonErr := writeJSON(cmd, result); jsonErr != nil {
						return errors.Join(err, jsonErr)
					}
					return err
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderStatusLine(p.Name, statusOK, "restored", shouldColorize(out)))
				for _, path := range result.Backups {
					fmt.Fprintf(out, "%s    previous state saved to %s\n", statusIndent, path)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&suffix, "suffix", "", "Backup suffix to restore (default: newest complete set)")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
