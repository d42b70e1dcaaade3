package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/generator"
	"github.com/ayakoakasaka/csprojgen/internal/logger"
)

var (
	diffFlags     targetFlags
	diffExitCode  bool
	errHasChanges = errors.New("generated files differ from disk")
)

var diffCmd = &cobra.Command{
	Use:   "diff <name> --world <world> --out <dir>",
	Short: "Show how generation would change existing files",
	Long: `Render the same files as generate and print a unified diff against what is
on disk. Nothing is written. Accepts the same flags as generate, including --plan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiff,
}

func init() {
	diffFlags.register(diffCmd.Flags())
	diffCmd.Flags().BoolVar(&diffExitCode, "exit-code", false, "Fail when any file would change")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	jobs, err := diffFlags.jobs(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	gen := generator.New(nil, logger.Logger)
	changed := 0
	for _, job := range jobs {
		diffs, err := gen.Diff(job.Target, job.Options)
		if err != nil {
			return errors.Wrapf(err, "diffing %s", job.Target.Name.Raw)
		}
		for _, d := range diffs {
			fmt.Fprintf(out, "  %s: %s\n", d.Status, filepath.Join(job.Target.OutputDir, d.Path))
			if d.Status != generator.StatusUnchanged {
				changed++
				fmt.Fprint(out, d.Unified)
			}
		}
	}

	if changed == 0 {
		fmt.Fprintln(out, "Up to date.")
		return nil
	}
	if diffExitCode {
		return errHasChanges
	}
	return nil
}
