package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/plan"
)

func init() {
	planCmd.AddCommand(planValidateCmd)
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Work with multi-target plan files",
}

var planValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a plan against the schema and resolve its targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlanCheck(cmd.OutOrStdout(), args[0])
	},
}

func runPlanCheck(w io.Writer, path string) error {
	fmt.Fprintf(w, "Plan validation: %s\n", path)

	result, err := plan.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return err
	}

	if !result.Valid {
		fmt.Fprintf(w, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "    - %s\n", issue)
		}
		return errors.UnsupportedCombination("plan", "plan %s has %d validation issue(s)", path, len(result.Issues))
	}

	// Schema-valid plans can still conflict once options are combined.
	jobs, err := loadPlanJobs(path, configFallback())
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return err
	}
	fmt.Fprintf(w, "  [ OK ] %d target(s)\n", len(jobs))
	for _, job := range jobs {
		fmt.Fprintf(w, "    - %s (%s, %s) -> %s\n",
			job.Target.Name.Raw, job.Options.Runtime(), job.Options.Framework(), job.Target.OutputDir)
	}
	return nil
}
