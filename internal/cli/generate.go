package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/generator"
	"github.com/ayakoakasaka/csprojgen/internal/logger"
	"github.com/ayakoakasaka/csprojgen/internal/plan"
)

var (
	generateFlags targetFlags
	generateWatch bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <name> --world <world> --out <dir>",
	Short: "Write the project files for a component",
	Long: `Write <World>.csproj and rd.xml (plus nuget.config when --aot is set) into
the output directory. All files are written atomically as one batch: on
failure nothing from this run is left behind and existing files are restored.

With --plan, every target listed in a YAML or TOML plan is generated in order.
Add --watch to regenerate whenever the plan file changes.`,
	Example: `  csprojgen generate my-component --world my-world --out ./component
  csprojgen generate my-component -w my-world -o ./component --aot --clean
  csprojgen generate my-component -w my-world -o ./component --runtime mono
  csprojgen generate --plan components.yaml --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateFlags.register(generateCmd.Flags())
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "Regenerate when the plan file changes (requires --plan)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateWatch && generateFlags.planPath == "" {
		return errors.UnsupportedCombination("watch", "--watch requires --plan")
	}

	jobs, err := generateFlags.jobs(cmd, args)
	if err != nil {
		return err
	}
	gen := generator.New(nil, logger.Logger)
	if err := runJobs(cmd.OutOrStdout(), gen, jobs); err != nil {
		return err
	}
	if !generateWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchPlan(ctx, cmd.OutOrStdout(), gen, generateFlags.planPath)
}

// runJobs generates each job in order and stops at the first failure.
func runJobs(w io.Writer, gen *generator.Generator, jobs []plan.Job) error {
	for _, job := range jobs {
		result, err := gen.Generate(job.Target, job.Options)
		if err != nil {
			return errors.Wrapf(err, "generating %s", job.Target.Name.Raw)
		}
		fmt.Fprintf(w, "✓ %s -> %s\n", job.Target.Name.Raw, result.Dir)
		for _, f := range result.Files {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}
	return nil
}

// watchPlan reloads and regenerates the plan on every change until ctx is
// done. Failures are logged and do not stop the watch.
func watchPlan(ctx context.Context, w io.Writer, gen *generator.Generator, path string) error {
	fallback := configFallback()
	watcher := plan.NewWatcher(path, plan.DefaultDebounce, logger.Logger)
	fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", path)

	return watcher.Watch(ctx, func() {
		jobs, err := loadPlanJobs(path, fallback)
		if err == nil {
			err = runJobs(w, gen, jobs)
		}
		if err != nil {
			logger.Logger.Error("regeneration failed",
				zap.String("plan", path),
				zap.String("code", string(errors.CodeOf(err))),
				zap.Error(err))
		}
	})
}

// planDir is the directory relative output_dir entries are resolved against.
func planDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	return filepath.Dir(abs)
}
