package cli

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ayakoakasaka/csprojgen/internal/config"
	"github.com/ayakoakasaka/csprojgen/internal/options"
)

var doctorPlan string

func init() {
	doctorCmd.Flags().StringVar(&doctorPlan, "check-plan", "", "Also validate a plan file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the build toolchain and configuration",
	Long: `Report whether the tools needed to build generated projects are on PATH and
whether the saved configuration is usable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		runToolchainCheck(out)
		configErr := runConfigCheck(out)
		if doctorPlan != "" {
			if err := runPlanCheck(out, doctorPlan); err != nil {
				return err
			}
		}
		return configErr
	},
}

func runToolchainCheck(w io.Writer) {
	fmt.Fprintln(w, "Toolchain check:")
	checkBinary(w, "dotnet")
	checkBinary(w, "wasm-tools")
	// emcc is named per platform; either is enough.
	if !checkBinaryQuiet("emcc") && !checkBinaryQuiet(options.DefaultEmccCommand) {
		fmt.Fprintf(w, "  [MISS] emcc not found (only needed for nativeaot --aot builds)\n")
	} else {
		fmt.Fprintf(w, "  [ OK ] emcc found\n")
	}
}

func checkBinary(w io.Writer, name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %s not found\n", name)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)
}

func checkBinaryQuiet(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runConfigCheck(w io.Writer) error {
	fmt.Fprintf(w, "Config check: %s\n", config.FilePath())
	fallback := configFallback()
	if _, err := fallback.OptionSet(); err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return err
	}
	fmt.Fprintf(w, "  [ OK ] runtime=%s framework=%s package_cache=%s\n",
		config.Get(config.KeyRuntime), valueOrDefault(config.Get(config.KeyFramework)), config.Get(config.KeyPackageCache))
	return nil
}

func valueOrDefault(s string) string {
	if s == "" {
		return "(runtime default)"
	}
	return s
}
