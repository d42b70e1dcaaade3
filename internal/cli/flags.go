package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ayakoakasaka/csprojgen/internal/config"
	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/plan"
)

// targetFlags are the flags shared by generate and diff.
type targetFlags struct {
	world             string
	out               string
	planPath          string
	runtime           string
	framework         string
	packageCache      string
	ilCompilerVersion string
	hostRID           string
	emcc              string
	aot               bool
	clean             bool
	linkerArgs        []string
	feeds             []string
}

var optionFlagNames = []string{
	"runtime", "framework", "package-cache", "aot", "clean", "feed",
	"il-compiler-version", "host-rid", "linker-arg", "emcc",
}

func (f *targetFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.world, "world", "w", "", "WIT world the component implements")
	fs.StringVarP(&f.out, "out", "o", "", "Output directory for the generated files")
	fs.StringVar(&f.planPath, "plan", "", "Generate every target listed in a YAML or TOML plan")
	fs.StringVar(&f.runtime, "runtime", "", "Runtime flavour: nativeaot or mono")
	fs.StringVar(&f.framework, "framework", "", "Target framework moniker (e.g. net8.0)")
	fs.StringVar(&f.packageCache, "package-cache", "", "Restore packages into this directory")
	fs.BoolVar(&f.aot, "aot", false, "Compile ahead of time to a native wasm module")
	fs.BoolVar(&f.clean, "clean", false, "Add a CleanAndDelete target that also removes the package cache")
	fs.StringArrayVar(&f.feeds, "feed", nil, "Package feed as key=url (repeatable, requires --aot)")
	fs.StringVar(&f.ilCompilerVersion, "il-compiler-version", "", "ILCompiler package version (nativeaot, requires --aot)")
	fs.StringVar(&f.hostRID, "host-rid", "", "Host runtime identifier for the ILCompiler package (nativeaot, requires --aot)")
	fs.StringArrayVar(&f.linkerArgs, "linker-arg", nil, "Extra wasm linker argument (repeatable, nativeaot, requires --aot)")
	fs.StringVar(&f.emcc, "emcc", "", "Emscripten compiler command (nativeaot, requires --aot)")
}

// spec collects the option flags the user actually set.
func (f *targetFlags) spec(fs *pflag.FlagSet) (plan.OptionSpec, error) {
	var s plan.OptionSpec
	s.Runtime = f.runtime
	s.Framework = f.framework
	s.PackageCache = f.packageCache
	s.ILCompilerVersion = f.ilCompilerVersion
	s.HostRID = f.hostRID
	s.Emcc = f.emcc
	s.LinkerArgs = f.linkerArgs
	if fs.Changed("aot") {
		v := f.aot
		s.AOT = &v
	}
	if fs.Changed("clean") {
		v := f.clean
		s.Clean = &v
	}
	for _, raw := range f.feeds {
		key, url, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(key) == "" || strings.TrimSpace(url) == "" {
			return plan.OptionSpec{}, errors.UnsupportedCombination("feeds",
				"feed %q must be written as key=url", raw)
		}
		s.Feeds = append(s.Feeds, plan.FeedSpec{Key: strings.TrimSpace(key), URL: strings.TrimSpace(url)})
	}
	return s, nil
}

// jobs resolves the command line into generation jobs, either from a plan
// file or from a single positional name.
func (f *targetFlags) jobs(cmd *cobra.Command, args []string) ([]plan.Job, error) {
	fallback := configFallback()

	if f.planPath != "" {
		if len(args) > 0 || f.world != "" || f.out != "" {
			return nil, errors.UnsupportedCombination("plan",
				"--plan cannot be combined with a name, --world or --out")
		}
		for _, name := range optionFlagNames {
			if cmd.Flags().Changed(name) {
				return nil, errors.UnsupportedCombination("plan",
					"--%s cannot be combined with --plan; set it in the plan's defaults", name)
			}
		}
		return loadPlanJobs(f.planPath, fallback)
	}

	if len(args) != 1 {
		return nil, errors.WithHint(
			errors.InvalidIdentifier("name", ""),
			"pass the component name as the only argument, or use --plan")
	}
	spec, err := f.spec(cmd.Flags())
	if err != nil {
		return nil, err
	}
	single := &plan.Plan{Targets: []plan.TargetSpec{{
		Name:       args[0],
		World:      f.world,
		OutputDir:  f.out,
		OptionSpec: spec,
	}}}
	return single.Resolve("", fallback)
}

func loadPlanJobs(path string, fallback plan.OptionSpec) ([]plan.Job, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, err
	}
	return p.Resolve(planDir(path), fallback)
}

// configFallback returns the user-level defaults from the config file and
// environment.
func configFallback() plan.OptionSpec {
	return plan.OptionSpec{
		Runtime:      config.Get(config.KeyRuntime),
		Framework:    config.Get(config.KeyFramework),
		PackageCache: config.Get(config.KeyPackageCache),
	}
}
