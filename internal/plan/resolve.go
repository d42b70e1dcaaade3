package plan

import (
	"path/filepath"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/options"
	"github.com/ayakoakasaka/csprojgen/internal/scaffold"
)

// Job is one resolved unit of generation work.
type Job struct {
	Target  scaffold.BuildTarget
	Options options.OptionSet
}

// Resolve turns every target into a Job. Options are layered as
// fallback < plan defaults < target. Relative output directories are
// taken relative to baseDir, and no two targets may share one.
func (p *Plan) Resolve(baseDir string, fallback OptionSpec) ([]Job, error) {
	jobs := make([]Job, 0, len(p.Targets))
	seen := make(map[string]string, len(p.Targets))

	for _, ts := range p.Targets {
		dir := ts.OutputDir
		if dir != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}

		target, err := scaffold.NewBuildTarget(ts.Name, ts.World, dir)
		if err != nil {
			return nil, errors.Wrapf(err, "target %q", ts.Name)
		}

		key := filepath.Clean(target.OutputDir)
		if prev, ok := seen[key]; ok {
			return nil, errors.UnsupportedCombination("output_dir",
				"targets %q and %q both write to %s", prev, ts.Name, key)
		}
		seen[key] = ts.Name

		base := fallback
		if !sameRuntime(fallback.Runtime, layer(p.Defaults, ts.OptionSpec).Runtime) {
			// A configured framework only applies to the configured runtime.
			base.Framework = ""
		}
		spec := layer(layer(base, p.Defaults), ts.OptionSpec)

		opts, err := spec.OptionSet()
		if err != nil {
			return nil, errors.Wrapf(err, "target %q", ts.Name)
		}
		jobs = append(jobs, Job{Target: target, Options: opts})
	}
	return jobs, nil
}

// sameRuntime reports whether override leaves the runtime of base unchanged.
func sameRuntime(base, override string) bool {
	if override == "" {
		return true
	}
	a, errA := options.ParseRuntime(base)
	b, errB := options.ParseRuntime(override)
	return errA == nil && errB == nil && a == b
}

// OptionSet builds a validated options.OptionSet from s. Unset fields take
// the runtime defaults.
func (s OptionSpec) OptionSet() (options.OptionSet, error) {
	r, err := options.ParseRuntime(s.Runtime)
	if err != nil {
		return options.OptionSet{}, err
	}

	var opts []options.Option
	if s.AOT != nil {
		opts = append(opts, options.WithAOT(*s.AOT))
	}
	if s.Clean != nil {
		opts = append(opts, options.WithCleanTargets(*s.Clean))
	}
	if s.Framework != "" {
		opts = append(opts, options.WithFramework(s.Framework))
	}
	if s.PackageCache != "" {
		opts = append(opts, options.WithPackageCache(s.PackageCache))
	}
	if len(s.Feeds) > 0 {
		feeds := make([]options.Feed, len(s.Feeds))
		for i, f := range s.Feeds {
			feeds[i] = options.Feed{Key: f.Key, URL: f.URL}
		}
		opts = append(opts, options.WithFeeds(feeds...))
	}
	if s.ILCompilerVersion != "" {
		opts = append(opts, options.WithILCompilerVersion(s.ILCompilerVersion))
	}
	if s.HostRID != "" {
		opts = append(opts, options.WithHostRID(s.HostRID))
	}
	if len(s.LinkerArgs) > 0 {
		opts = append(opts, options.WithLinkerArgs(s.LinkerArgs...))
	}
	if s.Emcc != "" {
		opts = append(opts, options.WithEmccCommand(s.Emcc))
	}
	return options.New(r, opts...)
}

// layer returns base with every field set in top overriding it.
func layer(base, top OptionSpec) OptionSpec {
	out := base
	if top.Runtime != "" {
		out.Runtime = top.Runtime
	}
	if top.Framework != "" {
		out.Framework = top.Framework
	}
	if top.AOT != nil {
		out.AOT = top.AOT
	}
	if top.Clean != nil {
		out.Clean = top.Clean
	}
	if top.PackageCache != "" {
		out.PackageCache = top.PackageCache
	}
	if len(top.Feeds) > 0 {
		out.Feeds = top.Feeds
	}
	if top.ILCompilerVersion != "" {
		out.ILCompilerVersion = top.ILCompilerVersion
	}
	if top.HostRID != "" {
		out.HostRID = top.HostRID
	}
	if len(top.LinkerArgs) > 0 {
		out.LinkerArgs = top.LinkerArgs
	}
	if top.Emcc != "" {
		out.Emcc = top.Emcc
	}
	return out
}
