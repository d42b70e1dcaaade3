package options

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
)

// Feed is one upstream package source.
type Feed struct {
	Key string
	URL string
}

const (
	DefaultPackageCache      = ".packages"
	DefaultILCompilerVersion = "9.0.0-*"
	DefaultHostRID           = "win-x64"
	DefaultEmccCommand       = "emcc.bat"
)

var (
	nugetFeed = Feed{Key: "nuget", URL: "https://api.nuget.org/v3/index.json"}

	defaultNativeAOTFeeds = []Feed{
		nugetFeed,
		{Key: "dotnet-experimental", URL: "https://pkgs.dev.azure.com/dnceng/public/_packaging/dotnet-experimental/nuget/v3/index.json"},
	}
	defaultManagedFeeds = []Feed{
		nugetFeed,
		{Key: "dotnet9", URL: "https://pkgs.dev.azure.com/dnceng/public/_packaging/dotnet9/nuget/v3/index.json"},
	}

	defaultLinkerArgs = []string{
		"-Wl,--export,_initialize",
		"-Wl,--no-entry",
		"-mexec-model=reactor",
	}

	frameworkPattern = regexp.MustCompile(`^net(\d+)\.(\d+)$`)
)

// DefaultFeeds returns the package feeds used for r when none are given.
func DefaultFeeds(r Runtime) []Feed {
	if r == ManagedRuntime {
		return slices.Clone(defaultManagedFeeds)
	}
	return slices.Clone(defaultNativeAOTFeeds)
}

// OptionSet is a validated, immutable generation configuration.
// The zero value is not usable; build one with New.
type OptionSet struct {
	runtime           Runtime
	aot               bool
	clean             bool
	framework         string
	packageCache      string
	feeds             []Feed
	ilCompilerVersion string
	hostRID           string
	linkerArgs        []string
	emccCommand       string
	built             bool
}

// Option configures New.
type Option func(*settings)

// settings records what the caller asked for, including which optional
// values were set explicitly, so New can reject flags that would be ignored.
type settings struct {
	aot          bool
	clean        bool
	framework    *string
	packageCache *string
	feeds        []Feed
	feedsSet     bool
	ilCompiler   *string
	hostRID      *string
	linkerArgs   []string
	linkerSet    bool
	emcc         *string
}

func WithAOT(enabled bool) Option { return func(s *settings) { s.aot = enabled } }

func WithCleanTargets(enabled bool) Option { return func(s *settings) { s.clean = enabled } }

func WithFramework(moniker string) Option {
	return func(s *settings) { s.framework = &moniker }
}

// WithPackageCache sets the isolated package folder written to the
// package-source file and removed by the cleanup target.
func WithPackageCache(dir string) Option {
	return func(s *settings) { s.packageCache = &dir }
}

// WithFeeds replaces the default upstream feeds. Order is preserved.
func WithFeeds(feeds ...Feed) Option {
	return func(s *settings) {
		s.feeds = slices.Clone(feeds)
		s.feedsSet = true
	}
}

// WithILCompilerVersion sets the NativeAOT-LLVM package version, e.g. "9.0.0-*".
func WithILCompilerVersion(v string) Option {
	return func(s *settings) { s.ilCompiler = &v }
}

// WithHostRID sets the runtime identifier of the ILCompiler host package.
func WithHostRID(rid string) Option {
	return func(s *settings) { s.hostRID = &rid }
}

func WithLinkerArgs(args ...string) Option {
	return func(s *settings) {
		s.linkerArgs = slices.Clone(args)
		s.linkerSet = true
	}
}

// WithEmccCommand sets the emscripten compiler used for the cabi_realloc step.
func WithEmccCommand(cmd string) Option {
	return func(s *settings) { s.emcc = &cmd }
}

// New validates the requested options for runtime r and returns the finished set.
func New(r Runtime, opts ...Option) (OptionSet, error) {
	if r != NativeAOT && r != ManagedRuntime {
		return OptionSet{}, errors.UnsupportedCombination("runtime", "unknown runtime %d", int(r))
	}

	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if err := s.checkRuntimeOnly(r); err != nil {
		return OptionSet{}, err
	}
	if err := s.checkAOTOnly(); err != nil {
		return OptionSet{}, err
	}

	o := OptionSet{
		runtime:      r,
		aot:          s.aot,
		clean:        s.clean,
		framework:    r.DefaultFramework(),
		packageCache: DefaultPackageCache,
		built:        true,
	}

	if s.framework != nil {
		o.framework = strings.TrimSpace(*s.framework)
	}
	if err := checkFramework(r, o.framework); err != nil {
		return OptionSet{}, err
	}

	if s.packageCache != nil {
		o.packageCache = strings.TrimSpace(*s.packageCache)
		if o.packageCache == "" {
			return OptionSet{}, errors.UnsupportedCombination("package_cache", "package cache directory must not be empty")
		}
	}

	if o.aot {
		o.feeds = DefaultFeeds(r)
		if s.feedsSet {
			if err := checkFeeds(s.feeds); err != nil {
				return OptionSet{}, err
			}
			o.feeds = s.feeds
		}
	}

	if o.aot && r == NativeAOT {
		o.ilCompilerVersion = valueOr(s.ilCompiler, DefaultILCompilerVersion)
		if err := checkPackageVersion(o.ilCompilerVersion); err != nil {
			return OptionSet{}, err
		}
		o.hostRID = valueOr(s.hostRID, DefaultHostRID)
		if o.hostRID == "" {
			return OptionSet{}, errors.UnsupportedCombination("host_rid", "host runtime identifier must not be empty")
		}
		o.emccCommand = valueOr(s.emcc, DefaultEmccCommand)
		if o.emccCommand == "" {
			return OptionSet{}, errors.UnsupportedCombination("emcc", "emscripten command must not be empty")
		}
		o.linkerArgs = slices.Clone(defaultLinkerArgs)
		if s.linkerSet {
			for _, a := range s.linkerArgs {
				if strings.TrimSpace(a) == "" {
					return OptionSet{}, errors.UnsupportedCombination("linker_args", "linker arguments must not be empty")
				}
			}
			o.linkerArgs = s.linkerArgs
		}
	}

	return o, nil
}

// checkRuntimeOnly rejects NativeAOT-only settings on the managed runtime.
func (s *settings) checkRuntimeOnly(r Runtime) error {
	if r == NativeAOT {
		return nil
	}
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"il_compiler_version", s.ilCompiler != nil},
		{"host_rid", s.hostRID != nil},
		{"linker_args", s.linkerSet},
		{"emcc", s.emcc != nil},
	} {
		if f.set {
			return errors.UnsupportedCombination(f.name, "%s is only meaningful for the %s runtime", f.name, NativeAOT)
		}
	}
	return nil
}

// checkAOTOnly rejects settings that only affect AOT output when AOT is off.
func (s *settings) checkAOTOnly() error {
	if s.aot {
		return nil
	}
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"feeds", s.feedsSet},
		{"il_compiler_version", s.ilCompiler != nil},
		{"host_rid", s.hostRID != nil},
		{"linker_args", s.linkerSet},
		{"emcc", s.emcc != nil},
	} {
		if f.set {
			return errors.UnsupportedCombination(f.name, "%s requires aot to be enabled", f.name)
		}
	}
	return nil
}

func checkFramework(r Runtime, moniker string) error {
	m := frameworkPattern.FindStringSubmatch(moniker)
	if m == nil {
		return errors.UnsupportedCombination("framework", "framework %q is not a netX.Y moniker", moniker)
	}
	v, err := semver.NewVersion(m[1] + "." + m[2])
	if err != nil {
		return errors.UnsupportedCombination("framework", "framework %q: %v", moniker, err)
	}
	c, err := semver.NewConstraint(">= " + r.minFramework())
	if err != nil {
		return errors.Wrap(err, "building framework constraint")
	}
	if !c.Check(v) {
		return errors.UnsupportedCombination("framework", "framework %s is older than net%s required by the %s runtime", moniker, r.minFramework(), r)
	}
	return nil
}

// checkPackageVersion accepts a semantic version optionally ending in a
// floating prerelease wildcard ("9.0.0-*").
func checkPackageVersion(v string) error {
	base := strings.TrimSuffix(v, "-*")
	if _, err := semver.StrictNewVersion(base); err != nil {
		return errors.UnsupportedCombination("il_compiler_version", "invalid package version %q: %v", v, err)
	}
	return nil
}

func checkFeeds(feeds []Feed) error {
	if len(feeds) == 0 {
		return errors.UnsupportedCombination("feeds", "at least one package feed is required")
	}
	seen := make(map[string]bool, len(feeds))
	for _, f := range feeds {
		if f.Key == "" || f.URL == "" {
			return errors.UnsupportedCombination("feeds", "feed %q must have both a key and a URL", f.Key)
		}
		if seen[f.Key] {
			return errors.UnsupportedCombination("feeds", "duplicate feed key %q", f.Key)
		}
		seen[f.Key] = true
	}
	return nil
}

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return strings.TrimSpace(*p)
}

func (o OptionSet) Runtime() Runtime     { return o.runtime }
func (o OptionSet) AOT() bool            { return o.aot }
func (o OptionSet) CleanTargets() bool   { return o.clean }
func (o OptionSet) Framework() string    { return o.framework }
func (o OptionSet) PackageCache() string { return o.packageCache }

// Feeds returns the upstream feeds written to the package-source file.
// It is empty unless AOT is enabled.
func (o OptionSet) Feeds() []Feed { return slices.Clone(o.feeds) }

func (o OptionSet) ILCompilerVersion() string { return o.ilCompilerVersion }
func (o OptionSet) HostRID() string           { return o.hostRID }
func (o OptionSet) LinkerArgs() []string      { return slices.Clone(o.linkerArgs) }
func (o OptionSet) EmccCommand() string       { return o.emccCommand }

// NativeAOTEnabled reports whether the NativeAOT-LLVM compile blocks apply.
func (o OptionSet) NativeAOTEnabled() bool {
	return o.aot && o.runtime == NativeAOT
}

// Built reports whether o came from New.
func (o OptionSet) Built() bool { return o.built }
