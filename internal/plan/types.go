package plan

// Plan is the decoded plan document.
type Plan struct {
	Version  int          `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty"`
	Defaults OptionSpec   `yaml:"defaults,omitempty" toml:"defaults,omitempty" json:"defaults,omitempty"`
	Targets  []TargetSpec `yaml:"targets" toml:"targets" json:"targets"`
}

// OptionSpec holds option values as written in a plan. Empty strings and
// nil pointers mean "not set" so that defaults can be layered.
type OptionSpec struct {
	Runtime           string     `yaml:"runtime,omitempty" toml:"runtime,omitempty" json:"runtime,omitempty"`
	Framework         string     `yaml:"framework,omitempty" toml:"framework,omitempty" json:"framework,omitempty"`
	AOT               *bool      `yaml:"aot,omitempty" toml:"aot,omitempty" json:"aot,omitempty"`
	Clean             *bool      `yaml:"clean,omitempty" toml:"clean,omitempty" json:"clean,omitempty"`
	PackageCache      string     `yaml:"package_cache,omitempty" toml:"package_cache,omitempty" json:"package_cache,omitempty"`
	Feeds             []FeedSpec `yaml:"feeds,omitempty" toml:"feeds,omitempty" json:"feeds,omitempty"`
	ILCompilerVersion string     `yaml:"il_compiler_version,omitempty" toml:"il_compiler_version,omitempty" json:"il_compiler_version,omitempty"`
	HostRID           string     `yaml:"host_rid,omitempty" toml:"host_rid,omitempty" json:"host_rid,omitempty"`
	LinkerArgs        []string   `yaml:"linker_args,omitempty" toml:"linker_args,omitempty" json:"linker_args,omitempty"`
	Emcc              string     `yaml:"emcc,omitempty" toml:"emcc,omitempty" json:"emcc,omitempty"`
}

// FeedSpec is one package feed entry.
type FeedSpec struct {
	Key string `yaml:"key" toml:"key" json:"key"`
	URL string `yaml:"url" toml:"url" json:"url"`
}

// TargetSpec is one component to generate.
type TargetSpec struct {
	Name       string `yaml:"name" toml:"name" json:"name"`
	World      string `yaml:"world" toml:"world" json:"world"`
	OutputDir  string `yaml:"output_dir" toml:"output_dir" json:"output_dir"`
	OptionSpec `yaml:",inline"`
}
