package plan

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/options"
)

func testPath(name string) string {
	return filepath.Join("testdata", name)
}

func TestValidate_SchemaCompiles(t *testing.T) {
	schema, err := getSchema()
	require.NoError(t, err)
	require.NotNil(t, schema)
}

func TestValidateFile_ValidPlans(t *testing.T) {
	for _, file := range []string{"valid.yaml", "valid.toml", "duplicate-output.yaml", "conflicting-options.yaml"} {
		t.Run(file, func(t *testing.T) {
			result, err := ValidateFile(testPath(file))
			require.NoError(t, err)
			assert.True(t, result.Valid, "issues: %v", result.Issues)
		})
	}
}

func TestValidateFile_InvalidPlans(t *testing.T) {
	tests := []struct {
		file string
		desc string
	}{
		{"invalid-missing-world.yaml", "missing required world"},
		{"invalid-bad-runtime.yaml", "runtime outside enum"},
		{"invalid-unknown-key.toml", "unknown target key"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(testPath(tt.file))
			require.NoError(t, err)
			assert.False(t, result.Valid, tt.desc)
			require.NotEmpty(t, result.Issues, tt.desc)
			for _, issue := range result.Issues {
				assert.NotEmpty(t, issue.Message)
			}
		})
	}
}

func TestValidateFile_IssuesNamePlanFields(t *testing.T) {
	tests := []struct {
		file    string
		field   string
		keyword string
	}{
		{"invalid-missing-world.yaml", "targets[0].world", "required"},
		{"invalid-bad-runtime.yaml", "targets[0].runtime", "enum"},
		{"invalid-unknown-key.toml", "targets[0].colour", "unevaluatedProperties"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			result, err := ValidateFile(testPath(tt.file))
			require.NoError(t, err)
			require.Len(t, result.Issues, 1, "issues: %v", result.Issues)

			issue := result.Issues[0]
			assert.Equal(t, tt.field, issue.Field)
			assert.Equal(t, tt.keyword, issue.Keyword)
			assert.Equal(t, tt.field+": "+issue.Message, issue.String())
		})
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "", fieldName(nil))
	assert.Equal(t, "targets", fieldName([]string{"targets"}))
	assert.Equal(t, "targets[2].feeds[0].url", fieldName([]string{"targets", "2", "feeds", "0", "url"}))
	assert.Equal(t, "defaults.aot", fieldName([]string{"defaults", "aot"}))
}

func TestValidateFile_InvalidYAML(t *testing.T) {
	_, err := ValidateFile(testPath("invalid-not-yaml.yaml"))
	require.Error(t, err)
}

func TestValidateFile_NotFound(t *testing.T) {
	_, err := ValidateFile(testPath("nonexistent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestDetectFormat(t *testing.T) {
	f, err := DetectFormat("plan.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = DetectFormat("dir/plan.toml")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = DetectFormat("plan.json")
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedCombination))
}

func TestLoad_YAML(t *testing.T) {
	p, err := Load(testPath("valid.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 1, p.Version)
	require.Len(t, p.Targets, 2)
	require.NotNil(t, p.Defaults.AOT)
	assert.True(t, *p.Defaults.AOT)
	assert.Equal(t, "my-world", p.Targets[0].World)
	assert.Equal(t, "mono", p.Targets[1].Runtime)
	require.NotNil(t, p.Targets[1].AOT)
	assert.False(t, *p.Targets[1].AOT)
}

func TestLoad_TOML(t *testing.T) {
	p, err := Load(testPath("valid.toml"))
	require.NoError(t, err)

	require.Len(t, p.Targets, 2)
	assert.Equal(t, ".nuget", p.Defaults.PackageCache)
	assert.Equal(t, "linux-x64", p.Targets[1].HostRID)
	assert.Equal(t, []string{"-Wl,--no-entry"}, p.Targets[1].LinkerArgs)
}

func TestLoad_SchemaViolationCarriesHints(t *testing.T) {
	_, err := Load(testPath("invalid-missing-world.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedCombination))
	assert.Contains(t, errors.FlattenHints(err), "targets[0].world: required key is missing")
}

func TestResolve_LayersDefaults(t *testing.T) {
	p, err := Load(testPath("valid.yaml"))
	require.NoError(t, err)

	jobs, err := p.Resolve("/work", OptionSpec{PackageCache: ".cache"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, filepath.Join("/work", "out/component"), first.Target.OutputDir)
	assert.Equal(t, "MyComponent", first.Target.Name.Camel)
	assert.Equal(t, options.NativeAOT, first.Options.Runtime())
	assert.True(t, first.Options.AOT())
	assert.True(t, first.Options.CleanTargets())
	assert.Equal(t, ".cache", first.Options.PackageCache())

	second := jobs[1]
	assert.Equal(t, options.ManagedRuntime, second.Options.Runtime())
	assert.False(t, second.Options.AOT())
	assert.False(t, second.Options.CleanTargets())
	assert.Equal(t, "net9.0", second.Options.Framework())
}

func TestResolve_FallbackFrameworkFollowsRuntime(t *testing.T) {
	p, err := Load(testPath("valid.yaml"))
	require.NoError(t, err)

	jobs, err := p.Resolve("/work", OptionSpec{Runtime: "nativeaot", Framework: "net8.0"})
	require.NoError(t, err)
	assert.Equal(t, "net8.0", jobs[0].Options.Framework())
	assert.Equal(t, "net9.0", jobs[1].Options.Framework())
}

func TestResolve_AbsoluteOutputDirKept(t *testing.T) {
	abs, err := filepath.Abs("out")
	require.NoError(t, err)
	p := &Plan{Targets: []TargetSpec{{Name: "a", World: "w", OutputDir: abs}}}

	jobs, err := p.Resolve("/elsewhere", OptionSpec{})
	require.NoError(t, err)
	assert.Equal(t, abs, jobs[0].Target.OutputDir)
}

func TestResolve_DuplicateOutputDir(t *testing.T) {
	p, err := Load(testPath("duplicate-output.yaml"))
	require.NoError(t, err)

	_, err = p.Resolve("/work", OptionSpec{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedCombination))
	assert.Contains(t, err.Error(), `"first"`)
	assert.Contains(t, err.Error(), `"second"`)
}

func TestResolve_OptionConflictNamesTarget(t *testing.T) {
	p, err := Load(testPath("conflicting-options.yaml"))
	require.NoError(t, err)

	_, err = p.Resolve("/work", OptionSpec{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedCombination))
	assert.Contains(t, err.Error(), `target "managed"`)
	assert.Contains(t, err.Error(), "host_rid")
}

func TestResolve_InvalidIdentifier(t *testing.T) {
	p := &Plan{Targets: []TargetSpec{{Name: "---", World: "w", OutputDir: "out"}}}

	_, err := p.Resolve("/work", OptionSpec{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidIdentifier))
}

func TestLayer(t *testing.T) {
	yes, no := true, false
	base := OptionSpec{Runtime: "mono", AOT: &yes, PackageCache: "a"}
	top := OptionSpec{AOT: &no, Emcc: "emcc"}

	got := layer(base, top)
	assert.Equal(t, "mono", got.Runtime)
	assert.False(t, *got.AOT)
	assert.Equal(t, "a", got.PackageCache)
	assert.Equal(t, "emcc", got.Emcc)
}

func TestValidate_FailedOptionDoesNotFlagSiblingsUnknown(t *testing.T) {
	data := []byte(`targets:
  - name: a
    world: w
    output_dir: out
    aot: true
    feeds:
      - key: nuget
        url: ""
`)
	result, err := Validate(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, result.Issues, 1, "issues: %v", result.Issues)
	assert.Equal(t, "targets[0].feeds[0].url", result.Issues[0].Field)
}
