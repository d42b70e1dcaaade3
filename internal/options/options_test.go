package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
)

func TestNewDefaults(t *testing.T) {
	o, err := New(NativeAOT)
	require.NoError(t, err)

	assert.True(t, o.Built())
	assert.Equal(t, NativeAOT, o.Runtime())
	assert.False(t, o.AOT())
	assert.False(t, o.CleanTargets())
	assert.Equal(t, "net8.0", o.Framework())
	assert.Equal(t, ".packages", o.PackageCache())
	assert.Empty(t, o.Feeds())
	assert.Empty(t, o.LinkerArgs())
	assert.Empty(t, o.ILCompilerVersion())
	assert.False(t, o.NativeAOTEnabled())
}

func TestNewNativeAOTWithAOT(t *testing.T) {
	o, err := New(NativeAOT, WithAOT(true), WithCleanTargets(true))
	require.NoError(t, err)

	assert.True(t, o.NativeAOTEnabled())
	assert.True(t, o.CleanTargets())
	assert.Equal(t, DefaultILCompilerVersion, o.ILCompilerVersion())
	assert.Equal(t, DefaultHostRID, o.HostRID())
	assert.Equal(t, DefaultEmccCommand, o.EmccCommand())
	assert.Equal(t, []string{"-Wl,--export,_initialize", "-Wl,--no-entry", "-mexec-model=reactor"}, o.LinkerArgs())

	feeds := o.Feeds()
	require.Len(t, feeds, 2)
	assert.Equal(t, "nuget", feeds[0].Key)
	assert.Equal(t, "dotnet-experimental", feeds[1].Key)
}

func TestNewManagedRuntime(t *testing.T) {
	o, err := New(ManagedRuntime, WithAOT(true))
	require.NoError(t, err)

	assert.Equal(t, "net9.0", o.Framework())
	assert.False(t, o.NativeAOTEnabled())
	assert.Empty(t, o.LinkerArgs())
	assert.Empty(t, o.ILCompilerVersion())

	feeds := o.Feeds()
	require.Len(t, feeds, 2)
	assert.Equal(t, "dotnet9", feeds[1].Key)
}

func TestNewOverrides(t *testing.T) {
	o, err := New(NativeAOT,
		WithAOT(true),
		WithFramework("net9.0"),
		WithPackageCache(".nuget-cache"),
		WithFeeds(Feed{Key: "local", URL: "/srv/packages"}),
		WithILCompilerVersion("10.0.0-preview.1"),
		WithHostRID("linux-x64"),
		WithLinkerArgs("-Wl,--no-entry"),
		WithEmccCommand("emcc"),
	)
	require.NoError(t, err)

	assert.Equal(t, "net9.0", o.Framework())
	assert.Equal(t, ".nuget-cache", o.PackageCache())
	assert.Equal(t, []Feed{{Key: "local", URL: "/srv/packages"}}, o.Feeds())
	assert.Equal(t, "10.0.0-preview.1", o.ILCompilerVersion())
	assert.Equal(t, "linux-x64", o.HostRID())
	assert.Equal(t, []string{"-Wl,--no-entry"}, o.LinkerArgs())
	assert.Equal(t, "emcc", o.EmccCommand())
}

func TestNewUnsupportedCombinations(t *testing.T) {
	tests := []struct {
		name    string
		runtime Runtime
		opts    []Option
		field   string
	}{
		{"linker args on mono", ManagedRuntime, []Option{WithAOT(true), WithLinkerArgs("-x")}, "linker_args"},
		{"il compiler on mono", ManagedRuntime, []Option{WithAOT(true), WithILCompilerVersion("9.0.0")}, "il_compiler_version"},
		{"emcc on mono", ManagedRuntime, []Option{WithEmccCommand("emcc")}, "emcc"},
		{"host rid on mono", ManagedRuntime, []Option{WithHostRID("linux-x64")}, "host_rid"},
		{"linker args without aot", NativeAOT, []Option{WithLinkerArgs("-x")}, "linker_args"},
		{"feeds without aot", NativeAOT, []Option{WithFeeds(Feed{Key: "a", URL: "b"})}, "feeds"},
		{"framework too old for nativeaot", NativeAOT, []Option{WithFramework("net7.0")}, "framework"},
		{"framework too old for mono", ManagedRuntime, []Option{WithFramework("net8.0")}, "framework"},
		{"malformed framework", NativeAOT, []Option{WithFramework("netcoreapp3.1")}, "framework"},
		{"bad package version", NativeAOT, []Option{WithAOT(true), WithILCompilerVersion("nine")}, "il_compiler_version"},
		{"empty feeds", NativeAOT, []Option{WithAOT(true), WithFeeds()}, "feeds"},
		{"duplicate feeds", NativeAOT, []Option{WithAOT(true), WithFeeds(Feed{"a", "x"}, Feed{"a", "y"})}, "feeds"},
		{"feed without url", NativeAOT, []Option{WithAOT(true), WithFeeds(Feed{Key: "a"})}, "feeds"},
		{"empty package cache", NativeAOT, []Option{WithPackageCache(" ")}, "package_cache"},
		{"empty linker arg", NativeAOT, []Option{WithAOT(true), WithLinkerArgs("")}, "linker_args"},
		{"empty host rid", NativeAOT, []Option{WithAOT(true), WithHostRID("")}, "host_rid"},
		{"unknown runtime", Runtime(7), nil, "runtime"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := New(tt.runtime, tt.opts...)
			require.Error(t, err)
			assert.False(t, o.Built())
			assert.True(t, errors.HasCode(err, errors.CodeUnsupportedCombination), "got %v", err)

			var e *errors.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	o, err := New(NativeAOT, WithAOT(true))
	require.NoError(t, err)

	args := o.LinkerArgs()
	args[0] = "mutated"
	feeds := o.Feeds()
	feeds[0].Key = "mutated"

	assert.Equal(t, "-Wl,--export,_initialize", o.LinkerArgs()[0])
	assert.Equal(t, "nuget", o.Feeds()[0].Key)
}

func TestParseRuntime(t *testing.T) {
	tests := []struct {
		in   string
		want Runtime
	}{
		{"nativeaot", NativeAOT},
		{"LLVM", NativeAOT},
		{"", NativeAOT},
		{"mono", ManagedRuntime},
		{" Managed ", ManagedRuntime},
	}
	for _, tt := range tests {
		got, err := ParseRuntime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseRuntime("coreclr")
	assert.True(t, errors.HasCode(err, errors.CodeUnsupportedCombination))
}

func TestRuntimeString(t *testing.T) {
	assert.Equal(t, "nativeaot", NativeAOT.String())
	assert.Equal(t, "mono", ManagedRuntime.String())
	assert.Equal(t, "unknown", Runtime(9).String())
}
