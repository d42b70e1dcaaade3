package options

import (
	"strings"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
)

// Runtime selects the .NET flavor the generated project targets.
type Runtime int

const (
	// NativeAOT compiles through NativeAOT-LLVM into a native wasm module.
	NativeAOT Runtime = iota
	// ManagedRuntime bundles the Mono runtime for wasi-wasm.
	ManagedRuntime
)

func (r Runtime) String() string {
	switch r {
	case NativeAOT:
		return "nativeaot"
	case ManagedRuntime:
		return "mono"
	default:
		return "unknown"
	}
}

// DefaultFramework returns the target framework moniker used when none is given.
func (r Runtime) DefaultFramework() string {
	if r == ManagedRuntime {
		return "net9.0"
	}
	return "net8.0"
}

// minFramework is the oldest framework version the runtime's toolchain supports.
func (r Runtime) minFramework() string {
	if r == ManagedRuntime {
		return "9.0"
	}
	return "8.0"
}

// ParseRuntime accepts "nativeaot" (alias "llvm") and "mono" (alias "managed").
func ParseRuntime(s string) (Runtime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nativeaot", "native-aot", "llvm":
		return NativeAOT, nil
	case "mono", "managed":
		return ManagedRuntime, nil
	}
	return 0, errors.UnsupportedCombination("runtime", "unknown runtime %q (want nativeaot or mono)", s)
}
