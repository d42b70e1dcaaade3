package branding

import "testing"

func TestEmbeddedValues(t *testing.T) {
	if got := CLIName(); got != "csprojgen" {
		t.Errorf("CLIName() = %q, want %q", got, "csprojgen")
	}
	if got := HomeDir(); got != ".csprojgen" {
		t.Errorf("HomeDir() = %q, want %q", got, ".csprojgen")
	}
	if got := EnvVar("log_json"); got != "CSPROJGEN_LOG_JSON" {
		t.Errorf("EnvVar() = %q, want %q", got, "CSPROJGEN_LOG_JSON")
	}
}
