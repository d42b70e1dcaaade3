package plan

import (
	"bytes"

	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
)

// Load reads, validates, and decodes the plan at path.
func Load(path string) (*Plan, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "plan %s", path)
	}
	return p, nil
}

// Parse validates data against the plan schema and decodes it. Schema
// violations are reported as one UNSUPPORTED_COMBINATION error with a
// hint per issue.
func Parse(data []byte, format Format) (*Plan, error) {
	result, err := Validate(data, format)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		var invalid error = errors.UnsupportedCombination("plan",
			"plan does not match schema (%d issue(s))", len(result.Issues))
		for _, issue := range result.Issues {
			invalid = errors.WithHint(invalid, issue.String())
		}
		return nil, invalid
	}

	var p Plan
	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
			return nil, errors.Wrap(err, "decoding TOML plan")
		}
	default:
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, errors.Wrap(err, "decoding YAML plan")
		}
	}
	return &p, nil
}
