// Package plan loads multi-target generation plans. A plan is a YAML or TOML
// document listing components to generate, with optional shared defaults.
// Plans are validated against an embedded JSON Schema before decoding, and
// resolved into BuildTarget/OptionSet pairs whose output directories must be
// distinct.
package plan
