package scaffold

import (
	"bytes"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/options"
)

// Assemble renders every document whose predicate holds for o.
// Artifacts are returned in Documents order.
func Assemble(t BuildTarget, o options.OptionSet) ([]Artifact, error) {
	if !o.Built() {
		return nil, errors.UnsupportedCombination("options", "option set was not built with options.New")
	}
	if t.Name.Camel == "" || t.World.Camel == "" {
		return nil, errors.InvalidIdentifier("target", "")
	}

	data := renderData{Target: t, Options: o}
	var artifacts []Artifact
	for _, doc := range Documents {
		if !doc.When(o) {
			continue
		}
		var buf bytes.Buffer
		for _, f := range doc.Fragments {
			if !f.included(o) {
				continue
			}
			if err := renderInto(&buf, f.Name, data); err != nil {
				return nil, errors.Wrapf(err, "assembling %s", doc.Name)
			}
		}
		artifacts = append(artifacts, Artifact{Path: doc.Path(t), Content: buf.Bytes()})
	}
	return artifacts, nil
}

// IncludedFragments returns, per document path, the fragment names that
// Assemble would render for t and o.
func IncludedFragments(t BuildTarget, o options.OptionSet) map[string][]string {
	out := make(map[string][]string)
	for _, doc := range Documents {
		if !doc.When(o) {
			continue
		}
		var names []string
		for _, f := range doc.Fragments {
			if f.included(o) {
				names = append(names, f.Name)
			}
		}
		out[doc.Path(t)] = names
	}
	return out
}
