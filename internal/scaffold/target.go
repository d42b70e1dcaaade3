package scaffold

import (
	"strings"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/ident"
)

// BuildTarget names the component being generated and where its files go.
type BuildTarget struct {
	Name      ident.Identifier
	World     ident.Identifier
	OutputDir string
}

// NewBuildTarget normalizes name and world and checks outputDir is set.
func NewBuildTarget(name, world, outputDir string) (BuildTarget, error) {
	n, err := ident.Normalize("name", name)
	if err != nil {
		return BuildTarget{}, err
	}
	w, err := ident.Normalize("world", world)
	if err != nil {
		return BuildTarget{}, err
	}
	if strings.TrimSpace(outputDir) == "" {
		return BuildTarget{}, errors.InvalidIdentifier("output_dir", "")
	}
	return BuildTarget{Name: n, World: w, OutputDir: outputDir}, nil
}

// Artifact is one generated file, relative to the target's output directory.
type Artifact struct {
	Path    string
	Content []byte
}
