// Package generator ties assembly and emission together: it renders the
// artifacts for one BuildTarget and writes them as a single batch, or
// compares them against what is already on disk.
package generator

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ayakoakasaka/csprojgen/internal/emit"
	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/options"
	"github.com/ayakoakasaka/csprojgen/internal/scaffold"
)

// Generator produces project files on a filesystem.
type Generator struct {
	fs      afero.Fs
	log     *zap.Logger
	emitter *emit.Emitter
}

// New returns a Generator. Nil arguments select the OS filesystem and a
// discarding logger.
func New(fsys afero.Fs, log *zap.Logger) *Generator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{fs: fsys, log: log, emitter: emit.New(fsys, log)}
}

// Generate assembles t with o and writes every artifact into t.OutputDir.
func (g *Generator) Generate(t scaffold.BuildTarget, o options.OptionSet) (*emit.Result, error) {
	log := g.log.With(
		zap.String("name", t.Name.Raw),
		zap.String("world", t.World.Raw),
		zap.String("dir", t.OutputDir),
		zap.Stringer("runtime", o.Runtime()),
		zap.Bool("aot", o.AOT()),
		zap.Bool("clean", o.CleanTargets()))

	artifacts, err := scaffold.Assemble(t, o)
	if err != nil {
		return nil, err
	}
	result, err := g.emitter.Emit(t.OutputDir, artifacts)
	if err != nil {
		return nil, err
	}
	log.Info("generated project", zap.Strings("files", result.Files))
	return result, nil
}

// Status classifies an artifact relative to the file on disk.
type Status string

const (
	StatusNew       Status = "new"
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
)

// FileDiff is the comparison of one artifact with its on-disk counterpart.
type FileDiff struct {
	Path    string
	Status  Status
	Unified string // empty when unchanged
}

// Diff assembles t with o and compares each artifact to the existing file
// without writing anything.
func (g *Generator) Diff(t scaffold.BuildTarget, o options.OptionSet) ([]FileDiff, error) {
	artifacts, err := scaffold.Assemble(t, o)
	if err != nil {
		return nil, err
	}

	diffs := make([]FileDiff, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(t.OutputDir, a.Path)
		d := FileDiff{Path: a.Path, Status: StatusUnchanged}
		old, err := afero.ReadFile(g.fs, path)
		switch {
		case os.IsNotExist(err):
			d.Status = StatusNew
		case err != nil:
			return nil, errors.IOFailure("read", path, err)
		case !bytes.Equal(old, a.Content):
			d.Status = StatusChanged
		}
		if d.Status != StatusUnchanged {
			d.Unified, err = difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
				A:        difflib.SplitLines(string(old)),
				B:        difflib.SplitLines(string(a.Content)),
				FromFile: "a/" + filepath.ToSlash(a.Path),
				ToFile:   "b/" + filepath.ToSlash(a.Path),
				Context:  3,
			})
			if err != nil {
				return nil, errors.Wrapf(err, "diffing %s", a.Path)
			}
		}
		diffs = append(diffs, d)
	}
	return diffs, nil
}
