package emit

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ayakoakasaka/csprojgen/internal/errors"
	"github.com/ayakoakasaka/csprojgen/internal/scaffold"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Emitter writes artifacts through an afero filesystem.
type Emitter struct {
	fs  afero.Fs
	log *zap.Logger
}

// Result describes a committed batch.
type Result struct {
	Dir   string
	Files []string
}

// New returns an Emitter over fsys. A nil fsys means the OS filesystem and a
// nil log discards output.
func New(fsys afero.Fs, log *zap.Logger) *Emitter {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{fs: fsys, log: log}
}

// commit records how to undo one written artifact.
type commit struct {
	rel    string
	path   string
	backup string // copy of the previous content, empty if the file was new
}

// Emit writes artifacts under dir. On failure the returned error has code
// PARTIAL_WRITE_FAILURE naming the artifact that failed, or IO_FAILURE if
// the directory itself could not be prepared.
func (e *Emitter) Emit(dir string, artifacts []scaffold.Artifact) (*Result, error) {
	for _, a := range artifacts {
		if !filepath.IsLocal(a.Path) {
			return nil, errors.IOFailure("validate artifact path", a.Path,
				errors.Newf("artifact path %q escapes the output directory", a.Path))
		}
	}

	createdDir, err := e.ensureDir(dir)
	if err != nil {
		return nil, err
	}

	var done []commit
	for _, a := range artifacts {
		c, err := e.write(dir, a)
		if err != nil {
			rolledBack := e.rollback(done)
			if createdDir {
				e.removeIfEmpty(dir)
			}
			e.log.Warn("artifact batch failed",
				zap.String("dir", dir),
				zap.String("artifact", a.Path),
				zap.Strings("rolled_back", rolledBack),
				zap.Error(err))
			return nil, errors.PartialWriteFailure(a.Path, rolledBack, err)
		}
		done = append(done, c)
	}

	result := &Result{Dir: dir}
	for _, c := range done {
		if c.backup != "" {
			if err := e.fs.Remove(c.backup); err != nil {
				e.log.Warn("removing backup", zap.String("path", c.backup), zap.Error(err))
			}
		}
		result.Files = append(result.Files, c.rel)
	}
	e.syncDir(dir)

	e.log.Debug("artifact batch committed", zap.String("dir", dir), zap.Strings("files", result.Files))
	return result, nil
}

func (e *Emitter) ensureDir(dir string) (bool, error) {
	info, err := e.fs.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, errors.IOFailure("create directory", dir, errors.Newf("%s is not a directory", dir))
		}
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, errors.IOFailure("stat directory", dir, err)
	}
	if err := e.fs.MkdirAll(dir, dirPerm); err != nil {
		return false, errors.IOFailure("create directory", dir, err)
	}
	return true, nil
}

// write stages a into a temp file next to its destination and renames it
// into place. Any existing file is first copied to a backup for rollback.
func (e *Emitter) write(dir string, a scaffold.Artifact) (commit, error) {
	final := filepath.Join(dir, a.Path)
	parent := filepath.Dir(final)
	if err := e.fs.MkdirAll(parent, dirPerm); err != nil {
		return commit{}, errors.IOFailure("create directory", parent, err)
	}

	tmp, err := afero.TempFile(e.fs, parent, "."+filepath.Base(final)+".tmp-*")
	if err != nil {
		return commit{}, errors.IOFailure("create temp file", final, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = e.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(a.Content); err != nil {
		return commit{}, errors.IOFailure("write", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return commit{}, errors.IOFailure("sync", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return commit{}, errors.IOFailure("close", tmpName, err)
	}
	if err := e.fs.Chmod(tmpName, filePerm); err != nil {
		return commit{}, errors.IOFailure("chmod", tmpName, err)
	}

	c := commit{rel: a.Path, path: final}
	if info, err := e.fs.Stat(final); err == nil {
		if info.IsDir() {
			return commit{}, errors.IOFailure("replace", final, errors.Newf("%s is a directory", final))
		}
		c.backup = tmpName + ".bak"
		if err := e.backup(final, c.backup, info.Mode().Perm()); err != nil {
			return commit{}, err
		}
	}

	// The destination is replaced in one rename and never goes missing.
	if err := e.fs.Rename(tmpName, final); err != nil {
		if c.backup != "" {
			_ = e.fs.Remove(c.backup)
		}
		return commit{}, errors.IOFailure("rename", final, err)
	}
	committed = true

	e.log.Debug("artifact written",
		zap.String("artifact", a.Path),
		zap.Int("bytes", len(a.Content)),
		zap.Bool("replaced", c.backup != ""))
	return c, nil
}

// backup copies the file at path to dst and syncs it.
func (e *Emitter) backup(path, dst string, perm os.FileMode) error {
	data, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return errors.IOFailure("back up", path, err)
	}
	f, err := e.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return errors.IOFailure("back up", dst, err)
	}
	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Sync()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = e.fs.Remove(dst)
		return errors.IOFailure("back up", dst, werr)
	}
	return nil
}

// rollback undoes commits in reverse order and returns the artifacts it
// restored or removed. Failures are logged and skipped.
func (e *Emitter) rollback(done []commit) []string {
	var undone []string
	for i := len(done) - 1; i >= 0; i-- {
		c := done[i]
		var err error
		if c.backup != "" {
			err = e.fs.Rename(c.backup, c.path)
		} else {
			err = e.fs.Remove(c.path)
		}
		if err != nil {
			e.log.Error("rollback failed", zap.String("artifact", c.rel), zap.Error(err))
			continue
		}
		undone = append(undone, c.rel)
	}
	return undone
}

func (e *Emitter) removeIfEmpty(dir string) {
	entries, err := afero.ReadDir(e.fs, dir)
	if err != nil || len(entries) > 0 {
		return
	}
	_ = e.fs.Remove(dir)
}

// syncDir flushes the directory entry so renames survive a crash.
// Not every platform allows syncing a directory, so failures are ignored.
func (e *Emitter) syncDir(dir string) {
	f, err := e.fs.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		e.log.Debug("directory sync skipped", zap.String("dir", dir), zap.Error(err))
	}
}
