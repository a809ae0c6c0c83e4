package gsd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// Mapping pairs a subtree of the GSD bundle with its place in the skill.
// Both paths are slash separated and relative.
type Mapping struct {
	Source string
	Target string
}

// DefaultMappings is the complete migration plan, applied in order.
var DefaultMappings = []Mapping{
	{Source: "commands/gsd", Target: "references/commands"},
	{Source: "get-shit-done/references", Target: "references/docs"},
	{Source: "get-shit-done/workflows", Target: "references/workflows"},
	{Source: "agents", Target: "references/agents"},
	{Source: "get-shit-done/templates", Target: "assets/templates"},
	{Source: "get-shit-done/bin", Target: "bin"},
}

// MappingStatus is the outcome of one mapping.
type MappingStatus string

// Mapping outcomes
const (
	MappingCopied  MappingStatus = "copied"
	MappingSkipped MappingStatus = "skipped"
	MappingFailed  MappingStatus = "failed"
)

// MappingResult records what happened to a single mapping.
type MappingResult struct {
	Mapping
	Status MappingStatus
	Files  int
}

// MigrationReport lists a result per mapping, in table order.
type MigrationReport struct {
	Results []MappingResult
}

// Files returns the number of files copied across all mappings.
func (r *MigrationReport) Files() int {
	total := 0
	for _, res := range r.Results {
		total += res.Files
	}
	return total
}

// Skipped returns the mappings whose source did not exist.
func (r *MigrationReport) Skipped() []Mapping {
	var skipped []Mapping
	for _, res := range r.Results {
		if res.Status == MappingSkipped {
			skipped = append(skipped, res.Mapping)
		}
	}
	return skipped
}

// Migrate copies each mapped subtree from sourceDir into targetDir. Existing
// files at the destination are overwritten. A missing source is logged and
// skipped without touching the target. Copy failures are logged, collected
// and returned together once every mapping has been attempted; the report is
// always non-nil.
func Migrate(ctx context.Context, sourceDir, targetDir string, mappings []Mapping) (*MigrationReport, error) {
	log := logger.G(ctx)
	log.WithField("source", sourceDir).WithField("target", targetDir).Info("starting migration")

	report := &MigrationReport{}
	var result *multierror.Error

	for _, m := range mappings {
		srcPath := filepath.Join(sourceDir, filepath.FromSlash(m.Source))
		tgtPath := filepath.Join(targetDir, filepath.FromSlash(m.Target))
		entry := log.WithField("mapping", m.Source+" -> "+m.Target)

		if _, err := os.Stat(srcPath); err != nil {
			entry.WithField("path", srcPath).Warn("source not found, skipping")
			report.Results = append(report.Results, MappingResult{Mapping: m, Status: MappingSkipped})
			continue
		}

		entry.Info("migrating")
		files, err := migrateOne(srcPath, tgtPath)
		if err != nil {
			err = errors.Wrapf(err, "failed to migrate %s", m.Source)
			entry.WithError(err).Warn("migration incomplete")
			result = multierror.Append(result, err)
			report.Results = append(report.Results, MappingResult{Mapping: m, Status: MappingFailed, Files: files})
			continue
		}

		report.Results = append(report.Results, MappingResult{Mapping: m, Status: MappingCopied, Files: files})
	}

	return report, result.ErrorOrNil()
}

func migrateOne(srcPath, tgtPath string) (int, error) {
	if err := os.MkdirAll(tgtPath, 0o755); err != nil {
		return 0, errors.Wrap(err, "failed to create target directory")
	}

	entries, err := os.ReadDir(srcPath)
	if err != nil {
		return 0, errors.Wrap(err, "failed to read source directory")
	}

	files := 0
	for _, entry := range entries {
		src := filepath.Join(srcPath, entry.Name())
		dst := filepath.Join(tgtPath, entry.Name())

		info, err := os.Stat(src)
		if err != nil {
			return files, err
		}

		if info.IsDir() {
			n, err := mergeDir(src, dst)
			files += n
			if err != nil {
				return files, err
			}
			continue
		}

		if err := copyFile(src, dst, info); err != nil {
			return files, err
		}
		files++
	}

	return files, nil
}

// mergeDir copies src into dst recursively, creating dst as needed and
// overwriting files that already exist there. Directory mode and times are
// applied after the children so read-only source directories still copy.
func mergeDir(src, dst string) (int, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}

	files := 0
	for _, entry := range entries {
		s := filepath.Join(src, entry.Name())
		d := filepath.Join(dst, entry.Name())

		info, err := os.Stat(s)
		if err != nil {
			return files, err
		}

		if info.IsDir() {
			n, err := mergeDir(s, d)
			files += n
			if err != nil {
				return files, err
			}
			continue
		}

		if err := copyFile(s, d, info); err != nil {
			return files, err
		}
		files++
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return files, err
	}
	return files, os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}

// copyFile copies src over dst, keeping the source mode and modification time.
func copyFile(src, dst string, srcInfo os.FileInfo) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	// read-only destinations from a previous merge cannot be truncated in place
	if info, err := os.Lstat(dst); err == nil && !info.IsDir() {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime())
}
