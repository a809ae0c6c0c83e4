// Package scaffold installs the gsd-converter skill into a project so that
// Antigravity knows how to run the converter.
package scaffold

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/gsd-antigravity/gsd-converter/pkg/skills"
	"github.com/pkg/errors"
)

// SkillName is the directory the converter skill is installed under.
const SkillName = "gsd-converter"

const embedRoot = "converter"

// Skill files
//
//go:embed converter
var SkillFS embed.FS

// SkillDir returns where Install writes the converter skill for projectDir.
func SkillDir(projectDir string) string {
	return filepath.Join(projectDir, filepath.FromSlash(skills.DefaultSkillsDir), SkillName)
}

// TemplatePath returns the location of the SKILL.md template installed
// under skillsDir.
func TemplatePath(skillsDir string) string {
	return filepath.Join(skillsDir, SkillName, "assets", "gsd_skill_template.md")
}

// Install copies the embedded converter skill into projectDir, creating
// directories as needed and overwriting existing files. It returns the
// written paths in walk order.
func Install(ctx context.Context, projectDir string) ([]string, error) {
	dest := SkillDir(projectDir)
	log := logger.G(ctx).WithField("path", dest)
	log.Info("installing gsd-converter skill")

	var written []string
	err := fs.WalkDir(SkillFS, embedRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := p[len(embedRoot):]
		target := filepath.Join(dest, filepath.FromSlash(rel))

		if d.IsDir() {
			return errors.Wrapf(os.MkdirAll(target, 0o755), "failed to create %s", target)
		}

		data, err := SkillFS.ReadFile(p)
		if err != nil {
			return errors.Wrapf(err, "failed to read embedded %s", p)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", target)
		}

		log.WithField("file", rel).Debug("installed")
		written = append(written, target)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("files", len(written)).Info("gsd-converter skill installed")
	return written, nil
}
