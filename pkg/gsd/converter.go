package gsd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/gsd-antigravity/gsd-converter/pkg/scaffold"
	"github.com/gsd-antigravity/gsd-converter/pkg/skills"
	"github.com/gsd-antigravity/gsd-converter/pkg/telemetry"
	"github.com/gsd-antigravity/gsd-converter/pkg/toolsopt"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultSkillName is used when no skill name is given.
	DefaultSkillName = "gsd"
	// DefaultSourceDir is where the installer lays down the GSD bundle.
	DefaultSourceDir = ".claude"
)

// Converter runs the full conversion of the bundle in its source directory
// into <skillsDir>/<skillName>.
type Converter struct {
	skillName     string
	sourceDir     string
	skillsDir     string
	templatePaths []string
	installer     Installer
	mappings      []Mapping
	optimizeTools bool
	now           func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithSkillName sets the name of the skill directory to produce.
func WithSkillName(name string) Option {
	return func(c *Converter) {
		c.skillName = name
	}
}

// WithSourceDir sets the directory the installer populates.
func WithSourceDir(dir string) Option {
	return func(c *Converter) {
		c.sourceDir = dir
	}
}

// WithSkillsDir sets the parent directory of the skill.
func WithSkillsDir(dir string) Option {
	return func(c *Converter) {
		c.skillsDir = dir
	}
}

// WithTemplatePaths sets the SKILL.md template candidates, in lookup order.
func WithTemplatePaths(paths ...string) Option {
	return func(c *Converter) {
		c.templatePaths = paths
	}
}

// WithInstaller replaces the npx installer.
func WithInstaller(installer Installer) Option {
	return func(c *Converter) {
		c.installer = installer
	}
}

// WithMappings replaces DefaultMappings.
func WithMappings(mappings []Mapping) Option {
	return func(c *Converter) {
		c.mappings = mappings
	}
}

// WithOptimizeTools enables the gsd-tools.cjs optimizer after migration.
func WithOptimizeTools(enabled bool) Option {
	return func(c *Converter) {
		c.optimizeTools = enabled
	}
}

// WithClock sets the time source used for the descriptor date.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// NewConverter creates a converter with the given options applied over the
// defaults. The skill name must be a single path element.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		skillName: DefaultSkillName,
		sourceDir: DefaultSourceDir,
		skillsDir: skills.DefaultSkillsDir,
		mappings:  DefaultMappings,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := ValidateSkillName(c.skillName); err != nil {
		return nil, err
	}
	if c.installer == nil {
		c.installer = NewNpxInstaller(WithWorkDir(filepath.Dir(c.sourceDir)))
	}

	return c, nil
}

// ValidateSkillName rejects names that would escape the skills directory,
// replace the converter skill itself, or be rewritten by the brand rules
// once inserted into the bin/ path.
func ValidateSkillName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.New("skill name must not be empty")
	case name == "." || name == "..":
		return errors.Errorf("invalid skill name %q", name)
	case strings.ContainsAny(name, `/\`):
		return errors.Errorf("skill name %q must not contain path separators", name)
	case name == scaffold.SkillName:
		return errors.Errorf("skill name %q is reserved for the converter skill", name)
	case ApplyRules(name, brandRules) != name:
		return errors.Errorf("skill name %q must not contain a Claude brand name", name)
	}
	return nil
}

// TargetDir returns the skill directory the converter writes.
func (c *Converter) TargetDir() string {
	return filepath.Join(c.skillsDir, c.skillName)
}

func (c *Converter) lockPath() string {
	return filepath.Join(c.skillsDir, "."+c.skillName+".lock")
}

// Result summarises a completed run.
type Result struct {
	RunID      string
	SkillName  string
	TargetDir  string
	OldVersion string
	NewVersion string
	Migration  *MigrationReport
	Tools      *toolsopt.Report
	Refactor   *RefactorReport
	Commands   []Command
	Descriptor *Descriptor
	// Warnings holds the recoverable failures of the run.
	Warnings []error
}

// Run converts the bundle. The target directory is deleted first and
// rebuilt from scratch. Per-file failures during migration, optimization,
// refactoring and validation are recorded in Result.Warnings. An installer
// failure is returned as *InstallError; resetting directories, taking the
// run lock, or writing SKILL.md failing are the other fatal errors.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		SkillName: c.skillName,
		TargetDir: c.TargetDir(),
	}
	ctx = logger.WithFields(ctx, logrus.Fields{"run_id": res.RunID, "skill": c.skillName})
	log := logger.G(ctx)

	step := func(name string, f func(context.Context) error) error {
		return telemetry.WithSpan(ctx, "gsd.convert."+name, f,
			attribute.String("gsd.skill", c.skillName),
			attribute.String("gsd.run_id", res.RunID),
		)
	}

	if err := os.MkdirAll(c.skillsDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create skills directory %s", c.skillsDir)
	}

	unlock, err := lockedfile.MutexAt(c.lockPath()).Lock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire conversion lock")
	}
	defer unlock()

	err = step("reset", func(context.Context) error {
		if _, err := os.Stat(res.TargetDir); err == nil {
			log.WithField("path", res.TargetDir).Info("removing existing skill directory")
		}
		return errors.Wrapf(os.RemoveAll(res.TargetDir), "failed to remove %s", res.TargetDir)
	})
	if err != nil {
		return nil, err
	}

	res.OldVersion = ReadVersion(c.sourceDir)

	if err := step("install", c.installer.Install); err != nil {
		return nil, err
	}

	res.NewVersion = ReadVersion(c.sourceDir)
	log.WithField("old_version", res.OldVersion).WithField("new_version", res.NewVersion).Info("GSD version")

	if err := os.MkdirAll(res.TargetDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", res.TargetDir)
	}

	_ = step("migrate", func(ctx context.Context) error {
		report, err := Migrate(ctx, c.sourceDir, res.TargetDir, c.mappings)
		res.Migration = report
		telemetry.SetAttributes(ctx,
			attribute.Int("gsd.migrate.files", report.Files()),
			attribute.Int("gsd.migrate.skipped", len(report.Skipped())),
		)
		res.warn(err)
		return err
	})

	if c.optimizeTools {
		_ = step("optimize-tools", func(ctx context.Context) error {
			report, err := c.optimize(ctx, res.TargetDir)
			res.Tools = report
			res.warn(err)
			return err
		})
	}

	_ = step("refactor", func(ctx context.Context) error {
		report, err := Refactor(ctx, res.TargetDir, DefaultRules(c.skillName))
		res.Refactor = report
		telemetry.SetAttributes(ctx,
			attribute.Int("gsd.refactor.scanned", report.Scanned),
			attribute.Int("gsd.refactor.changed", len(report.Changed)),
		)
		res.warn(err)
		return err
	})

	err = step("descriptor", func(ctx context.Context) error {
		res.Commands = ScanCommands(ctx, res.TargetDir)
		desc, err := GenerateDescriptor(ctx, DescriptorOptions{
			TargetDir:     res.TargetDir,
			SkillName:     c.skillName,
			Commands:      res.Commands,
			TemplatePaths: c.templatePaths,
			Now:           c.now,
		})
		if err != nil {
			return err
		}
		res.Descriptor = desc
		res.warn(desc.FormatErr)
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = step("validate", func(ctx context.Context) error {
		if _, err := skills.LoadSkill(res.Descriptor.Path); err != nil {
			err = errors.Wrapf(err, "generated %s is not a valid skill", DescriptorFile)
			logger.G(ctx).WithError(err).Warn("skill validation failed")
			res.warn(err)
			return err
		}
		return nil
	})

	log.WithField("target", res.TargetDir).WithField("warnings", len(res.Warnings)).Info("conversion complete")
	return res, nil
}

func (c *Converter) optimize(ctx context.Context, targetDir string) (*toolsopt.Report, error) {
	path := filepath.Join(targetDir, "bin", toolsopt.FileName)
	if _, err := os.Stat(path); err != nil {
		logger.G(ctx).WithField("path", path).Warn("gsd-tools.cjs not found, skipping optimization")
		return nil, nil
	}
	return toolsopt.OptimizeFile(ctx, path)
}

func (r *Result) warn(err error) {
	if err != nil {
		r.Warnings = append(r.Warnings, err)
	}
}
