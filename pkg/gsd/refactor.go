package gsd

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// refactorPattern selects the files whose content is rewritten.
const refactorPattern = "*.{md,json}"

// Rule is a single find-and-replace applied to file content. Replacement is
// inserted literally.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// DefaultRules returns the rewrite table for a skill named skillName. Path
// rules come first so the brand rules never see, and corrupt, a path that
// was already rewritten. The brand rules are case-sensitive, one per casing.
func DefaultRules(skillName string) []Rule {
	return append(pathRules(skillName), brandRules...)
}

func pathRules(skillName string) []Rule {
	return []Rule{
		{regexp.MustCompile(`@\./\.claude/commands/gsd/`), "@references/commands/"},
		{regexp.MustCompile(`@\./\.claude/get-shit-done/references/`), "@references/docs/"},
		{regexp.MustCompile(`@\./\.claude/get-shit-done/workflows/`), "@references/workflows/"},
		{regexp.MustCompile(`@\./\.claude/get-shit-done/templates/`), "@assets/templates/"},
		{regexp.MustCompile(`@\./\.claude/agents/`), "@references/agents/"},
		{regexp.MustCompile(`\./\.claude/agents/`), "references/agents/"},
		{regexp.MustCompile(`\./\.claude/get-shit-done/templates/`), "assets/templates/"},
		{regexp.MustCompile(`\./\.claude/get-shit-done/workflows/`), "references/workflows/"},
		{regexp.MustCompile(`\./\.claude/get-shit-done/bin/`), ".agent/skills/" + skillName + "/bin/"},
	}
}

var brandRules = []Rule{
	{regexp.MustCompile(`\bClaude Code\b`), "Antigravity"},
	{regexp.MustCompile(`\bClaude\b`), "Antigravity"},
	{regexp.MustCompile(`\bclaude\b`), "antigravity"},
	{regexp.MustCompile(`\bCLAUDE\b`), "ANTIGRAVITY"},
}

// ApplyRules runs every rule over content in order, replacing all matches.
func ApplyRules(content string, rules []Rule) string {
	for _, rule := range rules {
		content = rule.Pattern.ReplaceAllLiteralString(content, rule.Replacement)
	}
	return content
}

// RefactorReport summarises a Refactor pass.
type RefactorReport struct {
	// Scanned counts the markdown and JSON files that were read.
	Scanned int
	// Changed lists the files rewritten, relative to the target directory.
	Changed []string
}

// Refactor rewrites every markdown and JSON file under targetDir with rules.
// Files are only written back when their content changed. A file that cannot
// be read, decoded, or written is logged and skipped; those failures are
// returned together after the walk.
func Refactor(ctx context.Context, targetDir string, rules []Rule) (*RefactorReport, error) {
	log := logger.G(ctx)
	log.WithField("target", targetDir).Info("refactoring file contents and paths")

	report := &RefactorReport{}
	var result *multierror.Error

	err := filepath.WalkDir(targetDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "failed to walk %s", path))
			return nil
		}
		if d.IsDir() {
			return nil
		}

		matched, err := doublestar.Match(refactorPattern, d.Name())
		if err != nil || !matched {
			return nil
		}

		rel, _ := filepath.Rel(targetDir, path)
		changed, err := refactorFile(path, rules)
		if err != nil {
			log.WithError(err).WithField("file", rel).Warn("failed to refactor file")
			result = multierror.Append(result, err)
			return nil
		}

		report.Scanned++
		if changed {
			report.Changed = append(report.Changed, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		result = multierror.Append(result, err)
	}

	log.WithField("scanned", report.Scanned).WithField("changed", len(report.Changed)).Debug("refactor finished")
	return report, result.ErrorOrNil()
}

func refactorFile(path string, rules []Rule) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", path)
	}
	if !utf8.Valid(data) {
		return false, errors.Errorf("%s is not valid UTF-8", path)
	}

	content := string(data)
	updated := ApplyRules(content, rules)
	if updated == content {
		return false, nil
	}

	// WriteFile keeps the existing mode of a file it truncates
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	return true, nil
}
