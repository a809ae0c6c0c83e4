package gsd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/pkg/errors"
)

const (
	// DescriptorFile is the generated skill entry point.
	DescriptorFile = "SKILL.md"
	// TemplateFile is the name of the descriptor template asset.
	TemplateFile = "gsd_skill_template.md"

	// triggerPrefix namespaces every command of the bundle.
	triggerPrefix = "gsd:"
	dateLayout    = "2006-01-02"
)

// DescriptorOptions configures GenerateDescriptor.
type DescriptorOptions struct {
	TargetDir string
	SkillName string
	Commands  []Command
	// TemplatePaths are tried in order; the first existing file is used.
	TemplatePaths []string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Descriptor describes the SKILL.md that was written.
type Descriptor struct {
	Path string
	// TemplatePath is empty when no template was found.
	TemplatePath string
	// Fallback is set when the minimal built-in descriptor was written.
	Fallback bool
	// FormatErr is set when the template was written unrendered.
	FormatErr error
}

// GenerateDescriptor renders SKILL.md into opts.TargetDir, replacing any
// existing file. A missing template produces a minimal fallback descriptor
// and a template that fails to render is written verbatim; both are logged
// as warnings. Only a failure to write the file is returned.
func GenerateDescriptor(ctx context.Context, opts DescriptorOptions) (*Descriptor, error) {
	log := logger.G(ctx)
	desc := &Descriptor{Path: filepath.Join(opts.TargetDir, DescriptorFile)}

	var content string
	templatePath, tmpl, err := loadTemplate(opts.TemplatePaths)
	if err != nil {
		log.WithError(err).Warn("template not found, using fallback")
		desc.Fallback = true
		content = FallbackDescriptor(opts.SkillName)
	} else {
		desc.TemplatePath = templatePath
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}

		content, err = Format(tmpl, TemplateValues(opts.SkillName, now(), opts.Commands))
		if err != nil {
			log.WithError(err).WithField("template", templatePath).
				Warn("error formatting template, check that it only uses supported keys")
			desc.FormatErr = err
			content = tmpl
		}
	}

	if err := os.WriteFile(desc.Path, []byte(content), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", DescriptorFile)
	}

	log.WithField("path", desc.Path).WithField("commands", len(opts.Commands)).Info("created SKILL.md")
	return desc, nil
}

func loadTemplate(paths []string) (string, string, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", "", errors.Wrapf(err, "failed to read template %s", path)
		}
		return path, string(data), nil
	}
	return "", "", errors.Errorf("no %s in %s", TemplateFile, strings.Join(paths, ", "))
}

// TemplateValues returns the placeholder values offered to the template.
func TemplateValues(skillName string, now time.Time, commands []Command) map[string]string {
	return map[string]string{
		"skill_name":       skillName,
		"title_name":       strings.ToUpper(skillName),
		"date":             now.Format(dateLayout),
		"command_triggers": CommandTriggers(commands),
		"commands_list":    CommandsList(commands),
	}
}

// CommandTriggers renders one "- `gsd:<name>`" line per command.
func CommandTriggers(commands []Command) string {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, fmt.Sprintf("- `%s%s`", triggerPrefix, cmd.Name))
	}
	return strings.Join(lines, "\n")
}

// CommandsList renders one linked, described line per command.
func CommandsList(commands []Command) string {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, fmt.Sprintf("- **[`%s%s`](%s/%s.md)**: %s",
			triggerPrefix, cmd.Name, CommandsDir, cmd.Name, cmd.Description))
	}
	return strings.Join(lines, "\n")
}

// FallbackDescriptor is written when no template can be found.
func FallbackDescriptor(skillName string) string {
	return fmt.Sprintf(`---
name: %s
description: "Antigravity GSD (Get Stuff Done) - Fallback."
---
# %s
Template missing.
`, skillName, skillName)
}
