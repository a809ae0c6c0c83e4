package gsd

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/pkg/errors"
)

const (
	// CommandsDir is where migrated command files live inside a skill.
	CommandsDir = "references/commands"

	frontmatterDelimiter = "---"
	descriptionKey       = "description:"
)

// Command is one entry of the skill's command index.
type Command struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// ScanCommands indexes the command files of the skill at targetDir, sorted by
// file name. A file whose frontmatter cannot be read keeps an empty
// description; scanning always continues.
func ScanCommands(ctx context.Context, targetDir string) []Command {
	dir := filepath.Join(targetDir, filepath.FromSlash(CommandsDir))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return []Command{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".md") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	commands := make([]Command, 0, len(names))
	for _, name := range names {
		description, err := readDescription(filepath.Join(dir, name))
		if err != nil {
			logger.G(ctx).WithError(err).WithField("file", name).Warn("error parsing command frontmatter")
		}
		commands = append(commands, Command{
			Name:        strings.TrimSuffix(name, ".md"),
			Description: description,
		})
	}

	return commands
}

func readDescription(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to read command file")
	}
	if !utf8.Valid(data) {
		return "", errors.New("command file is not valid UTF-8")
	}
	return ParseDescription(string(data)), nil
}

// ParseDescription extracts the description value from a leading
// frontmatter block. Only the first line of the block starting with
// "description:" counts; surrounding whitespace and quote characters are
// stripped. Content without frontmatter yields "".
func ParseDescription(content string) string {
	lines := strings.Split(content, "\n")
	if strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return ""
	}

	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == frontmatterDelimiter {
			break
		}
		if !strings.HasPrefix(trimmed, descriptionKey) {
			continue
		}

		_, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"`)
		return strings.Trim(value, `'`)
	}

	return ""
}
