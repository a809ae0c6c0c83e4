package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// FileName is the descriptor every skill directory must contain.
const FileName = "SKILL.md"

// Discovery handles skill discovery from configured directories
type Discovery struct {
	skillDirs []string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillDirs sets custom skill directories. Earlier directories take
// precedence when two skills share a name.
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		if len(dirs) == 0 {
			return errors.New("at least one skill directory is required")
		}
		d.skillDirs = dirs
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance. Without options it
// searches DefaultSkillsDir relative to the working directory.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{skillDirs: []string{DefaultSkillsDir}}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// DiscoverSkills finds all available skills from configured directories.
// Directories without a valid SKILL.md are ignored.
func (d *Discovery) DiscoverSkills() (map[string]*Skill, error) {
	skills := make(map[string]*Skill)

	for _, dir := range d.skillDirs {
		d.discoverSkillsFromDir(dir, skills)
	}

	return skills, nil
}

func (d *Discovery) discoverSkillsFromDir(dir string, skills map[string]*Skill) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())

		// Stat follows symlinks so linked skill directories are picked up
		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skill, err := LoadSkill(filepath.Join(entryPath, FileName))
		if err != nil {
			continue
		}

		if _, exists := skills[skill.Name]; !exists {
			skill.Directory = entryPath
			skills[skill.Name] = skill
		}
	}
}

// GetSkill returns a specific skill by name
func (d *Discovery) GetSkill(name string) (*Skill, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	skill, exists := skills[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}

	return skill, nil
}

// ListSkills returns every discovered skill sorted by name.
func (d *Discovery) ListSkills() ([]*Skill, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	list := make([]*Skill, 0, len(skills))
	for _, skill := range skills {
		list = append(list, skill)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})

	return list, nil
}

// LoadSkill parses the SKILL.md at path. The frontmatter must carry both a
// name and a description.
func LoadSkill(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData, err := meta.TryGet(pctx)
	if err != nil {
		return nil, errors.Wrap(err, "invalid frontmatter")
	}
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}
	if description == "" {
		return nil, errors.New("skill description is required in frontmatter")
	}

	return &Skill{
		Name:        name,
		Description: description,
		Directory:   filepath.Dir(path),
		Content:     extractBodyContent(string(content)),
	}, nil
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
