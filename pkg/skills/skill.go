// Package skills discovers Antigravity skills. A skill is a directory
// containing a SKILL.md file whose YAML frontmatter names and describes it;
// the converter uses the same loader to validate the descriptor it writes.
package skills

// DefaultSkillsDir is where Antigravity looks for project skills.
const DefaultSkillsDir = ".agent/skills"

// Skill represents a discovered skill with its metadata
type Skill struct {
	Name        string // Unique name from frontmatter
	Description string // One-line summary shown to the agent
	Directory   string // Full path to the skill directory
	Content     string // Body of SKILL.md, without frontmatter
}
