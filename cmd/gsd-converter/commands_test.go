package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gsd-antigravity/gsd-converter/pkg/gsd"
	"github.com/gsd-antigravity/gsd-converter/pkg/skills"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleCommands = []gsd.Command{
	{Name: "new-project", Description: "Start a project"},
	{Name: "progress", Description: ""},
}

func TestWriteCommands(t *testing.T) {
	tests := []struct {
		format   string
		expected string
	}{
		{
			format: "table",
			expected: "TRIGGER          DESCRIPTION\n" +
				"-------          -----------\n" +
				"gsd:new-project  Start a project\n" +
				"gsd:progress     \n",
		},
		{
			format: "json",
			expected: `[
  {
    "name": "new-project",
    "description": "Start a project"
  },
  {
    "name": "progress",
    "description": ""
  }
]
`,
		},
		{
			format: "yaml",
			expected: `- name: new-project
  description: Start a project
- name: progress
  description: ""
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeCommands(&buf, sampleCommands, tt.format))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestWriteCommandsEmptyJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCommands(&buf, []gsd.Command{}, "json"))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteCommandsUnsupportedFormat(t *testing.T) {
	err := writeCommands(&bytes.Buffer{}, sampleCommands, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestWriteSkills(t *testing.T) {
	var buf bytes.Buffer
	long := "This description is deliberately longer than sixty characters in total"

	require.NoError(t, writeSkills(&buf, []*skills.Skill{
		{Name: "gsd", Directory: ".agent/skills/gsd", Description: long},
	}))

	assert.Contains(t, buf.String(), "NAME  DIRECTORY          DESCRIPTION\n")
	assert.Contains(t, buf.String(), long[:57]+"...")
}

func TestWriteSkillsTruncatesByRune(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSkills(&buf, []*skills.Skill{
		{Name: "gsd", Directory: ".agent/skills/gsd", Description: strings.Repeat("é", 70)},
	}))

	assert.True(t, utf8.ValidString(buf.String()))
	assert.Contains(t, buf.String(), strings.Repeat("é", 57)+"...\n")
	assert.NotContains(t, buf.String(), strings.Repeat("é", 58))
}

func TestSkillCommands(t *testing.T) {
	skillsDir := t.TempDir()
	writeTestFile(t, filepath.Join(skillsDir, "demo", "SKILL.md"), "---\nname: demo\ndescription: Demo skill\n---\n")
	writeTestFile(t, filepath.Join(skillsDir, "demo", "references", "commands", "plan.md"), "---\ndescription: Plan it\n---\n")
	writeTestFile(t, filepath.Join(skillsDir, "bare", "references", "commands", "plan.md"), "---\ndescription: Plan it\n---\n")

	t.Run("converted skill", func(t *testing.T) {
		commands, err := skillCommands(context.Background(), &CommandsConfig{SkillName: "demo", SkillsDir: skillsDir})
		require.NoError(t, err)
		assert.Equal(t, []gsd.Command{{Name: "plan", Description: "Plan it"}}, commands)
	})

	for _, name := range []string{"missing", "bare"} {
		t.Run(name, func(t *testing.T) {
			_, err := skillCommands(context.Background(), &CommandsConfig{SkillName: name, SkillsDir: skillsDir})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not found")
		})
	}
}
