package toolsopt

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vanillaTools = `#!/usr/bin/env node

/**
 * GSD Tools: the long original usage banner
 * state load | state update <field> <value>
 * phase add <description>
 */

const fs = require('fs');
const path = require('path');

function safeReadFile(p) {
    try {
        return fs.readFileSync(p, 'utf-8');
    } catch {
        return null;
    }
}

function cmdInitExecutePhase(cwd, phase, raw) {
    const phaseInfo = findPhase(cwd, phase);
    const result = {
        // Phase info
        phase_found: !!phaseInfo,
        phase_dir: phaseInfo?.directory || null,
        phase_number: phaseInfo?.phase_number || null,
        phase_name: phaseInfo?.phase_name || null,
        phase_slug: phaseInfo?.phase_slug || null,
    };
    output(result, raw);
}

function cmdInitProgress(cwd, raw) {
    const result = {};
    output(result, raw);
}

function main(args) {
    switch (args[0]) {
        case 'init': {
            const workflow = args[1];
            if (workflow === 'execute-phase') cmdInitExecutePhase(cwd, args[2], raw);
            if (workflow === 'progress') cmdInitProgress(cwd, raw);
            break;
        }
    }
}
`

func stepByName(t *testing.T, r *Report, name string) Step {
	t.Helper()
	for _, s := range r.Steps {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("step %q not recorded", name)
	return Step{}
}

func TestOptimize(t *testing.T) {
	out, report := Optimize(vanillaTools)
	require.True(t, report.Changed())

	t.Run("header condensed", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(out, "#!/usr/bin/env node\n\n"+condensedHeader+"\n\nconst fs = require('fs');"))
		assert.NotContains(t, out, "long original usage banner")
		assert.True(t, stepByName(t, report, "header").Applied)
	})

	t.Run("reindented", func(t *testing.T) {
		assert.Contains(t, out, "function safeReadFile(p) {\n  try {\n    return fs.readFileSync(p, 'utf-8');\n  } catch {")
	})

	t.Run("helpers injected before safeReadFile", func(t *testing.T) {
		parse := strings.Index(out, "function parseIncludeFlag(args) {")
		helpers := strings.Index(out, "function discoverPhaseArtifacts(cwd, phaseDir) {")
		safe := strings.Index(out, "function safeReadFile(")
		require.NotEqual(t, -1, parse)
		require.NotEqual(t, -1, helpers)
		assert.Less(t, parse, helpers)
		assert.Less(t, helpers, safe)
		assert.Contains(t, out, "result[`${key}_content`] = safeReadFile(path.join(cwd, rel));")
	})

	t.Run("phase info uses buildPhaseBase", func(t *testing.T) {
		assert.Contains(t, out, "  const result = {\n    ...buildPhaseBase(phaseInfo),\n  };\n  applyIncludes(result, includes, cwd);\n  output(result, raw);")
		assert.NotContains(t, out, "// Phase info")
		// the helper body keeps its explicit fields
		assert.Contains(t, out, "function buildPhaseBase(phaseInfo) {\n  return {\n    phase_found: !!phaseInfo,")
		assert.Contains(t, stepByName(t, report, "phase-base").Detail, "replaced 1 phase info block(s)")
	})

	t.Run("includes threaded through router and signatures", func(t *testing.T) {
		assert.Contains(t, out, "    case 'init': {\n      const workflow = args[1];\n      const includes = parseIncludeFlag(args);")
		assert.Contains(t, out, "cmdInitExecutePhase(cwd, args[2], includes, raw)")
		assert.Contains(t, out, "cmdInitProgress(cwd, includes, raw)")
		assert.Contains(t, out, "function cmdInitExecutePhase(cwd, phase, includes, raw)")
		assert.Contains(t, out, "function cmdInitProgress(cwd, includes, raw) {\n  const result = {};\n  applyIncludes(result, includes, cwd);\n  output(result, raw);")
	})

	assert.Equal(t, len(out), report.Bytes)
	assert.Equal(t, strings.Count(out, "\n")+1, report.Lines)
}

func TestOptimizeIsIdempotent(t *testing.T) {
	once, _ := Optimize(vanillaTools)
	twice, report := Optimize(once)

	assert.Equal(t, once, twice)
	assert.False(t, report.Changed())
	assert.Equal(t, "DRY helpers already present", stepByName(t, report, "helpers").Detail)
	assert.Equal(t, "already re-indented", stepByName(t, report, "indentation").Detail)
}

func TestOptimizeWithoutHeaderIsIdempotent(t *testing.T) {
	headerless := "function safeReadFile(p) {\n        return p;\n}\n"

	once, report := Optimize(headerless)
	require.True(t, report.Changed())
	assert.False(t, stepByName(t, report, "header").Applied)
	assert.Contains(t, once, "function safeReadFile(p) {\n    return p;\n}\n")
	assert.Contains(t, once, helpersBlock)

	twice, report := Optimize(once)
	assert.Equal(t, once, twice)
	assert.False(t, report.Changed())
	assert.Equal(t, "already re-indented", stepByName(t, report, "indentation").Detail)
}

func TestOptimizeNormalizesCRLF(t *testing.T) {
	lf, _ := Optimize(vanillaTools)
	crlf, report := Optimize(strings.ReplaceAll(vanillaTools, "\n", "\r\n"))

	assert.Equal(t, lf, crlf)
	assert.True(t, stepByName(t, report, "line-endings").Applied)
}

func TestReindent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"foo", "foo"},
		{"    foo", "  foo"},
		{"        foo", "    foo"},
		{"      foo", "    foo"},
		{"   foo", "   foo"},
		{"    \tfoo", "  foo"},
	}
	for _, tt := range tests {
		got := reindent(tt.in, &Report{})
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestInjectHelpersAfterExistingParseIncludeFlag(t *testing.T) {
	content := "function parseIncludeFlag(args) {\n  return new Set();\n}\nfunction safeReadFile(p) {}\n"
	r := &Report{}

	out := injectHelpers(content, r)

	assert.True(t, strings.HasPrefix(out, "function parseIncludeFlag(args) {\n  return new Set();\n}\n"+helpersBlock+"\nfunction safeReadFile"))
	assert.Equal(t, "injected DRY helpers after parseIncludeFlag", r.Steps[0].Detail)
}

func TestMissingAnchorsAreReported(t *testing.T) {
	out, report := Optimize("const x = 1;\n")

	assert.Equal(t, "const x = 1;\n", out)
	assert.False(t, report.Changed())
	assert.Equal(t, "could not locate header comment to condense", stepByName(t, report, "header").Detail)
	assert.Equal(t, "could not find safeReadFile insertion point", stepByName(t, report, "helpers").Detail)
}

func TestOptimizeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(vanillaTools), 0o755))

	report, err := OptimizeFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, report.Changed())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	expected, _ := Optimize(vanillaTools)
	assert.Equal(t, expected, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	report, err = OptimizeFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, report.Changed())
}

func TestOptimizeFileMissing(t *testing.T) {
	_, err := OptimizeFile(context.Background(), filepath.Join(t.TempDir(), "nope.cjs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestDiff(t *testing.T) {
	after, _ := Optimize(vanillaTools)
	diff := Diff(FileName, vanillaTools, after)

	assert.Contains(t, diff, "--- "+FileName)
	assert.Contains(t, diff, "+++ "+FileName)
	assert.Contains(t, diff, "- * GSD Tools: the long original usage banner")
	assert.Contains(t, diff, "+function parseIncludeFlag(args) {")
	assert.Empty(t, Diff(FileName, after, after))
}

func TestReplaceCallSkipsDeclaration(t *testing.T) {
	content := "function cmdInitProgress(cwd, raw) {}\nif (x) cmdInitProgress(cwd, raw);\n"

	out, ok := replaceCall(content, rewrite{from: "cmdInitProgress(cwd, raw)", to: "cmdInitProgress(cwd, includes, raw)"})

	require.True(t, ok)
	assert.Equal(t, "function cmdInitProgress(cwd, raw) {}\nif (x) cmdInitProgress(cwd, includes, raw);\n", out)

	_, ok = replaceCall("function cmdInitProgress(cwd, raw) {}\n", rewrite{from: "cmdInitProgress(cwd, raw)", to: "x"})
	assert.False(t, ok)
}
