// Package toolsopt post-processes the gsd-tools.cjs helper shipped in the GSD
// bundle: it normalises formatting, condenses the usage header, and threads
// an --include flag through the init commands using a handful of shared
// helpers. Every step checks for its own previous output, so running the
// optimizer on an already optimized file changes nothing.
package toolsopt

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/aymanbagabas/go-udiff"
	"github.com/gsd-antigravity/gsd-converter/pkg/logger"
	"github.com/pkg/errors"
)

// FileName is the helper script the optimizer targets inside a skill's bin/.
const FileName = "gsd-tools.cjs"

var (
	headerPattern     = regexp.MustCompile(`(?s)/\*\*.*?\*/\s*\nconst fs = require`)
	phaseInfoPattern  = regexp.MustCompile(`(?:// Phase info\n\s+)?phase_found: !!phaseInfo,\n\s+phase_dir: phaseInfo\?\.directory \|\| null,\n\s+phase_number: phaseInfo\?\.phase_number \|\| null,\n\s+phase_name: phaseInfo\?\.phase_name \|\| null,\n\s+phase_slug: phaseInfo\?\.phase_slug \|\| null,`)
	initRouterPattern = regexp.MustCompile(`case 'init': \{\n(\s+)const workflow = args\[1\];`)
)

const (
	headerAnchor  = "\nconst fs = require"
	helpersMarker = "function discoverPhaseArtifacts("
)

// Step records the outcome of one optimization step.
type Step struct {
	Name    string
	Applied bool
	Detail  string
}

// Report lists the steps in the order they ran plus the final file size.
type Report struct {
	Steps []Step
	Lines int
	Bytes int
}

// Changed reports whether any step modified the content.
func (r *Report) Changed() bool {
	for _, s := range r.Steps {
		if s.Applied {
			return true
		}
	}
	return false
}

func (r *Report) record(name string, applied bool, format string, args ...any) {
	r.Steps = append(r.Steps, Step{Name: name, Applied: applied, Detail: fmt.Sprintf(format, args...)})
}

// Optimize applies every step to content and returns the result.
func Optimize(content string) (string, *Report) {
	r := &Report{}

	content = normalizeLineEndings(content, r)
	content = reindent(content, r)
	content = condenseHeader(content, r)
	content = injectHelpers(content, r)
	content = useBuildPhaseBase(content, r)
	content = injectApplyIncludes(content, r)
	content = threadIncludes(content, r)

	r.Lines = len(strings.Split(content, "\n"))
	r.Bytes = len(content)
	return content, r
}

// OptimizeFile optimizes the file at path in place. The file is only
// rewritten when at least one step applied.
func OptimizeFile(ctx context.Context, path string) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	optimized, report := Optimize(string(data))

	log := logger.G(ctx).WithField("file", path)
	for _, step := range report.Steps {
		log.WithField("step", step.Name).WithField("applied", step.Applied).Debug(step.Detail)
	}

	if !report.Changed() {
		log.Info("gsd-tools.cjs already optimized")
		return report, nil
	}

	if err := os.WriteFile(path, []byte(optimized), info.Mode().Perm()); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", path)
	}

	log.WithField("lines", report.Lines).WithField("bytes", report.Bytes).Info("gsd-tools.cjs optimization complete")
	return report, nil
}

// Diff returns a unified diff between before and after labelled with name.
func Diff(name, before, after string) string {
	return udiff.Unified(name, name, before, after)
}

func normalizeLineEndings(content string, r *Report) string {
	out := strings.ReplaceAll(content, "\r\n", "\n")
	r.record("line-endings", out != content, "normalized line endings to LF")
	return out
}

// reindent halves every run of leading spaces in groups of four. A file that
// already carries the condensed header or the injected helpers has been
// through this step and is left alone, since halving is not idempotent.
func reindent(content string, r *Report) string {
	if strings.Contains(content, condensedHeader) || strings.Contains(content, helpersMarker) {
		r.record("indentation", false, "already re-indented")
		return content
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		n := len(line) - len(strings.TrimLeft(line, " "))
		if n == 0 {
			continue
		}
		lines[i] = strings.Repeat(" ", n/4*2+n%4) + strings.TrimLeftFunc(line, unicode.IsSpace)
	}

	out := strings.Join(lines, "\n")
	r.record("indentation", out != content, "converted 4-space indentation to 2-space")
	return out
}

func condenseHeader(content string, r *Report) string {
	loc := headerPattern.FindStringIndex(content)
	if loc == nil {
		r.record("header", false, "could not locate header comment to condense")
		return content
	}

	end := loc[1] - len(headerAnchor)
	out := content[:loc[0]] + condensedHeader + "\n" + content[end:]
	r.record("header", out != content, "header condensed")
	return out
}

func injectHelpers(content string, r *Report) string {
	if strings.Contains(content, helpersMarker) {
		r.record("helpers", false, "DRY helpers already present")
		return content
	}

	if !strings.Contains(content, "function parseIncludeFlag") {
		pos := strings.Index(content, "function safeReadFile(")
		if pos == -1 {
			r.record("helpers", false, "could not find safeReadFile insertion point")
			return content
		}
		r.record("helpers", true, "injected parseIncludeFlag and DRY helpers")
		return content[:pos] + parseIncludeFlag + "\n\n" + helpersBlock + "\n\n" + content[pos:]
	}

	start := strings.Index(content, "function parseIncludeFlag")
	end := strings.Index(content[start:], "\n}\n")
	if end == -1 {
		r.record("helpers", false, "could not find end of parseIncludeFlag")
		return content
	}

	insertAt := start + end + 3
	r.record("helpers", true, "injected DRY helpers after parseIncludeFlag")
	return content[:insertAt] + helpersBlock + "\n" + content[insertAt:]
}

// useBuildPhaseBase collapses hand-written phase info fields into a spread
// of buildPhaseBase. The helper's own body has the same shape and is skipped.
func useBuildPhaseBase(content string, r *Report) string {
	helperStart, helperEnd := -1, -1
	if i := strings.Index(content, "function buildPhaseBase("); i != -1 {
		helperStart = i
		helperEnd = len(content)
		if j := strings.Index(content[i:], "\n}"); j != -1 {
			helperEnd = i + j
		}
	}

	var b strings.Builder
	last, replaced := 0, 0
	for _, loc := range phaseInfoPattern.FindAllStringIndex(content, -1) {
		if loc[0] >= helperStart && loc[1] <= helperEnd {
			continue
		}
		b.WriteString(content[last:loc[0]])
		b.WriteString("...buildPhaseBase(phaseInfo),")
		last = loc[1]
		replaced++
	}
	if replaced == 0 {
		r.record("phase-base", false, "no phase info blocks found")
		return content
	}
	b.WriteString(content[last:])

	r.record("phase-base", true, "replaced %d phase info block(s) with ...buildPhaseBase()", replaced)
	return b.String()
}

func injectApplyIncludes(content string, r *Report) string {
	const outputCall = "output(result, raw)"

	injected := 0
	for _, ic := range includeCalls {
		funcStart := strings.Index(content, "function "+ic.function+"(")
		if funcStart == -1 {
			continue
		}
		rel := strings.Index(content[funcStart:], outputCall)
		if rel == -1 {
			continue
		}
		outputPos := funcStart + rel
		if strings.Contains(content[funcStart:outputPos], "applyIncludes") {
			continue
		}

		lineStart := strings.LastIndex(content[:outputPos], "\n") + 1
		line := content[lineStart:outputPos]
		indent := line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
		if indent == "" {
			indent = "  "
		}

		content = content[:lineStart] + indent + ic.call + "\n" + content[lineStart:]
		injected++
	}

	r.record("apply-includes", injected > 0, "injected applyIncludes() in %d init function(s)", injected)
	return content
}

func threadIncludes(content string, r *Report) string {
	changes := 0

	if !strings.Contains(content, "= parseIncludeFlag(args)") {
		if m := initRouterPattern.FindStringSubmatchIndex(content); m != nil {
			indent := content[m[2]:m[3]]
			replacement := "case 'init': {\n" + indent + "const workflow = args[1];\n" + indent + "const includes = parseIncludeFlag(args);"
			content = content[:m[0]] + replacement + content[m[1]:]
			changes++
		}
	}

	for _, rw := range routerCalls {
		if out, ok := replaceCall(content, rw); ok {
			content = out
			changes++
		}
	}

	for _, rw := range signatures {
		if strings.Contains(content, rw.from) {
			content = strings.Replace(content, rw.from, rw.to, 1)
			changes++
		}
	}

	r.record("includes", changes > 0, "threaded includes through %d router call(s) and signature(s)", changes)
	return content
}

// replaceCall rewrites the first call site of rw.from, ignoring the function
// declaration that shares the same text.
func replaceCall(content string, rw rewrite) (string, bool) {
	for offset := 0; ; {
		i := strings.Index(content[offset:], rw.from)
		if i == -1 {
			return content, false
		}
		pos := offset + i
		if !strings.HasSuffix(content[:pos], "function ") {
			return content[:pos] + rw.to + content[pos+len(rw.from):], true
		}
		offset = pos + len(rw.from)
	}
}
