package toolsopt

// condensedHeader replaces the long usage comment at the top of gsd-tools.cjs.
const condensedHeader = `/**
 * GSD Tools — CLI utility for GSD workflow operations
 * Usage: node gsd-tools.cjs <command> [args] [--raw] [--include field1,field2]
 *
 * Commands: state, resolve-model, find-phase, commit, verify-summary, generate-slug,
 *   current-timestamp, list-todos, verify-path-exists, config-ensure-section, config-set,
 *   config-get, history-digest, phases, roadmap, requirements, phase, milestone,
 *   validate, progress, todo, scaffold, phase-plan-index, state-snapshot, summary-extract,
 *   websearch, frontmatter, verify, template, init
 *
 * Run with --help for detailed usage of each command.
 */`

const parseIncludeFlag = `function parseIncludeFlag(args) {
  const includeIndex = args.indexOf('--include');
  if (includeIndex === -1) return new Set();
  const includeValue = args[includeIndex + 1];
  if (!includeValue) return new Set();
  return new Set(includeValue.split(',').map(s => s.trim()));
}`

const helpersBlock = "\n" + `function discoverPhaseArtifacts(cwd, phaseDir) {
  if (!phaseDir) return {};
  const full = path.join(cwd, phaseDir);
  try {
    const files = fs.readdirSync(full);
    const find = (suffix) => {
      const f = files.find(n => n.endsWith(` + "`-${suffix}.md`" + `) || n === ` + "`${suffix}.md`" + `);
      return f ? path.join(phaseDir, f) : null;
    };
    return { context: find('CONTEXT'), research: find('RESEARCH'), verification: find('VERIFICATION'), uat: find('UAT') };
  } catch { return {}; }
}

const INCLUDE_FILES = {
  state: '.planning/STATE.md',
  roadmap: '.planning/ROADMAP.md',
  config: '.planning/config.json',
  project: '.planning/PROJECT.md',
  requirements: '.planning/REQUIREMENTS.md',
};

function applyIncludes(result, includes, cwd, phaseDir) {
  if (!includes || includes.size === 0) return;
  for (const [key, rel] of Object.entries(INCLUDE_FILES)) {
    if (includes.has(key)) result[` + "`${key}_content`" + `] = safeReadFile(path.join(cwd, rel));
  }
  if (phaseDir) {
    const artifacts = discoverPhaseArtifacts(cwd, phaseDir);
    for (const [key, filePath] of Object.entries(artifacts)) {
      if (includes.has(key) && filePath) {
        result[` + "`${key}_content`" + `] = safeReadFile(path.join(cwd, filePath));
      }
    }
  }
}

function buildPhaseBase(phaseInfo) {
  return {
    phase_found: !!phaseInfo,
    phase_dir: phaseInfo?.directory || null,
    phase_number: phaseInfo?.phase_number || null,
    phase_name: phaseInfo?.phase_name || null,
    phase_slug: phaseInfo?.phase_slug || null,
  };
}`

type includeCall struct {
	function string
	call     string
}

var includeCalls = []includeCall{
	{function: "cmdInitExecutePhase", call: "applyIncludes(result, includes, cwd);"},
	{function: "cmdInitPlanPhase", call: "applyIncludes(result, includes, cwd, phaseInfo?.directory);"},
	{function: "cmdInitProgress", call: "applyIncludes(result, includes, cwd);"},
}

type rewrite struct {
	from string
	to   string
}

var routerCalls = []rewrite{
	{from: "cmdInitExecutePhase(cwd, args[2], raw)", to: "cmdInitExecutePhase(cwd, args[2], includes, raw)"},
	{from: "cmdInitPlanPhase(cwd, args[2], raw)", to: "cmdInitPlanPhase(cwd, args[2], includes, raw)"},
	{from: "cmdInitProgress(cwd, raw)", to: "cmdInitProgress(cwd, includes, raw)"},
}

var signatures = []rewrite{
	{from: "function cmdInitExecutePhase(cwd, phase, raw)", to: "function cmdInitExecutePhase(cwd, phase, includes, raw)"},
	{from: "function cmdInitPlanPhase(cwd, phase, raw)", to: "function cmdInitPlanPhase(cwd, phase, includes, raw)"},
	{from: "function cmdInitProgress(cwd, raw)", to: "function cmdInitProgress(cwd, includes, raw)"},
}
