package classify

import "regexp"

// Library holds the compiled pattern groups used by the classifier.
// Build once via DefaultLibrary and share freely; it is immutable after
// construction, so concurrent use needs no locking.
type Library struct {
	tasks      map[TaskType][]*regexp.Regexp
	stackTrace []*regexp.Regexp
	structured []*regexp.Regexp
	recency    []*regexp.Regexp
	stakes     []*regexp.Regexp
	languages  []*regexp.Regexp
	codeWords  []*regexp.Regexp
}

// taskPriority is the fixed order used to pick a winner when two categories
// match with equal counts. More specific intents sit earlier; qa sits last
// because every more specific category dominates question phrasing.
var taskPriority = []TaskType{
	TaskDebug,
	TaskCodeGen,
	TaskRefactor,
	TaskMath,
	TaskExplain,
	TaskResearch,
	TaskCreative,
	TaskQA,
}

var taskPatterns = map[TaskType][]string{
	TaskCodeGen: {
		`\bwrite\s+(?:a|an|some)?\s*(?:function|method|class|script|program|code)\b`,
		`\bimplement\b`,
		`\bbuild\s+(?:a|an|the)\b`,
		`\bcreate\s+(?:a|an)?\s*(?:function|class|script|app|api|cli|endpoint|component|page|website)\b`,
		`\bgenerate\s+(?:code|a\s+function|a\s+script|boilerplate)\b`,
		`\bscaffold\b`,
		`\bboilerplate\b`,
		`\bcode\s+(?:for|that|to|up)\b`,
		`\badd\s+a\s+(?:feature|method|function|endpoint|route)\b`,
	},
	TaskDebug: {
		`\bdebug\b`,
		`\bfix\b`,
		`\bbugs?\b`,
		`\berrors?\b`,
		`\bbroken\b`,
		`\bnot\s+working\b`,
		`\bcrash(?:es|ed|ing)?\b`,
		`\bfail(?:s|ed|ing)?\b`,
		`\bexception\b`,
		`\bstack\s*trace\b`,
		`\btroubleshoot\b`,
		`\bdiagnose\b`,
	},
	TaskRefactor: {
		`\brefactor\b`,
		`\bclean\s*up\b`,
		`\brestructure\b`,
		`\breorganize\b`,
		`\bsimplify\b`,
		`\brewrite\b`,
		`\bmigrate\b`,
		`\bmodernize\b`,
		`\bextract\s+(?:a\s+)?(?:method|function|class|interface)\b`,
		`\boptimi[sz]e\b`,
		`\brename\b`,
	},
	TaskExplain: {
		`\bexplain\b`,
		`\bhow\s+(?:does|do|did)\b`,
		`\bwhat\s+does\s+(?:this|that|it)\b`,
		`\bwalk\s+me\s+through\b`,
		`\bhelp\s+me\s+understand\b`,
		`\bteach\s+me\b`,
		`\bbreak\s+down\b`,
		`\bin\s+(?:simple|plain)\s+(?:terms|english)\b`,
		`\bclarify\b`,
		`\bwhat(?:'s|\s+is)\s+the\s+difference\s+between\b`,
	},
	TaskResearch: {
		`\bresearch\b`,
		`\bcompare\b`,
		`\bcomparison\b`,
		`\blook\s+up\b`,
		`\bfind\s+(?:out|information|sources)\b`,
		`\bsurvey\b`,
		`\bstate\s+of\s+the\s+art\b`,
		`\bpros\s+and\s+cons\b`,
		`\btrade[-\s]?offs?\b`,
		`\bwhich\s+(?:is|one\s+is)\s+(?:better|best|faster)\b`,
		`\bbest\s+(?:practices|library|framework|tool|approach)\b`,
		`\balternatives?\s+to\b`,
	},
	TaskCreative: {
		`\bwrite\s+(?:a|an)\s+(?:story|poem|song|essay|blog\s+post|article|haiku|tagline|slogan|limerick|screenplay)\b`,
		`\bbrainstorm\b`,
		`\bimagine\b`,
		`\bcreative\b`,
		`\bfiction(?:al)?\b`,
		`\bnarrative\b`,
		`\bpoem\b`,
		`\blyrics\b`,
		`\bplot\s+(?:for|of|twist)\b`,
		`\bcharacter\s+(?:arc|development|backstory)\b`,
		`\bideas\s+for\b`,
	},
	TaskMath: {
		`\bcalculat(?:e|ion)\b`,
		`\bsolve\b`,
		`\bequation\b`,
		`\bintegral\b`,
		`\bderivative\b`,
		`\bproof\b`,
		`\bprove\b`,
		`\btheorem\b`,
		`\bprobability\b`,
		`\bstatistics?\b`,
		`\bformula\b`,
		`\bgeometry\b`,
		`\balgebra\b`,
		`[0-9]+\s*[+\-*/^%]\s*[0-9]+`,
		`\bpercent(?:age)?\b`,
	},
	TaskQA: {
		`^\s*(?:what|who|when|where|which)\b`,
		`\bwhat\s+(?:is|are)\b`,
		`\bwho\s+(?:is|was|are|were)\b`,
		`\bwhen\s+(?:is|was|did|does|will)\b`,
		`\bwhere\s+(?:is|was|are|can)\b`,
		`\bhow\s+(?:many|much|old|far|long|tall)\b`,
		`\bis\s+(?:it|there)\b`,
		`\?\s*$`,
	},
}

// A real stack trace needs at least two of these to count; one frame-like
// line in prose is not enough signal.
var stackTracePatterns = []string{
	`\bat\s+[\w$.]+\s*\([^)]*:\d+(?::\d+)?\)`,
	`Traceback \(most recent call last\)`,
	`File "[^"]+", line \d+`,
	`goroutine \d+ \[`,
	`panic:`,
	`Caused by:`,
	`\w+(?:Error|Exception):`,
	`segmentation fault|SIGSEGV`,
	`\.(?:go|py|js|jsx|ts|tsx|java|rb|rs|c|cpp):\d+`,
	`undefined is not a function|cannot read propert`,
}

var structuredPatterns = []string{
	`\bjson\b`,
	`\byaml\b`,
	`\bxml\b`,
	`\bcsv\b`,
	`\bmarkdown\b`,
	`\b(?:as|in)\s+a\s+table\b`,
	`\btable\s+format\b`,
	`\bformat(?:ted)?\s+(?:as|in|the)\b`,
	`\bschema\b`,
	`\bbullet\s+points?\b`,
	`\bnumbered\s+list\b`,
	`\breturn\s+only\b`,
	`\boutput\s+(?:format|only|as)\b`,
	`\bstructured\s+(?:output|data|format)\b`,
}

var recencyPatterns = []string{
	`\blatest\b`,
	`\bnewest\b`,
	`\bmost\s+recent\b`,
	`\bcurrent(?:ly)?\b`,
	`\bright\s+now\b`,
	`\btoday\b`,
	`\bthis\s+(?:year|month|week)\b`,
	`\brecent(?:ly)?\b`,
	`\bup[-\s]to[-\s]date\b`,
	`\bas\s+of\s+(?:now|today)\b`,
	`\b20(?:2[5-9]|30)\b`,
}

// High-stakes keywords across five families: enterprise deployment,
// legal/compliance, security, payments, and executive audience.
var stakesPatterns = []string{
	`\benterprise\b`,
	`\bproduction\b`,
	`\bmission[-\s]critical\b`,
	`\bcustomer[-\s]facing\b`,
	`\bsla\b`,
	`\blegal\b`,
	`\bcompliance\b`,
	`\bregulat(?:ory|ion)\b`,
	`\bgdpr\b`,
	`\bhipaa\b`,
	`\bsox\b`,
	`\bcontract\b`,
	`\bliabilit(?:y|ies)\b`,
	`\bsecurity\b`,
	`\bvulnerabilit(?:y|ies)\b`,
	`\bencryption\b`,
	`\bauthenticat(?:e|ion)\b`,
	`\bauthoriz(?:e|ation)\b`,
	`\bcredentials?\b`,
	`\bexploit\b`,
	`\bpayments?\b`,
	`\bbilling\b`,
	`\binvoic(?:e|ing)\b`,
	`\btransactions?\b`,
	`\bpayroll\b`,
	`\bboard\s+(?:meeting|presentation|deck)\b`,
	`\bexecutive\b`,
	`\bceo\b`,
	`\bcfo\b`,
	`\bcto\b`,
	`\binvestors?\b`,
	`\bstakeholders?\b`,
}

var languagePatterns = []string{
	`\b(?:javascript|typescript|python|golang|rust|java|kotlin|swift|ruby|php|scala|haskell|elixir|clojure|lua|zig)\b`,
	`c\+\+|\bc#`,
	`\b(?:react|vue|angular|svelte|django|flask|rails|spring|laravel|express|fastapi)\b`,
	`\bnode\.?js\b|\bnext\.?js\b|\bdeno\b`,
	`\b(?:sql|postgres(?:ql)?|mysql|sqlite|mongodb|redis|graphql|kafka)\b`,
	`\b(?:docker|kubernetes|terraform|ansible)\b`,
	`\b(?:html|css|sass|tailwind)\b`,
	`\b(?:numpy|pandas|pytorch|tensorflow)\b`,
}

var codeWordPatterns = []string{
	`\bfunction\b`,
	`\bclass\b`,
	`\bconst\b`,
	`\bdef\b`,
	`\bimport\b`,
	`\bexport\b`,
	`\breturn\b`,
	`\bvar\b`,
	`\blet\b`,
	`\bstruct\b`,
	`\benum\b`,
	`\binterface\b`,
	`\basync\b`,
	`\bawait\b`,
	`\bfunc\b`,
	`=>`,
	`\bnil\b`,
	`\bundefined\b`,
}

// DefaultLibrary compiles the built-in pattern groups. Patterns are fixed
// at build time; a bad expression is a programming error, so compilation
// panics rather than returning an error.
func DefaultLibrary() *Library {
	lib := &Library{
		tasks:      make(map[TaskType][]*regexp.Regexp, len(taskPatterns)),
		stackTrace: compilePatterns(stackTracePatterns),
		structured: compilePatterns(structuredPatterns),
		recency:    compilePatterns(recencyPatterns),
		stakes:     compilePatterns(stakesPatterns),
		languages:  compilePatterns(languagePatterns),
		codeWords:  compilePatterns(codeWordPatterns),
	}
	for task, exprs := range taskPatterns {
		lib.tasks[task] = compilePatterns(exprs)
	}
	return lib
}

func compilePatterns(exprs []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(`(?i)` + expr)
	}
	return compiled
}

func countMatches(patterns []*regexp.Regexp, prompt string) int {
	count := 0
	for _, re := range patterns {
		if re.MatchString(prompt) {
			count++
		}
	}
	return count
}

func anyMatch(patterns []*regexp.Regexp, prompt string) bool {
	for _, re := range patterns {
		if re.MatchString(prompt) {
			return true
		}
	}
	return false
}
