package intent

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/asha/core"
)

// Rule pairs an intent with the pattern that selects it.
type Rule struct {
	Intent  core.Intent
	Pattern *regexp.Regexp
}

// NewRule compiles the alternatives into a single case-insensitive,
// unanchored pattern. It panics if a pattern does not compile.
// Patterns use RE2 syntax, where \b and \d are ASCII-only: a non-ASCII
// letter counts as a word boundary and non-ASCII digits are not digits.
func NewRule(intent core.Intent, alternatives ...string) Rule {
	return Rule{
		Intent:  intent,
		Pattern: regexp.MustCompile("(?i)" + strings.Join(alternatives, "|")),
	}
}

var (
	uploadHints = []string{
		`\bupload\b`, `\battach\b`, `\bsend (?:a )?file\b`,
		`\bprocess (?:my )?(?:report|pdf|image|file)\b`,
		`\bextract\b`, `\bparse (?:this|that|my) (?:report|pdf|image)\b`,
	}
	resultHints = []string{
		`\b(result|results|report|summary)\b`,
		`\bembryology\b`, `\bday\s*(\d+)\b`, `\bblast(?:ocyst)?\b`, `\bgrade[s]?\b`,
		`\bshow (?:my|the) (?:result|summary)\b`,
	}
	resultsQAHints = []string{
		`\bask\b.*\b(my|our)\b.*\bresult[s]?\b`,
		`\bquestion\b.*\bresult[s]?\b`,
		`\bhow many\b.*\b(day|blast|embryo)\b`,
		`\bwhat\b.*\bgrade[s]?\b`,
	}
	appointmentHints = []string{
		`\bappointment\b`, `\bbook\b|\bschedule\b`, `\breschedule\b`, `\bcancel\b.*\bappointment\b`,
		`\bwhen\b.*\bnext\b.*\bappointment\b`, `\bmy next appointment\b`,
	}
	treatmentHints = []string{
		`\btreatment\b`, `\bongoing\b.*\btreatment\b`, `\bprotocol\b`, `\bregimen\b`,
		`\bivf\b|\biui\b|\bfet\b|\bstims?\b`,
	}
	policyHints = []string{
		`\bpolicy\b`, `\binsurance\b`, `\bbilling\b`, `\bconsent\b`, `\bprivacy\b`,
		`\bcancellation\b`, `\brefund\b`, `\bclinic\b.*\bhours\b`, `\bschedule\b|\bappointment\b`,
	}
	greetingHints  = []string{`\bhi\b|\bhello\b|\bhey\b|\bgood (morning|afternoon|evening)\b`}
	smalltalkHints = []string{`\bthanks?\b|\bthank you\b|\bok\b|\bgreat\b|\bnice\b|\bbye\b`}
)

// DefaultRules returns the built-in rules in precedence order.
func DefaultRules() []Rule {
	return []Rule{
		NewRule(core.IntentUploadParse, uploadHints...),
		NewRule(core.IntentPersonalResult, resultHints...),
		NewRule(core.IntentResultsQA, resultsQAHints...),
		NewRule(core.IntentAppointments, appointmentHints...),
		NewRule(core.IntentTreatments, treatmentHints...),
		NewRule(core.IntentPolicy, policyHints...),
		NewRule(core.IntentGreeting, greetingHints...),
		NewRule(core.IntentSmalltalk, smalltalkHints...),
	}
}

// ClinicalTerms are hormone and procedure terms that mark a message as a
// clinical question. They do not change the label today: clinical and
// non-clinical fallbacks both resolve to faq.
var ClinicalTerms = []string{
	"amh", "fsh", "estradiol", "progesterone", "hsg", "ivf", "iui", "icsi",
	"embryo", "transfer", "trigger", "stimulation", "antral", "follicle", "beta hcg", "luteal",
}

// Classifier evaluates an ordered rule list against normalized text.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules         []Rule
	clinicalTerms []string
	logger        *slog.Logger
}

// NewClassifier builds a classifier over rules, evaluated in slice order.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{
		rules:         rules,
		clinicalTerms: ClinicalTerms,
		logger:        slog.Default().With("component", "intent-classifier"),
	}
}

var defaultClassifier = NewClassifier(DefaultRules())

// Classify labels text using the built-in rules.
func Classify(text string) core.Intent {
	return defaultClassifier.Classify(text)
}

// Classify returns the intent of the first rule matching text. Blank text is
// unknown; text matching no rule is faq.
func (c *Classifier) Classify(text string) core.Intent {
	t := normalize(text)
	if t == "" {
		return core.IntentUnknown
	}

	for _, rule := range c.rules {
		if rule.Pattern.MatchString(t) {
			c.logger.Debug("matched intent rule", "intent", rule.Intent)
			return rule.Intent
		}
	}

	if c.Clinical(t) {
		c.logger.Debug("no rule matched, clinical terms present")
		return core.IntentFAQ
	}
	return core.IntentFAQ
}

// Clinical reports whether text mentions any clinical term.
func (c *Classifier) Clinical(text string) bool {
	t := normalize(text)
	for _, term := range c.clinicalTerms {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
