package matcher

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// PatternSet is the serialisable form of a Patterns matcher. Phrases are
// matched literally on word boundaries; the other lists are regular
// expressions. All matching is case-insensitive.
type PatternSet struct {
	SensitiveInfo    []string `yaml:"sensitive_info"`
	Verification     []string `yaml:"verification"`
	Profanity        []string `yaml:"profanity"`
	ProfanityPhrases []string `yaml:"profanity_phrases"`
}

// Patterns is a deterministic Matcher backed by compiled regexes.
type Patterns struct {
	byCategory map[Category][]*regexp.Regexp
}

func (p *Patterns) Matches(_ context.Context, text string, c Category) bool {
	for _, re := range p.byCategory[c] {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Compile builds a Patterns matcher. Empty lists in set fall back to the
// defaults for that list.
func Compile(set PatternSet) (*Patterns, error) {
	def := DefaultPatternSet()
	pick := func(v, d []string) []string {
		if len(v) == 0 {
			return d
		}
		return v
	}

	p := &Patterns{byCategory: map[Category][]*regexp.Regexp{}}
	add := func(c Category, exprs []string, literal bool) error {
		for _, e := range exprs {
			src := e
			if literal {
				src = `\b` + regexp.QuoteMeta(e) + `\b`
			}
			re, err := regexp.Compile(`(?i)` + src)
			if err != nil {
				return fmt.Errorf("%s pattern %q: %w", c, e, err)
			}
			p.byCategory[c] = append(p.byCategory[c], re)
		}
		return nil
	}

	if err := add(SensitiveInfo, pick(set.SensitiveInfo, def.SensitiveInfo), false); err != nil {
		return nil, err
	}
	if err := add(Verification, pick(set.Verification, def.Verification), false); err != nil {
		return nil, err
	}
	if err := add(Profanity, pick(set.Profanity, def.Profanity), false); err != nil {
		return nil, err
	}
	if err := add(Profanity, pick(set.ProfanityPhrases, def.ProfanityPhrases), true); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadPatterns reads a YAML PatternSet from path and compiles it.
func LoadPatterns(path string) (*Patterns, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var set PatternSet
	if err := yaml.Unmarshal(b, &set); err != nil {
		return nil, fmt.Errorf("patterns decode: %w", err)
	}
	return Compile(set)
}

// Default compiles the built-in pattern set.
func Default() *Patterns {
	p, err := Compile(DefaultPatternSet())
	if err != nil {
		panic(err)
	}
	return p
}

func DefaultPatternSet() PatternSet {
	return PatternSet{
		SensitiveInfo: []string{
			// balances and payments
			`balance\s+(?:is|of|shows|shows as|at|available)?\s+\$?[\d,]+\.?\d*`,
			`(?:you|your account|customer)\s+(?:currently )?(?:has|have|owe[sd]?|are carrying)\s+(?:a )?(?:balance|debt|amount)(?:\s+of)?\s+\$?[\d,]+\.?\d*`,
			`(?:account|current|available)\s+balance\s+(?:is|of|at|available)?\s+\$?[\d,]+\.?\d*`,
			`(?:minimum|past due|last|recent|next|monthly) (?:payment|bill|amount due)(?:\s+is)?\s+\$?[\d,]+\.?\d*`,
			`(?:total|outstanding|remaining) (?:balance|amount|debt)(?:\s+is)?\s+\$?[\d,]+\.?\d*`,
			`(?:paid|charged|deposited|withdrew|transferred)\s+\$?[\d,]+\.?\d*`,
			`transaction(?:\s+amount)?\s+(?:of|is|was)?\s+\$?[\d,]+\.?\d*`,
			// account and card identifiers
			`account\s+(?:number|#)\s+(?:is|ends in|last digits|ending with)?\s+[\*x]?\d+`,
			`last\s+(?:\d+|four|five|six)\s+(?:digits|numbers)\s+(?:of|is|are)?\s+\d+`,
			`(?:your|the)\s+account\s+(?:number|ending|ends|last digits)\s+(?:with|in|is)?\s+\d+`,
			`card\s+(?:number|#)\s+(?:ending|ends|last digits)\s+(?:with|in)?\s+\d+`,
			`(?:credit|debit)\s+card\s+(?:ending|ends|last digits)\s+(?:with|in)?\s+\d+`,
			`routing\s+number\s+(?:is|of)?\s+\d+`,
			// loans and rates
			`interest\s+rate\s+(?:is|of|at)?\s+\d+\.?\d*\s*%`,
			`loan\s+(?:amount|balance|principal)\s+(?:is|of|remaining)?\s+\$?[\d,]+\.?\d*`,
			`(?:APR|annual percentage rate)\s+(?:is|of|at)?\s+\d+\.?\d*\s*%`,
			// dates
			`expir(?:y|ation)\s+date\s+(?:is|of)?\s+\d{1,2}[/\-]\d{1,2}[/\-]?\d{0,4}`,
			`due\s+date\s+(?:is|of|on)?\s+\d{1,2}[/\-]\d{1,2}[/\-]?\d{0,4}`,
			// personal details
			`(?:your|the) (?:address|email|phone|contact number|zip code)\s+(?:is|shows as|listed as)?\s+\w+`,
			`(?:full|partial) (?:SSN|social security number)\s+(?:is|ending in)?\s+[\*x]?\d+`,
		},
		Verification: []string{
			// date of birth
			`(?:can|could) (?:you|I) (?:please |kindly )?(?:verify|confirm|tell me|provide|share)(?:\s+your)?\s+(?:date of birth|DOB|birthday)`,
			`(?:what|when)(?:'s| is) your (?:date of birth|DOB|birthday)`,
			`(?:I need to|I'll need to|I have to|need to|must) (?:verify|confirm)(?:\s+your)?\s+(?:date of birth|DOB|birthday)`,
			`for verification(?:\s+purposes)?,? (?:what is|can you tell me)(?:\s+your)?\s+(?:date of birth|DOB|birthday)`,
			// address
			`(?:can|could) (?:you|I) (?:please |kindly )?(?:verify|confirm|tell me|provide|share)(?:\s+your)?\s+(?:address|mailing address|home address|billing address|residential address)`,
			`(?:what|where)(?:'s| is) your (?:address|mailing address|home address|billing address|residential address)`,
			`(?:I need to|I'll need to|I have to|need to|must) (?:verify|confirm)(?:\s+your)?\s+(?:address|mailing address|home address|billing address|residential address)`,
			`for verification(?:\s+purposes)?,? (?:what is|can you tell me)(?:\s+your)?\s+(?:address|mailing address|home address|billing address|residential address)`,
			// SSN
			`(?:can|could) (?:you|I) (?:please |kindly )?(?:verify|confirm|tell me|provide|share)(?:\s+your)?\s+(?:social security number|SSN|last four of your social|last four digits of your SSN)`,
			`(?:what|what's) (?:is |are )?(?:your|the last|the) (?:social security number|SSN|last four of your social|last four digits of your SSN)`,
			`(?:I need to|I'll need to|I have to|need to|must) (?:verify|confirm)(?:\s+your)?\s+(?:social security number|SSN|last four of your social|last four digits of your SSN)`,
			`for verification(?:\s+purposes)?,? (?:what is|can you tell me)(?:\s+your)?\s+(?:social security number|SSN|last four of your social|last four digits of your SSN)`,
			// identity in general
			`(?:I need to|I'll need to|I have to|need to|must) (?:verify|confirm|authenticate)(?:\s+your)?\s+(?:identity|ID|identification)`,
			`for (?:security|verification|authentication) (?:purposes|reasons|measures)`,
			`before (?:I|we) (?:can|could|proceed|continue|access|provide|share) (?:that|this|account|information|details)`,
			`(?:can|could) (?:you|I) (?:please |kindly )?(?:verify|confirm|authenticate)(?:\s+your)?\s+(?:identity|ID|identification)`,
			// security questions
			`(?:security|verification) question`,
			`mother's maiden name`,
			`first pet'?s name`,
			`(?:childhood|high school|elementary school) (?:street|address|school)`,
		},
		Profanity: []string{
			`\bass\b`, `\bshit\b`, `\bfuck\b`, `\bdamn\b`, `\bbitch\b`,
			`\bcrap\b`, `\bhell\b`, `\bmotherfucker\b`, `\bwtf\b`, `\bpiss\b`,
			`\bdick\b`, `\bcunt\b`, `\bbugger\b`, `\bbastard\b`, `\bslut\b`,
			// obfuscated
			`f\*+`, `s\*+`, `b\*+`, `a\*+`, `d\*+`,
			`f[^a-zA-Z]*u[^a-zA-Z]*c[^a-zA-Z]*k`,
			`s[^a-zA-Z]*h[^a-zA-Z]*i[^a-zA-Z]*t`,
		},
		ProfanityPhrases: []string{
			"shut up", "go to hell", "screw you",
			"get lost", "idiot", "stupid", "dumb",
			"shut the hell up", "what the hell", "what the heck",
		},
	}
}
