package engine

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RuleSet holds the keyword and pattern tables the engine scores against.
// The defaults are a complete, maintainable table; deployments can extend
// them from a YAML file without recompiling.
type RuleSet struct {
	// DecisionMakerTitles matches titles with buying authority.
	DecisionMakerTitles []string `yaml:"decision_maker_titles"`
	// PersonalMailDomains are free-mail providers that signal a non-business contact.
	PersonalMailDomains []string `yaml:"personal_mail_domains"`
	// AcademicIndicators flag student/researcher inquiries.
	AcademicIndicators []string `yaml:"academic_indicators"`
	// BudgetPhrases signal budget or purchasing authority in the description.
	BudgetPhrases []string `yaml:"budget_phrases"`

	titleRe *regexp.Regexp
}

// DefaultRuleSet returns the built-in rule tables.
func DefaultRuleSet() *RuleSet {
	rs := &RuleSet{
		DecisionMakerTitles: []string{
			"ceo", "cto", "cfo", "coo", "cio", "ciso", "cmo",
			"chief", "founder", "co-founder", "owner", "president",
			"vp", "vice president", "svp", "evp",
			"director", "head of", "manager", "principal", "partner",
		},
		PersonalMailDomains: []string{
			"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
			"aol.com", "icloud.com", "proton.me", "protonmail.com",
			"gmx.com", "mail.com", "live.com", "msn.com", "yandex.com",
		},
		AcademicIndicators: []string{
			"student", "university", "thesis", "dissertation",
			"research paper", "homework", "coursework", "professor",
			"academic", "phd candidate", "school project", "class project",
		},
		BudgetPhrases: []string{
			"budget", "approved", "funding", "purchasing", "procurement",
			"authorized to buy", "ready to buy", "decision maker",
			"sign off", "quote", "pricing for", "contract",
		},
	}
	rs.compile()
	return rs
}

// LoadRuleSet reads a YAML rule file and merges it over the defaults.
// Lists in the file are appended to the built-in tables.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: read rules %s", path)
	}

	var override RuleSet
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "engine: parse rules %s", path)
	}

	rs := DefaultRuleSet()
	rs.DecisionMakerTitles = append(rs.DecisionMakerTitles, override.DecisionMakerTitles...)
	rs.PersonalMailDomains = append(rs.PersonalMailDomains, override.PersonalMailDomains...)
	rs.AcademicIndicators = append(rs.AcademicIndicators, override.AcademicIndicators...)
	rs.BudgetPhrases = append(rs.BudgetPhrases, override.BudgetPhrases...)
	rs.compile()
	return rs, nil
}

func (rs *RuleSet) compile() {
	escaped := make([]string, len(rs.DecisionMakerTitles))
	for i, t := range rs.DecisionMakerTitles {
		escaped[i] = regexp.QuoteMeta(t)
	}
	rs.titleRe = regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

// MatchesDecisionMakerTitle reports whether the title carries buying authority.
func (rs *RuleSet) MatchesDecisionMakerTitle(title string) bool {
	if title == "" {
		return false
	}
	return rs.titleRe.MatchString(title)
}

// IsPersonalEmail reports whether the address uses a known free-mail domain.
func (rs *RuleSet) IsPersonalEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, d := range rs.PersonalMailDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// HasAcademicIndicator scans the given texts for student/academic signals.
func (rs *RuleSet) HasAcademicIndicator(texts ...string) bool {
	return containsAny(rs.AcademicIndicators, texts)
}

// HasBudgetPhrase scans the given texts for budget/authority signals.
func (rs *RuleSet) HasBudgetPhrase(texts ...string) bool {
	return containsAny(rs.BudgetPhrases, texts)
}

func containsAny(terms []string, texts []string) bool {
	for _, text := range texts {
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
