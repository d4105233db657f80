// Package classifier assigns a document type label from filename and content
// signals using an ordered, data-driven rule table.
// Rules are loaded with resolution order:
// 1. Operator override: classifier.rules_file
// 2. Embedded default: rules.yaml
package classifier

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/kintari/internal/common"
	"github.com/ternarybob/kintari/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// Stage selects which input a rule inspects
type Stage string

const (
	StageFilename Stage = "filename"
	StageContent  Stage = "content"
)

// Rule is one row of the rule table
type Rule struct {
	Name          string              `yaml:"name"`
	Label         models.DocumentType `yaml:"label"`
	Stage         Stage               `yaml:"stage"`
	Tokens        []string            `yaml:"tokens"`
	Phrases       []string            `yaml:"phrases"`
	ContentWindow int                 `yaml:"content_window"`
}

type ruleTable struct {
	Rules []Rule `yaml:"rules"`
}

// Classifier is total: every input yields exactly one label
type Classifier struct {
	rules  []Rule
	logger arbor.ILogger
}

// NewClassifier loads rulesFile when set, falling back to the embedded table
// with a warning if the override is missing or invalid
func NewClassifier(rulesFile string, logger arbor.ILogger) *Classifier {
	if rulesFile != "" {
		rules, err := loadRulesFile(rulesFile)
		if err == nil {
			logger.Info().Str("rules_file", rulesFile).Int("rules", len(rules)).Msg("Classifier rules loaded from override")
			return &Classifier{rules: rules, logger: logger}
		}
		logger.Warn().Err(err).Str("rules_file", rulesFile).Msg("Invalid classifier rules override, using embedded rules")
	}

	rules, err := parseRules(embeddedRules)
	if err != nil {
		// The embedded table is validated by tests
		panic(fmt.Sprintf("embedded classifier rules invalid: %v", err))
	}
	return &Classifier{rules: rules, logger: logger}
}

func loadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return parseRules(data)
}

func parseRules(data []byte) ([]Rule, error) {
	var table ruleTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(table.Rules) == 0 {
		return nil, fmt.Errorf("rule table is empty")
	}

	for i := range table.Rules {
		rule := &table.Rules[i]
		if err := rule.validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rule.Name, err)
		}
		for k, t := range rule.Tokens {
			rule.Tokens[k] = common.Fold(t)
		}
		for k, p := range rule.Phrases {
			rule.Phrases[k] = common.Fold(p)
		}
	}
	return table.Rules, nil
}

func (r *Rule) validate() error {
	if !r.Label.IsValid() {
		return fmt.Errorf("unknown label %q", r.Label)
	}
	switch r.Stage {
	case StageFilename:
	case StageContent:
		if len(r.Tokens) > 0 {
			return fmt.Errorf("tokens apply to filename rules only")
		}
	default:
		return fmt.Errorf("unknown stage %q", r.Stage)
	}
	if len(r.Tokens) == 0 && len(r.Phrases) == 0 {
		return fmt.Errorf("rule has no tokens or phrases")
	}
	if r.ContentWindow < 0 {
		return fmt.Errorf("negative content_window")
	}
	return nil
}

// Classify returns the label of the first matching rule, or OTHER
func (c *Classifier) Classify(filename, content string) models.DocumentType {
	label, _ := c.Match(filename, content)
	return label
}

// Match is Classify plus the name of the rule that decided, empty for the fallback
func (c *Classifier) Match(filename, content string) (models.DocumentType, string) {
	name := common.Fold(strings.TrimSuffix(filename, filepath.Ext(filename)))
	tokens := filenameTokens(name)
	folded := map[int]string{}

	for _, rule := range c.rules {
		var matched bool
		switch rule.Stage {
		case StageFilename:
			matched = matchTokens(tokens, rule.Tokens) || matchPhrases(name, rule.Phrases)
		case StageContent:
			window, ok := folded[rule.ContentWindow]
			if !ok {
				window = common.Fold(leading(content, rule.ContentWindow))
				folded[rule.ContentWindow] = window
			}
			matched = matchPhrases(window, rule.Phrases)
		}
		if matched {
			return rule.Label, rule.Name
		}
	}
	return models.DocumentTypeOther, ""
}

func filenameTokens(name string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, t := range strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[t] = struct{}{}
	}
	return tokens
}

func matchTokens(tokens map[string]struct{}, want []string) bool {
	for _, w := range want {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}

func matchPhrases(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// leading returns the first n characters of s, or all of s when n is zero
func leading(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
