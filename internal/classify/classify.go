// Package classify maps a content block's text to a pedagogical type
// through an ordered list of pattern rules.
package classify

import (
	"regexp"

	"github.com/fabricioslv/seu-estudo-app-sub001/internal/structure"
)

// Rule pairs a pattern with the block type it implies.
type Rule struct {
	Pattern *regexp.Regexp
	Type    structure.BlockType
}

// DefaultRules is evaluated in order, first match wins. The patterns are
// best-effort heuristics: false positives and negatives are an accepted
// cost, never a pipeline failure.
var DefaultRules = []Rule{
	// Worked examples outrank the generic exercise header, otherwise
	// "Exercício resolvido" would classify as exercicio.
	{regexp.MustCompile(`(?i)^\s*exerc[íi]cio\s+resolvido\b`), structure.TypeExemplo},
	// Exercise and question headers.
	{regexp.MustCompile(`(?i)^\s*exerc[íi]cios?\b`), structure.TypeExercicio},
	{regexp.MustCompile(`(?i)^\s*quest(?:ão|ao|ões|oes)\b`), structure.TypeQuestao},
	{regexp.MustCompile(`(?i)^\s*atividades?\b`), structure.TypeExercicio},
	// Vestibular-style question headers, e.g. "(ENEM 2019)".
	{regexp.MustCompile(`(?i)^\s*\(?(?:enem|vestibular|fuvest|unicamp|unesp|uerj|ufrj)\b`), structure.TypeQuestao},
	// Answer-key headers.
	{regexp.MustCompile(`(?i)^\s*(?:gabaritos?|respostas?\s+dos?\s+exerc[íi]cios?)\b`), structure.TypeGabarito},
	// Worked-example headers.
	{regexp.MustCompile(`(?i)^\s*exemplos?\b`), structure.TypeExemplo},
}

// Classify returns the type of a block's text. No rule matching means
// plain theory text.
func Classify(text string) structure.BlockType {
	return ClassifyWith(DefaultRules, text)
}

// ClassifyWith evaluates an explicit rule list, first match wins.
func ClassifyWith(rules []Rule, text string) structure.BlockType {
	for _, rule := range rules {
		if rule.Pattern.MatchString(text) {
			return rule.Type
		}
	}
	return structure.TypeTeoria
}

// IsQuestionType reports whether a block type should go through question
// extraction.
func IsQuestionType(t structure.BlockType) bool {
	return t == structure.TypeQuestao || t == structure.TypeExercicio
}
