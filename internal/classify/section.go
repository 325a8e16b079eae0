// Package classify holds the two deterministic keyword taggers: semantic
// section labels for ingested content, and display intent for queries. Both
// are ordered rule tables so that priority is data, not control flow.
package classify

import "strings"

// Well-known section labels that are not produced by the rule table.
const (
	SectionGeneral = "general"
	SectionImage   = "image"
)

type sectionRule struct {
	keyword string
	label   string
}

// sectionRules is checked in order; the first keyword found in either the
// text or the title wins.
var sectionRules = []sectionRule{
	{"problem", "problem"},
	{"solution", "solution"},
	{"implement", "implementation"},
	{"result", "result"},
	{"advantage", "advantage"},
	{"step", "steps"},
}

// Section labels a piece of slide content by case-insensitive substring
// match over the rule table, falling back to "general".
func Section(text, title string) string {
	textLower := strings.ToLower(text)
	titleLower := strings.ToLower(title)

	for _, rule := range sectionRules {
		if strings.Contains(textLower, rule.keyword) || strings.Contains(titleLower, rule.keyword) {
			return rule.label
		}
	}
	return SectionGeneral
}
