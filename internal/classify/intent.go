package classify

import "strings"

// Intent is the display action a query implies. It biases which search hit
// is chosen, not the search itself.
type Intent string

const (
	IntentZoom      Intent = "zoom"
	IntentHighlight Intent = "highlight"
	IntentNavigate  Intent = "navigate"
	IntentSearch    Intent = "search"
)

type intentGroup struct {
	intent   Intent
	keywords []string
}

// intentGroups is checked in order; the first group with a keyword present
// in the lowercased query wins. Zoom appears twice: once for verbs asking to
// see something, once for nouns naming something visual.
var intentGroups = []intentGroup{
	{IntentZoom, []string{"zoom", "focus", "look at", "show", "see", "display"}},
	{IntentZoom, []string{"figure", "diagram", "graph", "flowchart", "image"}},
	{IntentHighlight, []string{"highlight", "mark", "underline"}},
	{IntentNavigate, []string{"go to", "move to", "open"}},
}

// DetectIntent classifies a free-text query, defaulting to plain search.
func DetectIntent(query string) Intent {
	lower := strings.ToLower(query)

	for _, group := range intentGroups {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.intent
			}
		}
	}
	return IntentSearch
}
