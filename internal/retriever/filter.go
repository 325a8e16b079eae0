// Package retriever answers free-text queries: it classifies the display
// intent, embeds the query, searches the vector index and projects the best
// surviving hit into a result.
package retriever

import (
	"github.com/oratohq/orato/internal/classify"
	"github.com/oratohq/orato/internal/parser"
	"github.com/oratohq/orato/internal/vectordb"
)

// Filter applies the intent-conditioned post-filter over search hits. Zoom
// keeps image records, highlight keeps text records; when the wanted subset
// is empty the original hits pass through unchanged, so a non-empty input
// never filters down to nothing. Navigate and search are identity.
func Filter(results []vectordb.SearchResult, intent classify.Intent) []vectordb.SearchResult {
	var want parser.ObjectKind
	switch intent {
	case classify.IntentZoom:
		want = parser.KindImage
	case classify.IntentHighlight:
		want = parser.KindText
	default:
		return results
	}

	var kept []vectordb.SearchResult
	for _, r := range results {
		if r.Metadata.Type == want {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		return results
	}
	return kept
}
