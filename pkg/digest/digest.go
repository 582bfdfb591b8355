// Package digest assembles per-item summaries into the final newsletter
// text.
package digest

import (
	"strings"

	"igdigest/pkg/models"
)

// Assemble joins fragment texts in input order, separated by one blank
// line. Failed fragments are included so the reader sees what went wrong.
// No fragments yields an empty string.
func Assemble(fragments []models.SummaryFragment) string {
	if len(fragments) == 0 {
		return ""
	}

	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Text
	}
	return strings.Join(texts, "\n\n")
}
