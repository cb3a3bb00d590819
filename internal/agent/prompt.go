package agent

import (
	"fmt"
	"sort"
	"strings"
)

// buildPrompt assembles the request-scoped context payload. The facts block
// carries a distinct heading so the model can tell known facts apart from
// things previously said in the transcript.
func buildPrompt(facts map[string]string, notes []string, message string) string {
	var b strings.Builder

	b.WriteString("Known facts about this user:\n")
	if len(facts) == 0 {
		b.WriteString("(none recorded)\n")
	} else {
		keys := make([]string, 0, len(facts))
		for k := range facts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, facts[k])
		}
	}

	if len(notes) > 0 {
		b.WriteString("\nPossibly relevant notes:\n")
		for _, n := range notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}

	b.WriteString("\nUser message: ")
	b.WriteString(message)
	return b.String()
}
