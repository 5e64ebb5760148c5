package chat

import "strings"

// Intent is the tagged command recognized from a raw chat line. Keeping the
// keyword heuristics here keeps the state machine free of string matching.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentGreeting
	IntentSearch
	IntentBook
	IntentReport
	IntentHelp
	IntentReset
)

var intentKeywords = []struct {
	intent Intent
	words  []string
}{
	{IntentGreeting, []string{"hello", "hi", "hey", "start"}},
	{IntentSearch, []string{"check", "availability", "flights", "search"}},
	{IntentBook, []string{"book", "booking", "reserve"}},
	{IntentReport, []string{"report", "summary"}},
	{IntentHelp, []string{"help", "commands"}},
	{IntentReset, []string{"reset", "cancel", "start over"}},
}

// ParseIntent matches text against the keyword sets in priority order.
// Text is expected to be lower-cased already. Keywords match whole words
// only, so city names like "Chicago" do not trip the "hi" greeting.
func ParseIntent(text string) Intent {
	tokens := tokenize(text)
	for _, k := range intentKeywords {
		if matchesAny(text, tokens, k.words) {
			return k.intent
		}
	}
	return IntentUnknown
}

// ParseSearch extracts the origin and destination phrases from a search line
// such as "check flights from new york to miami". The origin phrase is the
// span between the "from" and "to" tokens, the destination phrase everything
// after "to"; callers resolve the phrases against the catalog.
func ParseSearch(text string) (origin, destination string, ok bool) {
	words := strings.Fields(text)
	fromIdx, toIdx := -1, -1
	for i, w := range words {
		if w == "from" && fromIdx == -1 {
			fromIdx = i
		}
		if w == "to" && fromIdx != -1 && i > fromIdx {
			toIdx = i
			break
		}
	}
	if fromIdx == -1 || toIdx == -1 || fromIdx+1 >= toIdx || toIdx+1 >= len(words) {
		return "", "", false
	}
	origin = strings.Join(words[fromIdx+1:toIdx], " ")
	destination = strings.Join(words[toIdx+1:], " ")
	return origin, destination, true
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,!?:;'\"")
		if w != "" {
			tokens[w] = struct{}{}
		}
	}
	return tokens
}

func matchesAny(text string, tokens map[string]struct{}, words []string) bool {
	for _, w := range words {
		if strings.ContainsRune(w, ' ') {
			if strings.Contains(text, w) {
				return true
			}
			continue
		}
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}
