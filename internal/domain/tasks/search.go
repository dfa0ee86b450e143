package tasks

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// titleSource implements fuzzy.Source over task titles and descriptions.
type titleSource []Task

func (s titleSource) String(i int) string {
	return s[i].Title + " " + s[i].Description
}

func (s titleSource) Len() int { return len(s) }

// Search returns tasks whose title or description fuzzy-matches query, best
// match first. A blank query returns every task in batch order.
func Search(tasks []Task, query string) []Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]Task(nil), tasks...)
	}

	lowered := make(titleSource, len(tasks))
	for i, t := range tasks {
		t.Title = strings.ToLower(t.Title)
		t.Description = strings.ToLower(t.Description)
		lowered[i] = t
	}

	matches := fuzzy.FindFrom(query, lowered)
	out := make([]Task, len(matches))
	for i, m := range matches {
		out[i] = tasks[m.Index]
	}
	return out
}
