// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jeranaias/microstep-tui/internal/model"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// FuzzyMatch scores query against target. Every query rune must appear in
// target in order (case-insensitive); consecutive runs, word starts and the
// very first rune earn bonuses, and longer targets pay a small penalty.
//
//   - "wr" matches "Write report" strongly (start + word boundary)
//   - "rpt" matches "Write report" weakly
//   - "xyz" does not match
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}

	queryRunes := []rune(strings.ToLower(query))
	targetRunes := []rune(strings.ToLower(target))
	if len(queryRunes) > len(targetRunes) {
		return 0, false
	}

	targetOrig := []rune(target)
	queryOrig := []rune(query)

	queryPos := 0
	lastMatch := -1
	for pos := 0; pos < len(targetRunes) && queryPos < len(queryRunes); pos++ {
		if targetRunes[pos] != queryRunes[queryPos] {
			continue
		}
		s := 1
		if lastMatch == pos-1 {
			s += 5
		}
		if pos == 0 {
			s += 10
		}
		if isWordBoundary(targetRunes, pos) {
			s += 7
		}
		if pos < len(targetOrig) && queryPos < len(queryOrig) && targetOrig[pos] == queryOrig[queryPos] {
			s += 2
		}
		score += s
		lastMatch = pos
		queryPos++
	}

	matched = queryPos == len(queryRunes)
	if matched {
		score -= len(targetRunes) / 4
	}
	return score, matched
}

// isWordBoundary returns true after a separator or at a camelCase hump.
func isWordBoundary(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	if pos >= len(runes) {
		return false
	}
	prev := runes[pos-1]
	if prev == ' ' || prev == '/' || prev == '-' || prev == '_' {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(runes[pos])
}

// FilterTasks keeps the tasks whose title or description fuzzy-matches
// query. Title matches come first, then description-only matches; each
// group is ordered best match first, ties in list order. An empty query
// returns tasks unchanged.
func FilterTasks(query string, tasks []model.Task) []model.Task {
	query = strings.TrimSpace(query)
	if query == "" {
		return tasks
	}

	type scored struct {
		task  model.Task
		score int
	}
	var byTitle, byDesc []scored
	for _, t := range tasks {
		if s, ok := FuzzyMatch(query, t.Title); ok {
			byTitle = append(byTitle, scored{task: t, score: s})
			continue
		}
		if t.Description == "" {
			continue
		}
		if s, ok := FuzzyMatch(query, t.Description); ok {
			byDesc = append(byDesc, scored{task: t, score: s})
		}
	}
	best := func(h []scored) func(i, j int) bool {
		return func(i, j int) bool { return h[i].score > h[j].score }
	}
	sort.SliceStable(byTitle, best(byTitle))
	sort.SliceStable(byDesc, best(byDesc))

	out := make([]model.Task, 0, len(byTitle)+len(byDesc))
	for _, h := range append(byTitle, byDesc...) {
		out = append(out, h.task)
	}
	return out
}
