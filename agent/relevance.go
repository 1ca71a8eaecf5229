//
// Tencent is pleased to support the open source community by making trpc-flow-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flow-go is licensed under the Apache License Version 2.0.
//
//

package agent

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// defaultObservationBudget caps the characters of one tool observation.
	defaultObservationBudget = 4000

	truncationMarker = "... [truncated]"
)

// formatObservation renders a tool result for insertion into the
// conversation. List-shaped data keeps the entries most relevant to the user
// query within the character budget; everything else is truncated plainly.
func formatObservation(data any, query string, budget int) string {
	if text, ok := data.(string); ok {
		return truncateText(text, budget)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return truncateText(fmt.Sprintf("%v", data), budget)
	}

	var entries []json.RawMessage
	if json.Unmarshal(raw, &entries) == nil && len(entries) > 1 {
		rendered := make([]string, len(entries))
		for i, entry := range entries {
			rendered[i] = string(entry)
		}
		return strings.Join(selectRelevant(rendered, query, budget), "\n")
	}
	return truncateText(string(raw), budget)
}

// selectRelevant ranks entries by keyword overlap with the query and keeps
// the best-scoring ones within the character budget, most relevant first.
// At least one entry always survives, truncated when oversized.
func selectRelevant(entries []string, query string, budget int) []string {
	if len(entries) == 0 {
		return nil
	}
	terms := keywordTerms(query)

	ranked := make([]string, len(entries))
	copy(ranked, entries)
	scores := make(map[string]float64, len(entries))
	for _, entry := range entries {
		scores[entry] = keywordOverlap(terms, entry)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] > scores[ranked[j]]
	})

	var selected []string
	used := 0
	for _, entry := range ranked {
		n := utf8.RuneCountInString(entry)
		if budget > 0 && used+n > budget {
			continue
		}
		selected = append(selected, entry)
		used += n + 1
	}
	if len(selected) == 0 {
		selected = append(selected, truncateText(ranked[0], budget))
	}
	return selected
}

// truncateText cuts s to at most max runes, marking the cut. A non-positive
// max disables truncation.
func truncateText(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + truncationMarker
}

// keywordTerms lowercases text and splits it into letter/digit runs.
func keywordTerms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// keywordOverlap scores the share of query terms occurring in text.
func keywordOverlap(terms []string, text string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
