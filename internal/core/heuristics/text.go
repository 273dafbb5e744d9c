// Package heuristics contains the pure scoring functions behind the fallback
// analyzer. Scores are rough signals, not science: they exist so the service
// can keep answering when the upstream model is down
package heuristics

import (
	"strings"
	"unicode"
)

// TextFeatures is the feature vector extracted from a text payload
type TextFeatures struct {
	WordCount        int
	SentenceCount    int
	AvgSentenceLen   float64
	LexicalDiversity float64 // unique words / total words
	RepetitionRatio  float64 // share of the most frequent word
	FormalityMarkers int
}

// transition phrases that LLM output leans on noticeably harder than humans do
var formalityMarkers = []string{
	"furthermore",
	"moreover",
	"consequently",
	"additionally",
	"in conclusion",
	"it is important to note",
	"it is worth noting",
	"in summary",
	"on the other hand",
	"as previously mentioned",
}

// ExtractText computes the feature vector for a text payload
func ExtractText(text string) TextFeatures {
	lower := strings.ToLower(text)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})

	f := TextFeatures{WordCount: len(words)}

	f.SentenceCount = countSentences(text)
	if f.SentenceCount > 0 {
		f.AvgSentenceLen = float64(f.WordCount) / float64(f.SentenceCount)
	}

	if len(words) > 0 {
		seen := make(map[string]int, len(words))
		top := 0
		for _, w := range words {
			seen[w]++
			if seen[w] > top {
				top = seen[w]
			}
		}
		f.LexicalDiversity = float64(len(seen)) / float64(len(words))
		f.RepetitionRatio = float64(top) / float64(len(words))
	}

	for _, m := range formalityMarkers {
		f.FormalityMarkers += strings.Count(lower, m)
	}
	return f
}

// ScoreText maps features to a base confidence in [0,100] that the text is
// machine generated. Higher formality, uniform sentences and low diversity
// push the score up
func ScoreText(text string) (float64, TextFeatures) {
	f := ExtractText(text)
	if f.WordCount == 0 {
		return 0, f
	}

	score := 35.0

	// low lexical diversity reads as templated output
	switch {
	case f.LexicalDiversity < 0.35:
		score += 20
	case f.LexicalDiversity < 0.55:
		score += 10
	case f.LexicalDiversity > 0.8:
		score -= 10
	}

	// mid-length, even sentences are the LLM sweet spot
	if f.AvgSentenceLen >= 12 && f.AvgSentenceLen <= 25 {
		score += 12
	} else if f.AvgSentenceLen > 35 || (f.AvgSentenceLen > 0 && f.AvgSentenceLen < 5) {
		score -= 8
	}

	// heavy repetition of a single token cuts both ways; treat extreme as human sloppiness
	if f.RepetitionRatio > 0.2 {
		score -= 6
	}

	score += float64(min(f.FormalityMarkers, 5)) * 5

	// very short samples carry almost no signal
	if f.WordCount < 20 {
		score -= 15
	}

	return clamp(score, 0, 100), f
}

func countSentences(s string) int {
	n := 0
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' {
			n++
		}
	}
	if n == 0 && strings.TrimSpace(s) != "" {
		n = 1
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
