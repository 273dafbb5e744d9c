package heuristics

import (
	"strings"
	"testing"
)

func TestExtractTextCounts(t *testing.T) {
	f := ExtractText("The cat sat. The cat ran! Did the cat nap?")
	if f.SentenceCount != 3 {
		t.Fatalf("sentences = %d, want 3", f.SentenceCount)
	}
	if f.WordCount != 11 {
		t.Fatalf("words = %d, want 11", f.WordCount)
	}
	if f.LexicalDiversity <= 0 || f.LexicalDiversity > 1 {
		t.Fatalf("diversity out of range: %f", f.LexicalDiversity)
	}
}

func TestScoreTextDeterministic(t *testing.T) {
	text := "Furthermore, the results demonstrate a consistent pattern. Moreover, the analysis confirms the hypothesis across all measured dimensions of the study."
	a, _ := ScoreText(text)
	b, _ := ScoreText(text)
	if a != b {
		t.Fatalf("score not deterministic: %f vs %f", a, b)
	}
	if a < 0 || a > 100 {
		t.Fatalf("score out of bounds: %f", a)
	}
}

func TestScoreTextFormalityPushesUp(t *testing.T) {
	plain := "went to the shop. bought eggs. dog barked at me again. what a day."
	formal := "Furthermore, it is important to note the outcome. Moreover, the process was consistent. Additionally, in conclusion, the result held."
	ps, _ := ScoreText(plain)
	fs, _ := ScoreText(formal)
	if fs <= ps {
		t.Fatalf("formal text should score higher: formal=%f plain=%f", fs, ps)
	}
}

func TestScoreTextEmpty(t *testing.T) {
	s, f := ScoreText("")
	if s != 0 || f.WordCount != 0 {
		t.Fatalf("empty text should score 0, got %f", s)
	}
}

func TestScoreTextRepetitionDetected(t *testing.T) {
	f := ExtractText(strings.Repeat("buffalo ", 50))
	if f.RepetitionRatio != 1 {
		t.Fatalf("repetition ratio = %f, want 1", f.RepetitionRatio)
	}
	if f.LexicalDiversity >= 0.1 {
		t.Fatalf("diversity should collapse for repeated tokens: %f", f.LexicalDiversity)
	}
}

func TestScoreVideoKeywords(t *testing.T) {
	base, _ := ScoreVideo("https://cdn.example.com/uploads/holiday.mp4", 120)
	sus, f := ScoreVideo("https://cdn.example.com/uploads/sora-generated-clip.mp4", 30)
	if f.SuspectKeywords < 2 {
		t.Fatalf("expected keyword hits, got %d", f.SuspectKeywords)
	}
	if sus <= base {
		t.Fatalf("suspect filename should score higher: %f vs %f", sus, base)
	}
}

func TestScoreVideoBounds(t *testing.T) {
	s, _ := ScoreVideo("ai-generated-synthetic-deepfake-sora.mp4", 10)
	if s < 0 || s > 100 {
		t.Fatalf("score out of bounds: %f", s)
	}
}
