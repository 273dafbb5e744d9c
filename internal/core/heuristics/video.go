package heuristics

import (
	"path"
	"strings"
)

// VideoFeatures is the feature vector extracted from video request metadata.
// There is no frame analysis here; only what the URL and metadata give away
type VideoFeatures struct {
	Filename        string
	SuspectKeywords int
	DurationSeconds float64
	DurationKnown   bool
}

var videoKeywords = []string{
	"ai", "generated", "synthetic", "deepfake", "sora", "midjourney", "runway", "genai",
}

// ExtractVideo computes the feature vector from a file URL and duration
func ExtractVideo(fileURL string, durationSeconds float64) VideoFeatures {
	name := strings.ToLower(path.Base(fileURL))
	f := VideoFeatures{
		Filename:        name,
		DurationSeconds: durationSeconds,
		DurationKnown:   durationSeconds > 0,
	}
	for _, k := range videoKeywords {
		if strings.Contains(name, k) {
			f.SuspectKeywords++
		}
	}
	return f
}

// ScoreVideo maps video features to a base confidence in [0,100]
func ScoreVideo(fileURL string, durationSeconds float64) (float64, VideoFeatures) {
	f := ExtractVideo(fileURL, durationSeconds)

	score := 40.0
	score += float64(min(f.SuspectKeywords, 3)) * 15

	// generated clips cluster in the seconds-to-a-minute band
	if f.DurationKnown {
		switch {
		case f.DurationSeconds <= 60:
			score += 10
		case f.DurationSeconds > 600:
			score -= 15
		}
	}

	return clamp(score, 0, 100), f
}
