// Package analytics turns the operator's recent posts into chart series for
// the dashboard.
package analytics

import (
	"sort"
	"time"

	"redditpanel/internal/keywords"
	"redditpanel/internal/panel"
)

const (
	DefaultLimit    = 10
	DefaultKeywords = 50
)

type Kind string

const (
	KindDetails    Kind = "details"
	KindScores     Kind = "scores"
	KindEngagement Kind = "engagement"
	KindGrowth     Kind = "growth"
	KindFrequency  Kind = "frequency"
	KindKeywords   Kind = "keywords"
)

func Kinds() []Kind {
	return []Kind{KindDetails, KindScores, KindEngagement, KindGrowth, KindFrequency, KindKeywords}
}

// Valid reports whether Build knows kind.
func Valid(kind Kind) bool {
	for _, k := range Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

type DetailRow struct {
	Title    string `json:"title"`
	Upvotes  int    `json:"upvotes"`
	Comments int    `json:"comments"`
	URL      string `json:"url"`
}

type ScorePoint struct {
	Title   string `json:"title"`
	Upvotes int    `json:"upvotes"`
}

type EngagementPoint struct {
	Title       string  `json:"title"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	NumComments int     `json:"num_comments"`
	Score       int     `json:"score"`
}

type GrowthPoint struct {
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
}

type DayCount struct {
	Date      string `json:"date"` // YYYY-MM-DD, UTC
	PostCount int    `json:"post_count"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

func Details(posts []panel.PostSummary) []DetailRow {
	out := make([]DetailRow, 0, len(posts))
	for _, p := range posts {
		out = append(out, DetailRow{Title: p.Title, Upvotes: p.Score, Comments: p.NumComments, URL: p.URL})
	}
	return out
}

func Scores(posts []panel.PostSummary) []ScorePoint {
	out := make([]ScorePoint, 0, len(posts))
	for _, p := range posts {
		out = append(out, ScorePoint{Title: p.Title, Upvotes: p.Score})
	}
	return out
}

func Engagement(posts []panel.PostSummary) []EngagementPoint {
	out := make([]EngagementPoint, 0, len(posts))
	for _, p := range posts {
		out = append(out, EngagementPoint{
			Title:       p.Title,
			UpvoteRatio: p.UpvoteRatio,
			NumComments: p.NumComments,
			Score:       p.Score,
		})
	}
	return out
}

func Growth(posts []panel.PostSummary) []GrowthPoint {
	out := make([]GrowthPoint, 0, len(posts))
	for _, p := range posts {
		out = append(out, GrowthPoint{Title: p.Title, CreatedAt: unixUTC(p.CreatedUTC), Score: p.Score})
	}
	return out
}

// Frequency counts posts per UTC day, oldest day first. Posts without a
// creation time are skipped.
func Frequency(posts []panel.PostSummary) []DayCount {
	counts := map[string]int{}
	for _, p := range posts {
		if p.CreatedUTC <= 0 {
			continue
		}
		counts[unixUTC(p.CreatedUTC).Format(time.DateOnly)]++
	}
	out := make([]DayCount, 0, len(counts))
	for d, n := range counts {
		out = append(out, DayCount{Date: d, PostCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Keywords counts title words across posts, most frequent first.
func Keywords(posts []panel.PostSummary, max int) []WordCount {
	if max <= 0 {
		max = DefaultKeywords
	}
	counts := map[string]int{}
	for _, p := range posts {
		for _, w := range keywords.Extract(p.Title) {
			counts[w]++
		}
	}
	out := make([]WordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, WordCount{Word: w, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// Build returns the series for kind, or false for an unknown kind.
func Build(kind Kind, posts []panel.PostSummary) (any, bool) {
	switch kind {
	case KindDetails:
		return Details(posts), true
	case KindScores:
		return Scores(posts), true
	case KindEngagement:
		return Engagement(posts), true
	case KindGrowth:
		return Growth(posts), true
	case KindFrequency:
		return Frequency(posts), true
	case KindKeywords:
		return Keywords(posts, DefaultKeywords), true
	default:
		return nil, false
	}
}

func unixUTC(sec float64) time.Time {
	return time.Unix(int64(sec), 0).UTC()
}
