package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/pders01/reel/internal/storage"
)

// Engine scores videos in memory without an index. It backs search when
// the bleve index cannot be opened.
type Engine struct {
	mu     sync.RWMutex
	videos map[int64]*storage.Video
}

func NewEngine() *Engine {
	return &Engine{videos: make(map[int64]*storage.Video)}
}

func (e *Engine) Index(videos []*storage.Video) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range videos {
		e.videos[v.ID] = v
	}
	return nil
}

func (e *Engine) DocCount() (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.videos), nil
}

func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	e.mu.RLock()
	results := make([]*Result, 0)
	for _, v := range e.videos {
		if r := searchVideo(v, terms); r != nil {
			results = append(results, r)
		}
	}
	e.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].VideoID < results[j].VideoID
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func searchVideo(v *storage.Video, terms []string) *Result {
	var matches []Match
	var total float64

	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{"username", v.Username, 3.0},
		{"description", v.Description, 2.0},
		{"topic", v.Topic, 1.5},
	}
	for _, f := range fields {
		if score := scoreField(f.text, terms, f.weight); score > 0 {
			matches = append(matches, Match{Field: f.name, Text: truncate(f.text, 150), Weight: score})
			total += score
		}
	}

	if total == 0 {
		return nil
	}
	return &Result{
		VideoID:     v.ID,
		Username:    v.Username,
		Description: v.Description,
		Topic:       v.Topic,
		Score:       total,
		Matches:     matches,
	}
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// tokenize breaks text into lower-case terms, skipping single characters
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if len([]rune(current.String())) > 1 {
		terms = append(terms, current.String())
	}

	return terms
}

// truncate limits text length with ellipsis
func truncate(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	return string(r[:maxLen-1]) + "…"
}
