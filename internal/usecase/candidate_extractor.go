package usecase

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

// wordPattern matches word-boundary runs of letters, digits and underscores
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// CandidateExtractor ranks vocabulary terms by how often they appear in post titles
type CandidateExtractor struct {
	limit int
	log   *logger.Logger
}

// NewCandidateExtractor creates an extractor that keeps at most limit candidates
func NewCandidateExtractor(limit int, log *logger.Logger) *CandidateExtractor {
	if limit <= 0 {
		limit = domain.DefaultCandidateLimit
	}
	return &CandidateExtractor{
		limit: limit,
		log:   log.With("component", "CandidateExtractor"),
	}
}

// Extract counts vocabulary tokens across all titles and returns the top candidates
func (e *CandidateExtractor) Extract(titles []string, vocab Vocabulary) []domain.Candidate {
	candidates := ExtractCandidates(titles, vocab, e.limit)
	e.log.Info("extracted candidates",
		"titles", len(titles),
		"vocabulary_size", len(vocab),
		"candidates", len(candidates))
	return candidates
}

// Tokenize splits a title into lowercase word tokens.
// Compatibility forms are folded first so full-width or ligature text tokenizes like ASCII.
func Tokenize(title string) []string {
	if title == "" {
		return nil
	}
	folded := norm.NFKC.String(title)
	tokens := wordPattern.FindAllString(folded, -1)
	for i, tok := range tokens {
		tokens[i] = strings.ToLower(tok)
	}
	return tokens
}

// ExtractCandidates keeps only tokens present in vocab, counts them across all
// titles, and orders by count descending. Ties keep first-seen order. The
// result is truncated to limit entries when limit is positive.
func ExtractCandidates(titles []string, vocab Vocabulary, limit int) []domain.Candidate {
	if len(titles) == 0 || len(vocab) == 0 {
		return []domain.Candidate{}
	}

	counts := make(map[string]int)
	var order []string

	for _, title := range titles {
		for _, token := range Tokenize(title) {
			if !vocab.Contains(token) {
				continue
			}
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	candidates := make([]domain.Candidate, 0, len(order))
	for _, name := range order {
		candidates = append(candidates, domain.Candidate{Name: name, Count: counts[name]})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Count > candidates[j].Count
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
