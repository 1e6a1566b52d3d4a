package usecase

import (
	"bufio"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed stopwords_en.txt
var bundledStopwords string

// StopwordSet holds normalized words excluded from candidate consideration
type StopwordSet map[string]struct{}

// Contains reports whether word is a stopword
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Vocabulary is the immutable set of recognized product terms, loaded once per run
type Vocabulary map[string]struct{}

// Contains reports whether token is a recognized product term
func (v Vocabulary) Contains(token string) bool {
	_, ok := v[token]
	return ok
}

// DefaultStopwords returns the bundled English stopword list
func DefaultStopwords() StopwordSet {
	set, _ := ParseStopwords(strings.NewReader(bundledStopwords))
	return set
}

// ParseStopwords reads one stopword per line, skipping blanks and '#' comments
func ParseStopwords(r io.Reader) (StopwordSet, error) {
	set := make(StopwordSet)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := normalizeTerm(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		set[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}
	return set, nil
}

// LoadStopwords returns the bundled list when path is empty, otherwise the file at path
func LoadStopwords(path string) (StopwordSet, error) {
	if path == "" {
		return DefaultStopwords(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stopwords file: %w", err)
	}
	defer f.Close()
	return ParseStopwords(f)
}

// LoadVocabulary reads comma-separated rows of product terms. Every field is
// trimmed and lowercased; empty fields and stopwords are dropped. Rows the CSV
// reader rejects are skipped and reading continues with the next row.
func LoadVocabulary(r io.Reader, stopwords StopwordSet) (Vocabulary, error) {
	vocab := make(Vocabulary)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return vocab, fmt.Errorf("failed to read vocabulary: %w", err)
		}

		for _, field := range row {
			keyword := normalizeTerm(field)
			if keyword == "" || stopwords.Contains(keyword) {
				continue
			}
			vocab[keyword] = struct{}{}
		}
	}

	return vocab, nil
}

// LoadVocabularyFile opens path and loads it with LoadVocabulary
func LoadVocabularyFile(path string, stopwords StopwordSet) (Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("failed to open vocabulary file: %w", err)
	}
	defer f.Close()
	return LoadVocabulary(f, stopwords)
}

// normalizeTerm trims and lowercases a reference list entry
func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
