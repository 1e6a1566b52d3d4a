package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

// ClassifierInstruction constrains the completion to a bare comma-separated product list
const ClassifierInstruction = "You are a data cleaning assistant, please return a list of inherently physical products " +
	"regularly sold online(please ensure it's not a category of items), the list should be separated by commas " +
	"without additional comments."

// SemanticValidator prunes candidates that do not name a concrete physical product
type SemanticValidator struct {
	client domain.CompletionClient
	log    *logger.Logger
}

// NewSemanticValidator creates a validator backed by a completion client
func NewSemanticValidator(client domain.CompletionClient, log *logger.Logger) *SemanticValidator {
	return &SemanticValidator{
		client: client,
		log:    log.With("component", "SemanticValidator"),
	}
}

// Validate asks the classifier which candidate names are physical products and
// returns a new slice holding only those, with counts and order preserved.
// A failed classifier call is returned wrapped in domain.ErrClassifierFailure.
func (v *SemanticValidator) Validate(ctx context.Context, candidates []domain.Candidate) ([]domain.Candidate, error) {
	if len(candidates) == 0 {
		return []domain.Candidate{}, nil
	}

	prompt := BuildClassifierPrompt(candidates)
	response, err := v.client.Complete(ctx, ClassifierInstruction, prompt)
	if err != nil {
		if errors.Is(err, domain.ErrClassifierFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrClassifierFailure, err)
	}

	accepted := ParseClassifierResponse(response)
	validated := FilterCandidates(candidates, accepted)

	v.log.Info("validated candidates",
		"candidates", len(candidates),
		"classifier_items", len(accepted),
		"validated", len(validated))
	if dropped := len(candidates) - len(validated); dropped > 0 {
		v.log.Debug("classifier dropped candidates", "dropped", dropped)
	}

	return validated, nil
}

// BuildClassifierPrompt serializes candidate names, without counts, into one message
func BuildClassifierPrompt(candidates []domain.Candidate) string {
	return strings.Join(domain.Names(candidates), ", ")
}

// ParseClassifierResponse splits a comma-separated reply into a set of lowercase names
func ParseClassifierResponse(text string) map[string]struct{} {
	accepted := make(map[string]struct{})
	for _, fragment := range strings.Split(text, ",") {
		name := strings.ToLower(strings.TrimSpace(fragment))
		if name == "" {
			continue
		}
		accepted[name] = struct{}{}
	}
	return accepted
}

// FilterCandidates returns the candidates whose lowercase name is in accepted.
// The input slice is not modified.
func FilterCandidates(candidates []domain.Candidate, accepted map[string]struct{}) []domain.Candidate {
	filtered := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := accepted[strings.ToLower(c.Name)]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
