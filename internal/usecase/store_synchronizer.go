package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

// StoreSynchronizer reconciles validated candidates against the product store
type StoreSynchronizer struct {
	repo  domain.ProductRepository
	log   *logger.Logger
	now   func() time.Time
	newID func() string
}

// NewStoreSynchronizer creates a synchronizer for the given repository
func NewStoreSynchronizer(repo domain.ProductRepository, log *logger.Logger) *StoreSynchronizer {
	return &StoreSynchronizer{
		repo:  repo,
		log:   log.With("component", "StoreSynchronizer"),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// Sync inserts candidates missing from the store and refreshes last_seen and
// word_count on the ones already there. Nothing is written unless the store
// answers the connectivity check and the existing records load. Individual
// write failures are logged and counted, and do not stop the run.
func (s *StoreSynchronizer) Sync(ctx context.Context, candidates []domain.Candidate) (domain.SyncReport, error) {
	var report domain.SyncReport

	if err := s.repo.Ping(ctx); err != nil {
		s.log.Error("store connection failed", "error", err)
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return report, err
		}
		return report, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	s.log.Info("connected to product store")

	if len(candidates) == 0 {
		s.log.Info("no trending products to sync")
		return report, nil
	}

	existing, err := s.loadIndex(ctx)
	if err != nil {
		s.log.Error("failed to read existing products", "error", err)
		return report, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	seenAt := s.now()
	for _, candidate := range candidates {
		name := strings.ToLower(candidate.Name)

		current, found := existing[name]
		if !found {
			product := &domain.StoredProduct{
				ID:          s.newID(),
				ProductName: name,
				LastSeen:    seenAt,
				WordCount:   candidate.Count,
			}
			if err := s.repo.Create(ctx, product); err != nil {
				s.log.Error("failed to create product", "product_name", name, "error", err)
				report.Failed++
				continue
			}
			// later duplicates in the same batch become updates
			existing[name] = *product
			report.Created++
			continue
		}

		updated := current
		updated.LastSeen = seenAt
		updated.WordCount = candidate.Count
		if err := s.repo.Replace(ctx, &updated); err != nil {
			s.log.Error("failed to update product", "product_name", name, "id", current.ID, "error", err)
			report.Failed++
			continue
		}
		existing[name] = updated
		report.Updated++
	}

	s.log.Info("product store synchronized",
		"created", report.Created,
		"updated", report.Updated,
		"failed", report.Failed)
	return report, nil
}

// loadIndex reads every stored product once, keyed by lowercase name
func (s *StoreSynchronizer) loadIndex(ctx context.Context) (map[string]domain.StoredProduct, error) {
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]domain.StoredProduct, len(products))
	for _, p := range products {
		index[strings.ToLower(p.ProductName)] = p
	}
	return index, nil
}
