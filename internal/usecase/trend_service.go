package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

// TrendServiceConfig holds configuration for the trend pipeline
type TrendServiceConfig struct {
	Sources          []string
	PostLimit        int
	VocabularyPath   string
	StopwordsPath    string
	CandidateLimit   int
	FetchConcurrency int
}

// TrendService runs the fetch, extract, validate and sync pipeline
type TrendService struct {
	fetcher      domain.PostFetcher
	repo         domain.ProductRepository
	lock         domain.RunLock
	extractor    *CandidateExtractor
	validator    *SemanticValidator
	synchronizer *StoreSynchronizer
	config       TrendServiceConfig
	log          *logger.Logger
	now          func() time.Time
}

// NewTrendService creates a trend pipeline with its dependencies. A nil lock disables run locking.
func NewTrendService(
	fetcher domain.PostFetcher,
	classifier domain.CompletionClient,
	repo domain.ProductRepository,
	lock domain.RunLock,
	config TrendServiceConfig,
	log *logger.Logger,
) *TrendService {
	if config.FetchConcurrency <= 0 {
		config.FetchConcurrency = 4
	}

	return &TrendService{
		fetcher:      fetcher,
		repo:         repo,
		lock:         lock,
		extractor:    NewCandidateExtractor(config.CandidateLimit, log),
		validator:    NewSemanticValidator(classifier, log),
		synchronizer: NewStoreSynchronizer(repo, log),
		config:       config,
		log:          log.With("component", "TrendService"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one pipeline run.
// Flow: lock -> fetch titles -> load vocabulary -> extract -> validate -> sync.
// The returned report is never nil and reflects how far the run got.
func (s *TrendService) Run(ctx context.Context) (*domain.RunReport, error) {
	report := &domain.RunReport{StartedAt: s.now()}
	defer func() { report.FinishedAt = s.now() }()

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx)
		if err != nil {
			s.log.Warn("trend run skipped", "error", err)
			return report, err
		}
		defer release()
	}

	s.log.Info("trend run started", "sources", s.config.Sources, "post_limit", s.config.PostLimit)

	titles, failed := s.fetchTitles(ctx)
	report.TitlesFetched = len(titles)
	report.FailedSources = failed

	vocab := s.loadVocabulary()
	report.Candidates = s.extractor.Extract(titles, vocab)

	validated, err := s.validator.Validate(ctx, report.Candidates)
	if err != nil {
		s.log.Error("classifier failed, aborting before persistence", "error", err)
		return report, err
	}
	report.Validated = validated

	syncReport, err := s.synchronizer.Sync(ctx, validated)
	report.Sync = syncReport
	if err != nil {
		return report, err
	}

	s.log.Info("trend run finished",
		"titles", report.TitlesFetched,
		"failed_sources", len(report.FailedSources),
		"candidates", len(report.Candidates),
		"validated", len(report.Validated),
		"created", syncReport.Created,
		"updated", syncReport.Updated,
		"write_failures", syncReport.Failed)
	return report, nil
}

// ListProducts returns the catalog, most recently seen first
func (s *TrendService) ListProducts(ctx context.Context) ([]domain.StoredProduct, error) {
	if err := s.repo.Ping(ctx); err != nil {
		return nil, err
	}
	products, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		if products[i].LastSeen.Equal(products[j].LastSeen) {
			return products[i].WordCount > products[j].WordCount
		}
		return products[i].LastSeen.After(products[j].LastSeen)
	})
	return products, nil
}

// fetchTitles pulls titles from every source concurrently. A failing source is
// logged and reported; it never aborts the others. Titles keep source order.
func (s *TrendService) fetchTitles(ctx context.Context) ([]string, []string) {
	perSource := make([][]string, len(s.config.Sources))
	var (
		mu     sync.Mutex
		failed []string
	)

	var g errgroup.Group
	g.SetLimit(s.config.FetchConcurrency)
	for i, source := range s.config.Sources {
		g.Go(func() error {
			titles, err := s.fetcher.FetchTitles(ctx, source, s.config.PostLimit)
			if err != nil {
				s.log.Warn("error fetching source", "source", source, "error", err)
				mu.Lock()
				failed = append(failed, source)
				mu.Unlock()
				return nil
			}
			s.log.Debug("fetched source", "source", source, "titles", len(titles))
			perSource[i] = titles
			return nil
		})
	}
	_ = g.Wait()

	var titles []string
	for _, t := range perSource {
		titles = append(titles, t...)
	}
	sort.Strings(failed)
	return titles, failed
}

// loadVocabulary loads stopwords and the product vocabulary for this run.
// Either one failing degrades to an empty set instead of aborting.
func (s *TrendService) loadVocabulary() Vocabulary {
	stopwords, err := LoadStopwords(s.config.StopwordsPath)
	if err != nil {
		s.log.Error("stopwords not found, continuing without them", "path", s.config.StopwordsPath, "error", err)
		stopwords = StopwordSet{}
	}

	vocab, err := LoadVocabularyFile(s.config.VocabularyPath, stopwords)
	if err != nil {
		s.log.Error("error reading vocabulary", "path", s.config.VocabularyPath, "error", err)
		if vocab == nil {
			vocab = Vocabulary{}
		}
	}
	return vocab
}
