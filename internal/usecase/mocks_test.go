package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/trendlens/backend/internal/domain"
)

// MockProductRepository is a mock implementation of domain.ProductRepository
type MockProductRepository struct {
	mu          sync.Mutex
	products    map[string]domain.StoredProduct
	pingError   error
	listError   error
	createError map[string]error
	replaceErr  map[string]error
	creates     int
	replaces    int
}

func NewMockProductRepository(seed ...domain.StoredProduct) *MockProductRepository {
	m := &MockProductRepository{
		products:    make(map[string]domain.StoredProduct),
		createError: make(map[string]error),
		replaceErr:  make(map[string]error),
	}
	for _, p := range seed {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductRepository) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *MockProductRepository) ListAll(ctx context.Context) ([]domain.StoredProduct, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	out := make([]domain.StoredProduct, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.StoredProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if err := m.createError[product.ProductName]; err != nil {
		return err
	}
	for _, p := range m.products {
		if strings.EqualFold(p.ProductName, product.ProductName) {
			return domain.ErrDuplicateProduct
		}
	}
	m.products[product.ID] = *product
	return nil
}

func (m *MockProductRepository) Replace(ctx context.Context, product *domain.StoredProduct) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaces++
	if err := m.replaceErr[product.ProductName]; err != nil {
		return err
	}
	if _, ok := m.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	m.products[product.ID] = *product
	return nil
}

// byName returns the stored product with the given case-insensitive name
func (m *MockProductRepository) byName(name string) (domain.StoredProduct, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if strings.EqualFold(p.ProductName, name) {
			return p, true
		}
	}
	return domain.StoredProduct{}, false
}

func (m *MockProductRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.products)
}

// MockCompletionClient is a mock implementation of domain.CompletionClient
type MockCompletionClient struct {
	response   string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *MockCompletionClient) Complete(ctx context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

// MockPostFetcher is a mock implementation of domain.PostFetcher
type MockPostFetcher struct {
	titles map[string][]string
	errs   map[string]error
	mu     sync.Mutex
	limits []int
}

func (m *MockPostFetcher) FetchTitles(ctx context.Context, source string, limit int) ([]string, error) {
	m.mu.Lock()
	m.limits = append(m.limits, limit)
	m.mu.Unlock()
	if err := m.errs[source]; err != nil {
		return nil, err
	}
	return m.titles[source], nil
}

// MockRunLock is a mock implementation of domain.RunLock
type MockRunLock struct {
	held     bool
	released int
}

func (m *MockRunLock) Acquire(ctx context.Context) (func(), error) {
	if m.held {
		return nil, domain.ErrRunInProgress
	}
	m.held = true
	return func() {
		m.held = false
		m.released++
	}, nil
}

var errBoom = errors.New("boom")
