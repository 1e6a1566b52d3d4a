package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/trendlens/backend/internal/domain"
)

// MemoryRepository is a thread-safe in-memory product store keyed by id with a
// case-insensitive unique name
type MemoryRepository struct {
	data   map[string]domain.StoredProduct
	byName map[string]string
	mutex  sync.RWMutex
}

// NewMemoryRepository creates an empty in-memory product store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data:   make(map[string]domain.StoredProduct),
		byName: make(map[string]string),
	}
}

// Ping always succeeds
func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// ListAll returns copies of every stored product ordered by id
func (m *MemoryRepository) ListAll(ctx context.Context) ([]domain.StoredProduct, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	products := make([]domain.StoredProduct, 0, len(m.data))
	for _, p := range m.data {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// Create stores a new product unless its id or lowercased name is taken
func (m *MemoryRepository) Create(ctx context.Context, product *domain.StoredProduct) error {
	if product == nil || product.ID == "" || product.ProductName == "" {
		return domain.ErrInvalidRequest
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	key := strings.ToLower(product.ProductName)
	if _, taken := m.byName[key]; taken {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, product.ProductName)
	}
	if _, taken := m.data[product.ID]; taken {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, product.ID)
	}

	m.data[product.ID] = *product
	m.byName[key] = product.ID
	return nil
}

// Replace overwrites the product with the same id
func (m *MemoryRepository) Replace(ctx context.Context, product *domain.StoredProduct) error {
	if product == nil || product.ID == "" {
		return domain.ErrInvalidRequest
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, ok := m.data[product.ID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, product.ID)
	}

	newKey := strings.ToLower(product.ProductName)
	if owner, taken := m.byName[newKey]; taken && owner != product.ID {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, product.ProductName)
	}

	delete(m.byName, strings.ToLower(existing.ProductName))
	m.data[product.ID] = *product
	m.byName[newKey] = product.ID
	return nil
}

// Size returns the number of stored products
func (m *MemoryRepository) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}

// Clear removes all products
func (m *MemoryRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[string]domain.StoredProduct)
	m.byName = make(map[string]string)
}
