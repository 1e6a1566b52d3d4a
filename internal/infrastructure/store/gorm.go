package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/trendlens/backend/internal/domain"
	"github.com/trendlens/backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options selects and tunes the product store backend
type Options struct {
	Driver          string
	DSN             string
	Table           string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// GormRepository persists products in a SQL table through gorm
type GormRepository struct {
	db    *gorm.DB
	table string
	log   *logger.Logger
}

// New opens the configured backend and returns a repository with its close function
func New(ctx context.Context, opts Options, log *logger.Logger) (domain.ProductRepository, func() error, error) {
	if opts.Driver == DriverMemory {
		return NewMemoryRepository(), func() error { return nil }, nil
	}

	db, err := Open(opts)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	repo, err := NewGormRepository(db, opts.Table, log)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}

// Open connects to postgres or sqlite and applies pool settings
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", opts.Driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if opts.Driver == DriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return db, nil
}

// NewGormRepository wraps db for the named product table
func NewGormRepository(db *gorm.DB, table string, log *logger.Logger) (*GormRepository, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &GormRepository{
		db:    db,
		table: table,
		log:   log.With("component", "ProductStore", "table", table),
	}, nil
}

// Migrate creates the product table and the case-insensitive unique name index
func (r *GormRepository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.Table(r.table).AutoMigrate(&productRecord{}); err != nil {
		return fmt.Errorf("migrating %s: %w", r.table, err)
	}
	index := fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_name_lower ON %s (lower(product_name))`, r.table, r.table)
	if err := db.Exec(index).Error; err != nil {
		return fmt.Errorf("creating name index on %s: %w", r.table, err)
	}
	r.log.Debug("product table ready")
	return nil
}

// Ping verifies the connection and that the product table is readable
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	var probe []productRecord
	if err := r.db.WithContext(ctx).Table(r.table).Limit(1).Find(&probe).Error; err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// ListAll returns every stored product
func (r *GormRepository) ListAll(ctx context.Context) ([]domain.StoredProduct, error) {
	var records []productRecord
	if err := r.db.WithContext(ctx).Table(r.table).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	products := make([]domain.StoredProduct, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.toDomain())
	}
	return products, nil
}

// Create inserts a new product; a name that already exists in any casing yields ErrDuplicateProduct
func (r *GormRepository) Create(ctx context.Context, product *domain.StoredProduct) error {
	if product == nil || product.ID == "" || product.ProductName == "" {
		return domain.ErrInvalidRequest
	}
	rec := toRecord(product)
	res := r.db.WithContext(ctx).Table(r.table).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec)
	if res.Error != nil {
		return fmt.Errorf("creating product %q: %w", product.ProductName, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, product.ProductName)
	}
	return nil
}

// Replace overwrites every column of the product with the same id
func (r *GormRepository) Replace(ctx context.Context, product *domain.StoredProduct) error {
	if product == nil || product.ID == "" {
		return domain.ErrInvalidRequest
	}
	rec := toRecord(product)
	res := r.db.WithContext(ctx).Table(r.table).Where("id = ?", rec.ID).Select("*").Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("replacing product %q: %w", product.ProductName, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, product.ID)
	}
	return nil
}
