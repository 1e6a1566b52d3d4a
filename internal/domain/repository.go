package domain

import "context"

// PostFetcher returns post titles for a named social feed source
type PostFetcher interface {
	FetchTitles(ctx context.Context, source string, limit int) ([]string, error)
}

// CompletionClient sends a system instruction and user message to a text completion service
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ProductRepository defines the persistence operations the store synchronizer needs
type ProductRepository interface {
	Ping(ctx context.Context) error
	ListAll(ctx context.Context) ([]StoredProduct, error)
	Create(ctx context.Context, product *StoredProduct) error
	Replace(ctx context.Context, product *StoredProduct) error
}

// RunLock guards against overlapping pipeline runs
type RunLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}
