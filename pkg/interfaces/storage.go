package interfaces

import (
	"context"
	"time"
)

// ObjectStore is the abstract key/value blob store the engine writes to.
// The engine never talks to a concrete storage backend directly; quarantine
// writes and partitioned Gold-layer outputs both go through this interface.
type ObjectStore interface {
	// Put writes data under key. Implementations must not silently
	// transform the key.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the object stored under key. Returns an error satisfying
	// errors.Is(err, errors.ErrObjectNotFound) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every key under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error

	// Ping tests connectivity to the backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreInfo describes an ObjectStore implementation.
type StoreInfo struct {
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Config      map[string]interface{} `json:"config,omitempty"`
}

// StoreMetrics reports operation counters for an ObjectStore.
type StoreMetrics struct {
	ReadOperations  int64         `json:"read_operations"`
	WriteOperations int64         `json:"write_operations"`
	DeleteOperations int64        `json:"delete_operations"`
	ErrorCount      int64         `json:"error_count"`
	BytesRead       int64         `json:"bytes_read"`
	BytesWritten    int64         `json:"bytes_written"`
	Uptime          time.Duration `json:"uptime"`
}

// InstrumentedStore is an ObjectStore that also exposes metadata and
// operation metrics.
type InstrumentedStore interface {
	ObjectStore
	GetInfo(ctx context.Context) (*StoreInfo, error)
	GetMetrics(ctx context.Context) (*StoreMetrics, error)
}
