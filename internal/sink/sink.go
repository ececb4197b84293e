// Package sink loads exported bundles into analytical databases. Each
// sink implementation registers itself by name in its init function;
// concrete sinks live in subdirectories.
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/synthline-labs/synthline/internal/schema"
)

// Config selects and configures a sink.
type Config struct {
	Type     string
	Path     string // file path for embedded databases
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Options  map[string]string
}

// Sink loads bundle tables into a destination database.
type Sink interface {
	// Connect establishes a connection using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Load loads one table's CSV from a bundle directory and returns
	// the number of rows loaded.
	Load(ctx context.Context, def *schema.Table, bundleDir string) (int64, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Sink)
)

// Register adds a sink factory to the registry.
// Called by sink implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Sink) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a sink factory by name.
func Get(name string) (func(*slog.Logger) Sink, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates a sink instance based on config type.
// The logger is passed to the sink constructor (nil uses discard logger).
func New(cfg Config, logger *slog.Logger) (Sink, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("sink type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownSinkError{
			Type:      cfg.Type,
			Available: List(),
		}
	}
	return factory(logger), nil
}

// List returns all registered sink names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a sink type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownSinkError is returned when an unknown sink type is requested.
type UnknownSinkError struct {
	Type      string
	Available []string
}

func (e *UnknownSinkError) Error() string {
	return fmt.Sprintf("unknown sink type %q\nAvailable sinks: %v\nHint: Check your sink.type in synthline.yaml", e.Type, e.Available)
}

// BaseSQLSink provides common database/sql functionality for sinks.
// Embed this struct in concrete sink implementations.
type BaseSQLSink struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLSink) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing sink connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLSink) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := b.DB.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLSink) IsConnected() bool {
	return b.DB != nil
}
