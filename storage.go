/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flatstore

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/suparena/flatstore/datastore"
	"github.com/suparena/flatstore/errors"
	"github.com/suparena/flatstore/flatten"
	"github.com/suparena/flatstore/processor"
	"github.com/suparena/flatstore/storagemodels"
)

// Table pairs the gateway of one table with the preprocessor built from the
// same schema.
type Table struct {
	Gateway      datastore.Gateway
	Preprocessor *processor.Preprocessor
}

// Name returns the table name
func (t *Table) Name() string {
	return t.Gateway.TableName()
}

// Prepare flattens doc and preprocesses it for this table.
func (t *Table) Prepare(doc storagemodels.RawDocument, opts ...flatten.Option) processor.StorageItem {
	return t.Preprocessor.PreprocessDocument(doc, opts...)
}

// AttributeName maps a bare field name to its stored name. Names that are
// not schema-governed are returned unchanged.
func (t *Table) AttributeName(name string) string {
	if res, ok := t.Preprocessor.Resolver().Resolve(name); ok {
		return res.Name
	}
	return name
}

// Storage holds the tables of one application. It is constructed once at
// startup and passed to whatever needs it.
type Storage struct {
	mu     sync.RWMutex
	tables map[string]*Table
	order  []string
	logger *slog.Logger
	newID  func() string
}

// Option configures a Storage
type Option func(*Storage)

// WithLogger sets the logger used by the storage and its preprocessors
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the generator of join identifiers
func WithIDGenerator(newID func() string) Option {
	return func(s *Storage) {
		s.newID = newID
	}
}

// New creates an empty Storage
func New(opts ...Option) *Storage {
	s := &Storage{
		tables: make(map[string]*Table),
		logger: slog.Default(),
		newID:  NewIdentifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a gateway under its table name and builds the matching
// preprocessor.
func (s *Storage) Register(gw datastore.Gateway, opts ...processor.Option) error {
	opts = append([]processor.Option{processor.WithLogger(s.logger)}, opts...)
	pre, err := processor.NewPreprocessor(gw.Schema(), opts...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := gw.TableName()
	if _, exists := s.tables[name]; exists {
		return errors.NewConfigurationError("table", fmt.Sprintf("table %q already registered", name))
	}
	s.tables[name] = &Table{Gateway: gw, Preprocessor: pre}
	s.order = append(s.order, name)
	return nil
}

// Table returns the registered table with the given name
func (s *Storage) Table(name string) (*Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tables[name]
	if !exists {
		return nil, errors.NewNotFoundError("table", name)
	}
	return t, nil
}

// Gateway returns the gateway of the named table
func (s *Storage) Gateway(name string) (datastore.Gateway, error) {
	t, err := s.Table(name)
	if err != nil {
		return nil, err
	}
	return t.Gateway, nil
}

// Tables returns the registered table names in registration order
func (s *Storage) Tables() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// NewIdentifier returns a random 36 character identifier in the canonical
// hyphenated form.
func NewIdentifier() string {
	return uuid.NewString()
}

// IsValidIdentifier reports whether id has the canonical identifier shape:
// 36 characters in five alphanumeric groups separated by four hyphens.
func IsValidIdentifier(id string) bool {
	if len(id) != 36 {
		return false
	}
	groups := 1
	alnum := 0
	for _, r := range id {
		switch {
		case r == '-':
			if alnum == 0 {
				return false
			}
			groups++
			alnum = 0
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			alnum++
		default:
			return false
		}
	}
	return groups == 5 && alnum > 0
}
