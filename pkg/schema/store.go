package schema

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/apperrors"
	"github.com/bantotal-ai/bantotal-engine/pkg/models"
)

// Store is the in-memory schema metadata store. Tables are added during the
// introspection pass and the store is frozen before it is shared with
// request handling; after Freeze the store is read-only and safe for
// concurrent readers without locking.
type Store struct {
	tables map[string]*models.TableDescriptor // keyed by upper-case table name
	names  []string                           // sorted upper-case names
	frozen bool
	logger *zap.Logger
}

// NewStore creates an empty schema metadata store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		tables: make(map[string]*models.TableDescriptor),
		logger: logger.Named("schema"),
	}
}

// Add registers a table descriptor. The descriptor is validated and its
// naming-convention category is derived from the table name when unset.
// Adding to a frozen store is a programming error and fails.
func (s *Store) Add(t *models.TableDescriptor) error {
	if s.frozen {
		return fmt.Errorf("schema store is frozen, cannot add table %q", t.TableName)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("invalid table descriptor: %w", err)
	}
	if t.Category == "" {
		t.Category = CategoryFor(t.TableName)
	}
	key := strings.ToUpper(t.TableName)
	if _, exists := s.tables[key]; exists {
		return fmt.Errorf("duplicate table %q in schema store", t.TableName)
	}
	s.tables[key] = t
	return nil
}

// Freeze marks the end of the introspection pass. Lookups are allowed before
// freezing, but sharing the store across goroutines is only safe afterwards.
func (s *Store) Freeze() {
	if s.frozen {
		return
	}
	s.names = make([]string, 0, len(s.tables))
	for name := range s.tables {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)
	s.frozen = true
	s.logger.Info("Schema store frozen", zap.Int("tables", len(s.names)))
}

// Len returns the number of registered tables.
func (s *Store) Len() int {
	return len(s.tables)
}

// Table looks up a table descriptor by name, case-insensitively.
func (s *Store) Table(name string) (*models.TableDescriptor, error) {
	t, ok := s.tables[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownTable, name)
	}
	return t, nil
}

// Has reports whether a table is registered.
func (s *Store) Has(name string) bool {
	_, ok := s.tables[strings.ToUpper(strings.TrimSpace(name))]
	return ok
}

// Tables returns all descriptors ordered by table name so that iteration is
// deterministic.
func (s *Store) Tables() []*models.TableDescriptor {
	out := make([]*models.TableDescriptor, 0, len(s.tables))
	for _, name := range s.sortedNames() {
		out = append(out, s.tables[name])
	}
	return out
}

// TablesInCategories returns descriptors whose category is one of cats,
// ordered by table name.
func (s *Store) TablesInCategories(cats ...models.Category) []*models.TableDescriptor {
	want := make(map[models.Category]bool, len(cats))
	for _, c := range cats {
		want[c] = true
	}
	var out []*models.TableDescriptor
	for _, name := range s.sortedNames() {
		if t := s.tables[name]; want[t.Category] {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) sortedNames() []string {
	if s.frozen {
		return s.names
	}
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
