package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/ports/outbound"
)

const pantryKey = "pantry"

// timeLayouts accepts our own timestamps and the naive ISO form older files carry
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// fileID accepts string or numeric ids
type fileID string

func (id *fileID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = fileID(s)
		return nil
	}
	*id = fileID(data)
	return nil
}

type fileItem struct {
	ID        fileID      `json:"id"`
	Name      string      `json:"name"`
	Quantity  json.Number `json:"quantity"`
	Unit      string      `json:"unit"`
	Category  string      `json:"category"`
	Notes     string      `json:"notes"`
	CreatedAt string      `json:"createdAt"`
	UpdatedAt string      `json:"updatedAt"`
}

func (f fileItem) toDomain() pantry.Item {
	quantity, err := strconv.ParseFloat(f.Quantity.String(), 64)
	if err != nil {
		quantity = 1
	}
	unit := f.Unit
	if strings.TrimSpace(unit) == "" {
		unit = pantry.DefaultUnit
	}

	return pantry.Item{
		ID:        string(f.ID),
		Name:      f.Name,
		Quantity:  quantity,
		Unit:      unit,
		Category:  f.Category,
		Notes:     f.Notes,
		CreatedAt: parseTime(f.CreatedAt),
		UpdatedAt: parseTime(f.UpdatedAt),
	}
}

func fromDomain(item pantry.Item) fileItem {
	return fileItem{
		ID:        fileID(item.ID),
		Name:      item.Name,
		Quantity:  json.Number(pantry.FormatQuantity(item.Quantity)),
		Unit:      item.Unit,
		Category:  item.Category,
		Notes:     item.Notes,
		CreatedAt: formatTime(item.CreatedAt),
		UpdatedAt: formatTime(item.UpdatedAt),
	}
}

// document is the decoded db.json. fields is nil when the file is a bare array.
type document struct {
	fields map[string]json.RawMessage
	items  []fileItem
}

// PantryStore implements the pantry repository on a JSON file
type PantryStore struct {
	path   string
	mu     sync.Mutex
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// NewPantryStore creates a store backed by the file at path
func NewPantryStore(path string, logger *zap.Logger) *PantryStore {
	return &PantryStore{
		path:   path,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: logger.Named("pantry-file-store"),
	}
}

var _ outbound.PantryRepository = (*PantryStore)(nil)

// List returns every pantry item in file order
func (s *PantryStore) List(ctx context.Context) ([]pantry.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	items := make([]pantry.Item, 0, len(doc.items))
	for _, f := range doc.items {
		items = append(items, f.toDomain())
	}
	return items, nil
}

// FindByID finds a pantry item by ID
func (s *PantryStore) FindByID(ctx context.Context, id string) (*pantry.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	if i := doc.indexByID(id); i >= 0 {
		item := doc.items[i].toDomain()
		return &item, nil
	}
	return nil, pantry.ErrItemNotFound
}

// FindByName finds the first pantry item with the name, ignoring case
func (s *PantryStore) FindByName(ctx context.Context, name string) (*pantry.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	key := pantry.NormalizeName(name)
	for _, f := range doc.items {
		if pantry.NormalizeName(f.Name) == key {
			item := f.toDomain()
			return &item, nil
		}
	}
	return nil, pantry.ErrItemNotFound
}

// Create appends the item with a fresh UUID
func (s *PantryStore) Create(ctx context.Context, item *pantry.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	item.ID = s.newID()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	doc.items = append(doc.items, fromDomain(*item))
	if err := s.save(doc); err != nil {
		return err
	}

	s.logger.Debug("Pantry item stored", zap.String("id", item.ID), zap.Int("items", len(doc.items)))
	return nil
}

// Update replaces the stored item with the same ID
func (s *PantryStore) Update(ctx context.Context, item *pantry.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	i := doc.indexByID(item.ID)
	if i < 0 {
		return pantry.ErrItemNotFound
	}

	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = s.now()
	}
	doc.items[i] = fromDomain(*item)

	return s.save(doc)
}

// Delete removes the item with the ID. A missing ID is not an error.
func (s *PantryStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return false, err
	}

	i := doc.indexByID(id)
	if i < 0 {
		return false, nil
	}

	doc.items = append(doc.items[:i], doc.items[i+1:]...)
	if err := s.save(doc); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PantryStore) load() (*document, error) {
	data, err := readFile(s.path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &document{fields: map[string]json.RawMessage{}}, nil
	}

	doc := &document{}
	if bytes.TrimSpace(data)[0] == '[' {
		if err := json.Unmarshal(data, &doc.items); err != nil {
			return nil, fmt.Errorf("malformed pantry file %s: %w", s.path, err)
		}
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc.fields); err != nil {
		return nil, fmt.Errorf("malformed pantry file %s: %w", s.path, err)
	}
	if doc.fields == nil {
		doc.fields = map[string]json.RawMessage{}
	}
	if raw, ok := doc.fields[pantryKey]; ok {
		if err := json.Unmarshal(raw, &doc.items); err != nil {
			return nil, fmt.Errorf("malformed pantry array in %s: %w", s.path, err)
		}
	}
	return doc, nil
}

func (s *PantryStore) save(doc *document) error {
	items := doc.items
	if items == nil {
		items = []fileItem{}
	}

	if doc.fields == nil {
		return writeJSON(s.path, items)
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode pantry: %w", err)
	}
	doc.fields[pantryKey] = raw

	return writeJSON(s.path, doc.fields)
}

func (d *document) indexByID(id string) int {
	for i, f := range d.items {
		if string(f.ID) == id {
			return i
		}
	}
	return -1
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
