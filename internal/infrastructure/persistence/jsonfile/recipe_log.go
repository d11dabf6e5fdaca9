package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pantrychef/backend/internal/ports/outbound"
)

type logEntry struct {
	Mode      string      `json:"mode"`
	Source    string      `json:"source"`
	Recipe    interface{} `json:"recipe"`
	Timestamp string      `json:"timestamp"`
}

// RecipeLog appends generated recipes to a JSON array file
type RecipeLog struct {
	path string
	mu   sync.Mutex
}

// NewRecipeLog creates a recipe log backed by the file at path
func NewRecipeLog(path string) *RecipeLog {
	return &RecipeLog{path: path}
}

var _ outbound.RecipeLog = (*RecipeLog)(nil)

// Append adds one {mode, source, recipe, timestamp} entry. Existing entries
// are kept byte for byte.
func (l *RecipeLog) Append(ctx context.Context, entry outbound.RecipeLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}

	created := entry.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	raw, err := json.Marshal(logEntry{
		Mode:      entry.Mode.String(),
		Source:    string(entry.Source),
		Recipe:    entry.Payload,
		Timestamp: created.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to encode recipe entry: %w", err)
	}

	return writeJSON(l.path, append(entries, raw))
}

func (l *RecipeLog) load() ([]json.RawMessage, error) {
	data, err := readFile(l.path)
	if err != nil || data == nil {
		return []json.RawMessage{}, err
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("malformed recipe log %s: %w", l.path, err)
	}
	return entries, nil
}
