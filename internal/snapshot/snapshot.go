// Package snapshot exports the book collection as JSON documents to an
// object store and prunes old exports.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/5w1tchy/bookshelf-api/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// keyLayout sorts lexicographically in time order.
const keyLayout = "20060102T150405.000Z"

const contentType = "application/json"

type Source interface {
	Snapshot(ctx context.Context) ([]models.Book, error)
}

type ObjectStore interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteObject(ctx context.Context, key string) error
}

// Document is the exported JSON body.
type Document struct {
	TakenAt string        `json:"takenAt"`
	Count   int           `json:"count"`
	Books   []models.Book `json:"books"`
}

type Exporter struct {
	src    Source
	store  ObjectStore
	prefix string
	keep   int
	now    func() time.Time
	log    *slog.Logger
}

// NewExporter writes under prefix and keeps the newest keep exports; keep 0
// disables pruning.
func NewExporter(src Source, store ObjectStore, prefix string, keep int, log *slog.Logger) *Exporter {
	if log == nil {
		log = slog.Default()
	}
	return &Exporter{src: src, store: store, prefix: prefix, keep: keep, now: time.Now, log: log}
}

func (e *Exporter) key(t time.Time) string {
	return e.prefix + "books-" + t.UTC().Format(keyLayout) + ".json"
}

// Export uploads the current collection and returns the object key.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	books, err := e.src.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: read books: %w", err)
	}
	if books == nil {
		books = []models.Book{}
	}

	now := e.now()
	body, err := json.Marshal(Document{
		TakenAt: now.UTC().Format(models.TimestampLayout),
		Count:   len(books),
		Books:   books,
	})
	if err != nil {
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}

	key := e.key(now)
	if err := e.store.PutObject(ctx, key, contentType, body); err != nil {
		return "", err
	}
	e.log.InfoContext(ctx, "snapshot exported", "key", key, "books", len(books), "bytes", len(body))
	return key, nil
}

// Prune deletes all but the newest keep exports and returns how many were
// removed. Keys that do not look like exports are left alone.
func (e *Exporter) Prune(ctx context.Context) (int, error) {
	if e.keep <= 0 {
		return 0, nil
	}
	keys, err := e.store.ListKeys(ctx, e.prefix)
	if err != nil {
		return 0, err
	}

	ours := keys[:0:0]
	for _, k := range keys {
		name := strings.TrimPrefix(k, e.prefix)
		if strings.HasPrefix(name, "books-") && strings.HasSuffix(name, ".json") && !strings.Contains(name, "/") {
			ours = append(ours, k)
		}
	}
	if len(ours) <= e.keep {
		return 0, nil
	}
	sort.Strings(ours)

	removed := 0
	for _, k := range ours[:len(ours)-e.keep] {
		if err := e.store.DeleteObject(ctx, k); err != nil {
			return removed, err
		}
		removed++
	}
	e.log.InfoContext(ctx, "snapshots pruned", "removed", removed, "kept", e.keep)
	return removed, nil
}

// Run exports and then prunes; it is the periodic job body.
func (e *Exporter) Run(ctx context.Context) error {
	if _, err := e.Export(ctx); err != nil {
		return err
	}
	_, err := e.Prune(ctx)
	return err
}
