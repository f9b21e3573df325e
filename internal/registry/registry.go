// Package registry implements the book registry: validation of incoming
// payloads and the insert/list/get/update/delete operations on top of an
// injectable Store.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/5w1tchy/bookshelf-api/internal/id"
	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/store/books"
)

// maxIDAttempts bounds retries when a generated id collides with a stored one.
const maxIDAttempts = 3

// Store is the collection the registry operates on. Implementations must
// preserve insertion order and apply Update atomically.
type Store interface {
	Insert(ctx context.Context, b models.Book) error
	List(ctx context.Context, f books.Filter) ([]models.Book, error)
	Get(ctx context.Context, id string) (models.Book, error)
	FindByName(ctx context.Context, name string) (models.Book, error)
	Update(ctx context.Context, id string, apply func(models.Book) (models.Book, error)) (models.Book, error)
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]models.Book, error)
}

type Registry struct {
	store Store
	newID func() (string, error)
	now   func() time.Time
	log   *slog.Logger
}

type Option func(*Registry)

func WithIDGenerator(fn func() (string, error)) Option {
	return func(r *Registry) { r.newID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(r *Registry) { r.now = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		newID: id.New,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// Insert validates p, stores a new book and returns its id.
func (r *Registry) Insert(ctx context.Context, p *Payload) (string, error) {
	f, err := p.validate(OpInsert)
	if err != nil {
		return "", err
	}

	now := r.stamp()
	b := models.Book{
		Name:       f.name,
		Year:       f.year,
		Author:     f.author,
		Summary:    f.summary,
		Publisher:  f.publisher,
		PageCount:  f.pageCount,
		ReadPage:   f.readPage,
		InsertedAt: now,
		UpdatedAt:  now,
	}

	for attempt := 1; ; attempt++ {
		bookID, err := r.newID()
		if err != nil {
			return "", fmt.Errorf("insert book: %w", err)
		}
		b.ID = bookID

		err = r.store.Insert(ctx, b)
		if err == nil {
			break
		}
		if errors.Is(err, books.ErrConflict) && attempt < maxIDAttempts {
			r.log.WarnContext(ctx, "book id collision, regenerating", "id", bookID, "attempt", attempt)
			continue
		}
		return "", fmt.Errorf("insert book: %w", err)
	}

	if _, err := r.store.Get(ctx, b.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			r.log.ErrorContext(ctx, "inserted book is not resolvable", "id", b.ID)
			return "", ErrInsertFailed
		}
		return "", fmt.Errorf("verify inserted book: %w", err)
	}
	return b.ID, nil
}

// List returns the id/name/publisher projection of every book matching f,
// in insertion order.
func (r *Registry) List(ctx context.Context, f books.Filter) ([]models.ListItem, error) {
	found, err := r.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	items := make([]models.ListItem, 0, len(found))
	for _, b := range found {
		items = append(items, b.ListItem())
	}
	return items, nil
}

func (r *Registry) Get(ctx context.Context, bookID string) (models.Book, error) {
	b, err := r.store.Get(ctx, bookID)
	if err != nil {
		return models.Book{}, fmt.Errorf("get book %q: %w", bookID, err)
	}
	return b, nil
}

// FindByName returns the first book whose name equals name exactly.
func (r *Registry) FindByName(ctx context.Context, name string) (models.Book, error) {
	if strings.TrimSpace(name) == "" {
		return models.Book{}, ErrNameRequired
	}
	b, err := r.store.FindByName(ctx, name)
	if err != nil {
		return models.Book{}, fmt.Errorf("find book by name: %w", err)
	}
	return b, nil
}

// Update replaces every mutable field of the book. The payload is validated
// before the id is looked up, so a malformed payload is rejected even for an
// unknown id.
func (r *Registry) Update(ctx context.Context, bookID string, p *Payload) error {
	f, err := p.validate(OpUpdate)
	if err != nil {
		return err
	}

	_, err = r.store.Update(ctx, bookID, func(cur models.Book) (models.Book, error) {
		next := cur
		next.Name = f.name
		next.Year = f.year
		next.Author = f.author
		next.Summary = f.summary
		next.Publisher = f.publisher
		next.PageCount = f.pageCount
		next.ReadPage = f.readPage
		next.Reading = f.reading
		next.UpdatedAt = r.stamp()
		if next.UpdatedAt.Before(cur.UpdatedAt) {
			next.UpdatedAt = cur.UpdatedAt
		}
		return next, nil
	})
	if err != nil {
		return fmt.Errorf("update book %q: %w", bookID, err)
	}
	return nil
}

func (r *Registry) Delete(ctx context.Context, bookID string) error {
	if err := r.store.Delete(ctx, bookID); err != nil {
		return fmt.Errorf("delete book %q: %w", bookID, err)
	}
	return nil
}

// Snapshot returns a copy of the whole collection in insertion order.
func (r *Registry) Snapshot(ctx context.Context) ([]models.Book, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot books: %w", err)
	}
	return all, nil
}
