package books

import (
	"context"
	"sync"

	"github.com/5w1tchy/bookshelf-api/internal/models"
)

// MemoryStore keeps books in insertion order in process memory.
// Mutations hold the write lock for their whole duration, so readers never
// see a half-applied update.
type MemoryStore struct {
	mu    sync.RWMutex
	books []models.Book
}

func NewMemoryStore(seed ...models.Book) *MemoryStore {
	s := &MemoryStore{books: make([]models.Book, 0, len(seed))}
	s.books = append(s.books, seed...)
	return s
}

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.books {
		if s.books[i].ID == id {
			return i
		}
	}
	return -1
}

// Insert appends b; ErrConflict if the id is already taken.
func (s *MemoryStore) Insert(_ context.Context, b models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(b.ID) != -1 {
		return ErrConflict
	}
	s.books = append(s.books, b)
	return nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Book, 0, len(s.books))
	for _, b := range s.books {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i != -1 {
		return s.books[i], nil
	}
	return models.Book{}, ErrNotFound
}

// FindByName returns the first book, in insertion order, whose name equals name exactly.
func (s *MemoryStore) FindByName(_ context.Context, name string) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.Name == name {
			return b, nil
		}
	}
	return models.Book{}, ErrNotFound
}

// Update runs apply against the current record under the write lock and
// stores its result. The id and insertedAt of the stored record are kept
// regardless of what apply returns.
func (s *MemoryStore) Update(_ context.Context, id string, apply func(models.Book) (models.Book, error)) (models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i == -1 {
		return models.Book{}, ErrNotFound
	}
	cur := s.books[i]
	next, err := apply(cur)
	if err != nil {
		return models.Book{}, err
	}
	next.ID = cur.ID
	next.InsertedAt = cur.InsertedAt
	s.books[i] = next
	return next, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i == -1 {
		return ErrNotFound
	}
	s.books = append(s.books[:i], s.books[i+1:]...)
	return nil
}

// All returns a copy of the whole collection in insertion order.
func (s *MemoryStore) All(_ context.Context) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}
