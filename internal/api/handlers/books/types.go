package books

import (
	"context"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/registry"
	storebooks "github.com/5w1tchy/bookshelf-api/internal/store/books"
)

// Service is the registry surface the handlers need.
type Service interface {
	Insert(ctx context.Context, p *registry.Payload) (string, error)
	List(ctx context.Context, f storebooks.Filter) ([]models.ListItem, error)
	Get(ctx context.Context, id string) (models.Book, error)
	FindByName(ctx context.Context, name string) (models.Book, error)
	Update(ctx context.Context, id string, p *registry.Payload) error
	Delete(ctx context.Context, id string) error
}

type createdData struct {
	BookID string `json:"bookId"`
}

type listData struct {
	Books []models.ListItem `json:"books"`
}

type bookData struct {
	Book models.Book `json:"book"`
}
