package books_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/store/books"
)

var bookCols = []string{
	"id", "name", "year", "author", "summary", "publisher",
	"page_count", "read_page", "reading", "inserted_at", "updated_at",
}

func newPG(t *testing.T) (*books.PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return books.NewPostgresStore(db), mock
}

func rowFor(rows *sqlmock.Rows, b models.Book) *sqlmock.Rows {
	return rows.AddRow(b.ID, b.Name, b.Year, b.Author, b.Summary, b.Publisher,
		b.PageCount, b.ReadPage, b.Reading, b.InsertedAt, b.UpdatedAt)
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	s, mock := newPG(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS books")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE books ADD COLUMN IF NOT EXISTS name_folded")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE UNIQUE INDEX IF NOT EXISTS books_seq_key")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS books_name_idx")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Insert(t *testing.T) {
	s, mock := newPG(t)
	b := book("abc", "Dune", 412, 0)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "books"`)).
		WithArgs(b.ID, b.Name, b.Year, b.Author, b.Summary, b.Publisher,
			b.PageCount, b.ReadPage, b.Reading, b.InsertedAt, b.UpdatedAt, "dune").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Insert(context.Background(), b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertDuplicateMapsToConflict(t *testing.T) {
	s, mock := newPG(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "books"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "books_pkey"})

	err := s.Insert(context.Background(), book("abc", "Dune", 412, 0))
	assert.ErrorIs(t, err, books.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	s, mock := newPG(t)
	want := book("abc", "Dune", 412, 412)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "books"`)).
		WithArgs("abc").
		WillReturnRows(rowFor(sqlmock.NewRows(bookCols), want))

	got, err := s.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.Finished())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetMissing(t *testing.T) {
	s, mock := newPG(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM "books"`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(bookCols))

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, books.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAppliesFiltersInOrder(t *testing.T) {
	s, mock := newPG(t)
	yes := true
	a := book("a", "War and Peace", 10, 10)
	a.Reading = true

	mock.ExpectQuery(`strpos\("name_folded", \$1\) > 0.*"reading" = \$2.*ORDER BY "seq" ASC`).
		WithArgs("war", true).
		WillReturnRows(rowFor(sqlmock.NewRows(bookCols), a))

	got, err := s.List(context.Background(), books.Filter{Name: "WAR", Reading: &yes})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListEmpty(t *testing.T) {
	s, mock := newPG(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY "seq" ASC`)).
		WillReturnRows(sqlmock.NewRows(bookCols))

	got, err := s.List(context.Background(), books.Filter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update(t *testing.T) {
	s, mock := newPG(t)
	cur := book("abc", "Dune", 412, 10)
	later := cur.UpdatedAt.Add(time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("abc").
		WillReturnRows(rowFor(sqlmock.NewRows(bookCols), cur))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "books" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := s.Update(context.Background(), "abc", func(b models.Book) (models.Book, error) {
		b.ReadPage = 100
		b.UpdatedAt = later
		return b, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 100, got.ReadPage)
	assert.Equal(t, later, got.UpdatedAt)
	assert.Equal(t, cur.InsertedAt, got.InsertedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateMissingRollsBack(t *testing.T) {
	s, mock := newPG(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(bookCols))
	mock.ExpectRollback()

	_, err := s.Update(context.Background(), "nope", func(b models.Book) (models.Book, error) { return b, nil })
	assert.ErrorIs(t, err, books.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	s, mock := newPG(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "books"`)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "books"`)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), "abc"))
	assert.ErrorIs(t, s.Delete(context.Background(), "abc"), books.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_NameFilterFoldsLikeMemory(t *testing.T) {
	s, mock := newPG(t)
	b := book("abc", "Straße", 10, 0)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "books"`)).
		WithArgs(b.ID, b.Name, b.Year, b.Author, b.Summary, b.Publisher,
			b.PageCount, b.ReadPage, b.Reading, b.InsertedAt, b.UpdatedAt, "strasse").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`strpos\("name_folded", \$1\) > 0`).
		WithArgs("strasse").
		WillReturnRows(rowFor(sqlmock.NewRows(bookCols), b))

	require.NoError(t, s.Insert(context.Background(), b))
	got, err := s.List(context.Background(), books.Filter{Name: "STRASSE"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, books.Filter{Name: "STRASSE"}.Match(b), "memory store must agree")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRewritesFoldedName(t *testing.T) {
	s, mock := newPG(t)
	cur := book("abc", "Dune", 412, 10)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("abc").
		WillReturnRows(rowFor(sqlmock.NewRows(bookCols), cur))
	mock.ExpectExec(`UPDATE "books" SET .*"name_folded"=\$`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := s.Update(context.Background(), "abc", func(b models.Book) (models.Book, error) {
		b.Name = "Dune Messiah"
		return b, nil
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
