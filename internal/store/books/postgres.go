package books

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/5w1tchy/bookshelf-api/internal/models"
	"github.com/5w1tchy/bookshelf-api/internal/store/dbx"
)

//go:embed schema.sql
var schemaSQL string

const (
	tableBooks = "books"

	colSeq        = "seq"
	colID         = "id"
	colName       = "name"
	colNameFolded = "name_folded"
	colYear       = "year"
	colAuthor     = "author"
	colSummary    = "summary"
	colPublisher  = "publisher"
	colPageCount  = "page_count"
	colReadPage   = "read_page"
	colFinished   = "finished"
	colReading    = "reading"
	colInsertedAt = "inserted_at"
	colUpdatedAt  = "updated_at"
)

var bookColumns = []any{
	colID, colName, colYear, colAuthor, colSummary, colPublisher,
	colPageCount, colReadPage, colReading, colInsertedAt, colUpdatedAt,
}

var insertColumns = append(append([]any{}, bookColumns...), colNameFolded)

// PostgresStore persists books in a single table. Insertion order is kept by
// the seq column; finished is a generated column so it cannot drift from the
// page counters. name_folded holds the case-folded name the name filter
// matches against, written alongside name on every insert and update.
type PostgresStore struct {
	db *sql.DB
	qb goqu.DialectWrapper
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, qb: goqu.Dialect("postgres")}
}

// EnsureSchema creates the books table and its indexes if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) selectBooks() *goqu.SelectDataset {
	return s.qb.From(tableBooks).Prepared(true).Select(bookColumns...)
}

func scanBook(sc interface{ Scan(...any) error }) (models.Book, error) {
	var b models.Book
	err := sc.Scan(&b.ID, &b.Name, &b.Year, &b.Author, &b.Summary, &b.Publisher,
		&b.PageCount, &b.ReadPage, &b.Reading, &b.InsertedAt, &b.UpdatedAt)
	return b, err
}

func (s *PostgresStore) Insert(ctx context.Context, b models.Book) error {
	q, args, err := s.qb.Insert(tableBooks).Prepared(true).
		Cols(insertColumns...).
		Vals(goqu.Vals{
			b.ID, b.Name, b.Year, b.Author, b.Summary, b.Publisher,
			b.PageCount, b.ReadPage, b.Reading, b.InsertedAt, b.UpdatedAt,
			fold(b.Name),
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return mapPGError(err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, f Filter) ([]models.Book, error) {
	ds := s.selectBooks().Order(goqu.C(colSeq).Asc())
	if f.Name != "" {
		ds = ds.Where(goqu.L("strpos(?, ?) > 0", goqu.C(colNameFolded), fold(f.Name)))
	}
	if f.Reading != nil {
		ds = ds.Where(goqu.L("? = ?", goqu.C(colReading), *f.Reading))
	}
	if f.Finished != nil {
		ds = ds.Where(goqu.L("? = ?", goqu.C(colFinished), *f.Finished))
	}
	q, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	return s.query(ctx, s.db, q, args...)
}

func (s *PostgresStore) query(ctx context.Context, db dbx.DBTX, q string, args ...any) ([]models.Book, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapPGError(err)
	}
	defer rows.Close()

	out := []models.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) getOne(ctx context.Context, db dbx.DBTX, ds *goqu.SelectDataset) (models.Book, error) {
	q, args, err := ds.ToSQL()
	if err != nil {
		return models.Book{}, fmt.Errorf("build select: %w", err)
	}
	b, err := scanBook(db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Book{}, ErrNotFound
	}
	if err != nil {
		return models.Book{}, mapPGError(err)
	}
	return b, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Book, error) {
	return s.getOne(ctx, s.db, s.selectBooks().Where(goqu.C(colID).Eq(id)))
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (models.Book, error) {
	ds := s.selectBooks().
		Where(goqu.C(colName).Eq(name)).
		Order(goqu.C(colSeq).Asc()).
		Limit(1)
	return s.getOne(ctx, s.db, ds)
}

// Update locks the row, runs apply on it and writes back every mutable column.
func (s *PostgresStore) Update(ctx context.Context, id string, apply func(models.Book) (models.Book, error)) (models.Book, error) {
	var out models.Book
	err := dbx.WithinTx(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sql.Tx) error {
		cur, err := s.getOne(ctx, tx, s.selectBooks().
			Where(goqu.C(colID).Eq(id)).
			ForUpdate(exp.Wait))
		if err != nil {
			return err
		}
		next, err := apply(cur)
		if err != nil {
			return err
		}
		next.ID = cur.ID
		next.InsertedAt = cur.InsertedAt

		q, args, err := s.qb.Update(tableBooks).Prepared(true).
			Set(goqu.Record{
				colName:       next.Name,
				colNameFolded: fold(next.Name),
				colYear:       next.Year,
				colAuthor:     next.Author,
				colSummary:    next.Summary,
				colPublisher:  next.Publisher,
				colPageCount:  next.PageCount,
				colReadPage:   next.ReadPage,
				colReading:    next.Reading,
				colUpdatedAt:  next.UpdatedAt,
			}).
			Where(goqu.C(colID).Eq(id)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return mapPGError(err)
		}
		out = next
		return nil
	})
	if err != nil {
		return models.Book{}, err
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	q, args, err := s.qb.Delete(tableBooks).Prepared(true).
		Where(goqu.C(colID).Eq(id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return mapPGError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) All(ctx context.Context) ([]models.Book, error) {
	return s.List(ctx, Filter{})
}
