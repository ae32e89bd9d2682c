package union

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"kinfolk/internal/family/models"
	"kinfolk/pkg/platform/sentinel"
	txcontext "kinfolk/pkg/platform/tx"
)

const uniqueViolation = "23505"

const selectColumns = `id, person1_id, person2_id, union_date, divorce_date, union_type, created_at`

// PostgresStore persists unions. A unique index on the ordered pair
// (LEAST, GREATEST) enforces one union per couple.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, u *models.Union) error {
	query := `
		INSERT INTO unions (id, person1_id, person2_id, union_date, divorce_date, union_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		u.ID, u.Person1ID, u.Person2ID, u.UnionDate, u.DivorceDate, string(u.Type), u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert union: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Union, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+selectColumns+` FROM unions WHERE id = $1`, id)
	return s.one(row, "find union")
}

func (s *PostgresStore) FindByPair(ctx context.Context, a, b string) (*models.Union, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM unions
		WHERE (person1_id = $1 AND person2_id = $2) OR (person1_id = $2 AND person2_id = $1)
		ORDER BY created_at
		LIMIT 1
	`, a, b)
	return s.one(row, "find union by pair")
}

func (s *PostgresStore) ListByPerson(ctx context.Context, personID string) ([]models.Union, error) {
	return s.query(ctx, "list unions by person",
		`SELECT `+selectColumns+` FROM unions WHERE person1_id = $1 OR person2_id = $1 ORDER BY created_at, id`, personID)
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Union, error) {
	return s.query(ctx, "list unions", `SELECT `+selectColumns+` FROM unions ORDER BY created_at, id`)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM unions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete union: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByPerson(ctx context.Context, personID string) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM unions WHERE person1_id = $1 OR person2_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("delete unions by person: %w", err)
	}
	return nil
}

func (s *PostgresStore) one(row *sql.Row, op string) (*models.Union, error) {
	u, err := scanUnion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]models.Union, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Union
	for rows.Next() {
		u, err := scanUnion(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUnion(row scanner) (*models.Union, error) {
	var (
		u         models.Union
		unionType string
	)
	if err := row.Scan(&u.ID, &u.Person1ID, &u.Person2ID, &u.UnionDate, &u.DivorceDate, &unionType, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Type = models.UnionType(unionType)
	return &u, nil
}
