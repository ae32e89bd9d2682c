package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"kinfolk/internal/family/models"
	"kinfolk/pkg/platform/sentinel"
	txcontext "kinfolk/pkg/platform/tx"
)

const uniqueViolation = "23505"

const selectColumns = `id, full_name, birth_date, death_date, portrait_url, bio, father_id, mother_id, created_at`

// PostgresStore persists people in the people table. Parent ids carry no
// foreign key so that dangling references survive imports.
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

func (s *PostgresStore) Create(ctx context.Context, p *models.Person) error {
	query := `
		INSERT INTO people (id, full_name, birth_date, death_date, portrait_url, bio, father_id, mother_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		p.ID, p.FullName, p.BirthDate, p.DeathDate, p.PortraitURL, p.Bio,
		nullIfEmpty(p.FatherID), nullIfEmpty(p.MotherID), p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*models.Person, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT `+selectColumns+` FROM people WHERE id = $1`, id)
	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find person: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []string) ([]models.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.query(ctx, "find people by ids",
		`SELECT `+selectColumns+` FROM people WHERE id = ANY($1) ORDER BY created_at, id`, pq.Array(ids))
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Person, error) {
	return s.query(ctx, "list people", `SELECT `+selectColumns+` FROM people ORDER BY created_at, id`)
}

func (s *PostgresStore) ListChildren(ctx context.Context, parentID string) ([]models.Person, error) {
	return s.query(ctx, "list children",
		`SELECT `+selectColumns+` FROM people WHERE father_id = $1 OR mother_id = $1 ORDER BY created_at, id`, parentID)
}

func (s *PostgresStore) Search(ctx context.Context, query, excludeID string, limit int) ([]models.Person, error) {
	pattern := "%" + escapeLike(query) + "%"
	return s.query(ctx, "search people", `
		SELECT `+selectColumns+` FROM people
		WHERE full_name ILIKE $1 AND id <> $2
		ORDER BY lower(full_name), created_at
		LIMIT $3
	`, pattern, excludeID, limit)
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Person) error {
	query := `
		UPDATE people SET full_name = $2, birth_date = $3, death_date = $4, portrait_url = $5, bio = $6
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, p.ID, p.FullName, p.BirthDate, p.DeathDate, p.PortraitURL, p.Bio)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) SetParents(ctx context.Context, id, fatherID, motherID string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE people SET father_id = $2, mother_id = $3 WHERE id = $1`,
		id, nullIfEmpty(fatherID), nullIfEmpty(motherID))
	if err != nil {
		return fmt.Errorf("set parents: %w", err)
	}
	return requireRow(res)
}

// Delete clears parent references to id before removing the row. Callers
// wanting atomicity run it inside a transaction.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	exec := s.execer(ctx)
	if _, err := exec.ExecContext(ctx, `UPDATE people SET father_id = NULL WHERE father_id = $1`, id); err != nil {
		return fmt.Errorf("clear father references: %w", err)
	}
	if _, err := exec.ExecContext(ctx, `UPDATE people SET mother_id = NULL WHERE mother_id = $1`, id); err != nil {
		return fmt.Errorf("clear mother references: %w", err)
	}
	res, err := exec.ExecContext(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) query(ctx context.Context, op, query string, args ...any) ([]models.Person, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPerson(row scanner) (*models.Person, error) {
	var (
		p        models.Person
		fatherID sql.NullString
		motherID sql.NullString
	)
	if err := row.Scan(&p.ID, &p.FullName, &p.BirthDate, &p.DeathDate, &p.PortraitURL, &p.Bio,
		&fatherID, &motherID, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.FatherID = fatherID.String
	p.MotherID = motherID.String
	return &p, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
