package remittance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrRemittanceNotFound = errors.New("remittance not found")

type Repository interface {
	Store(ctx context.Context, remittance Remittance) (Remittance, error)
	GetById(ctx context.Context, id int) (Remittance, error)
	ListForUser(ctx context.Context, userId int) ([]Remittance, error)
	ListByStatus(ctx context.Context, status Status) ([]Remittance, error)
	// UpdateStatus moves the remittance from one status to another, failing
	// when the remittance is no longer in the expected status.
	UpdateStatus(ctx context.Context, id int, from Status, to Status, note string, updatedAt time.Time) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const remittanceColumns = `id, uid, user_id, amount, status, note, created_at, updated_at`

func (r *RepositoryImpl) Store(ctx context.Context, remittance Remittance) (Remittance, error) {
	query := `INSERT INTO remittances (uid, user_id, amount, status, note)
				VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		remittance.Uid,
		remittance.UserId,
		remittance.Amount,
		remittance.Status,
		remittance.Note,
	).Scan(&remittance.Id, &remittance.CreatedAt, &remittance.UpdatedAt)
	if err != nil {
		err := fmt.Errorf("could not store remittance: %w", err)
		log.Error(err)
		return Remittance{}, err
	}
	return remittance, nil
}

func (r *RepositoryImpl) GetById(ctx context.Context, id int) (Remittance, error) {
	query := fmt.Sprintf(`SELECT %s FROM remittances WHERE id = $1`, remittanceColumns)
	remittance, err := scanRemittance(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Remittance{}, ErrRemittanceNotFound
	} else if err != nil {
		err := fmt.Errorf("could not query remittance: %w", err)
		log.Error(err)
		return Remittance{}, err
	}
	return remittance, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userId int) ([]Remittance, error) {
	query := fmt.Sprintf(`SELECT %s FROM remittances WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, remittanceColumns)
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query remittances: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()
	return collectRemittances(rows)
}

func (r *RepositoryImpl) ListByStatus(ctx context.Context, status Status) ([]Remittance, error) {
	query := fmt.Sprintf(`SELECT %s FROM remittances WHERE status = $1 ORDER BY created_at DESC, id DESC`, remittanceColumns)
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		err := fmt.Errorf("could not query remittances: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()
	return collectRemittances(rows)
}

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, id int, from Status, to Status, note string, updatedAt time.Time) (bool, error) {
	query := `UPDATE remittances SET status = $1, note = $2, updated_at = $3 WHERE id = $4 AND status = $5`
	tag, err := r.db.Exec(ctx, query, to, note, updatedAt, id, from)
	if err != nil {
		err := fmt.Errorf("could not update remittance status: %w", err)
		log.Error(err)
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanRemittance(row pgx.Row) (Remittance, error) {
	var rem Remittance
	err := row.Scan(
		&rem.Id,
		&rem.Uid,
		&rem.UserId,
		&rem.Amount,
		&rem.Status,
		&rem.Note,
		&rem.CreatedAt,
		&rem.UpdatedAt,
	)
	return rem, err
}

func collectRemittances(rows pgx.Rows) ([]Remittance, error) {
	var remittances []Remittance
	for rows.Next() {
		rem, err := scanRemittance(rows)
		if err != nil {
			err := fmt.Errorf("could not scan remittance: %w", err)
			log.Error(err)
			return nil, err
		}
		remittances = append(remittances, rem)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over remittances: %w", err)
		log.Error(err)
		return nil, err
	}
	return remittances, nil
}
