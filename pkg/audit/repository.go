package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneta-app/moneta/internal/database"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, limit int) ([]Entry, error)
	// WithTx returns a Repository that runs its queries inside tx.
	WithTx(tx pgx.Tx) Repository
}

type RepositoryImpl struct {
	db database.Querier
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) WithTx(tx pgx.Tx) Repository {
	return &RepositoryImpl{db: tx}
}

func (r *RepositoryImpl) Store(ctx context.Context, entry Entry) (Entry, error) {
	query := `INSERT INTO audit_log (user_id, action, entity, entity_id, changes)
				VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		entry.UserId,
		entry.Action,
		entry.Entity,
		entry.EntityId,
		entry.Changes,
	).Scan(&entry.Id, &entry.CreatedAt)
	if err != nil {
		err := fmt.Errorf("could not store audit entry: %w", err)
		log.Error(err)
		return Entry{}, err
	}
	return entry, nil
}

func (r *RepositoryImpl) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, user_id, action, entity, entity_id, changes, created_at
				FROM audit_log ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		err := fmt.Errorf("could not query audit entries: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(
			&entry.Id,
			&entry.UserId,
			&entry.Action,
			&entry.Entity,
			&entry.EntityId,
			&entry.Changes,
			&entry.CreatedAt,
		); err != nil {
			err := fmt.Errorf("could not scan audit entry: %w", err)
			log.Error(err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over audit entries: %w", err)
		log.Error(err)
		return nil, err
	}
	return entries, nil
}
