package notification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, notification Notification) (int, error)
	ListForUser(ctx context.Context, userId int) ([]Notification, error)
	// MarkAllRead flips every unread notification of the user to read and
	// returns the number of rows affected.
	MarkAllRead(ctx context.Context, userId int) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, notification Notification) (int, error) {
	query := `INSERT INTO notifications (user_id, title, body) VALUES ($1, $2, $3) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		notification.UserId,
		notification.Title,
		notification.Body,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store notification: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userId int) ([]Notification, error) {
	query := `SELECT id, user_id, title, body, read, created_at
				FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query notifications: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.Id, &n.UserId, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			err := fmt.Errorf("could not scan notification: %w", err)
			log.Error(err)
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over notifications: %w", err)
		log.Error(err)
		return nil, err
	}
	return notifications, nil
}

func (r *RepositoryImpl) MarkAllRead(ctx context.Context, userId int) (int, error) {
	query := `UPDATE notifications SET read = true WHERE user_id = $1 AND read = false`
	tag, err := r.db.Exec(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not mark notifications read: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
