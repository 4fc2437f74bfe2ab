package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/moneta-app/moneta/internal/events"
	"github.com/moneta-app/moneta/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Recorder appends audit entries for mutating actions. The actor is taken
// from the request context.
type Recorder interface {
	Record(ctx context.Context, action string, entity string, entityId int, changes map[string]any) error
	// WithTx returns a Recorder that stores entries inside tx, so the entry
	// commits or rolls back together with the change it describes.
	WithTx(tx pgx.Tx) Recorder
}

type Service interface {
	Recorder
	// List returns the newest entries, admin only.
	List(ctx context.Context, limit int) ([]Entry, error)
}

// EntryEvent is the payload published to the outbound event stream for every
// recorded entry.
type EntryEvent struct {
	Id        int            `json:"id"`
	UserId    int            `json:"userId"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityId  int            `json:"entityId"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

type ServiceImpl struct {
	repo      Repository
	publisher events.Publisher
}

func NewService(repo Repository, publisher events.Publisher) *ServiceImpl {
	return &ServiceImpl{repo: repo, publisher: publisher}
}

func (s *ServiceImpl) WithTx(tx pgx.Tx) Recorder {
	return &ServiceImpl{repo: s.repo.WithTx(tx), publisher: s.publisher}
}

func (s *ServiceImpl) Record(ctx context.Context, action string, entity string, entityId int, changes map[string]any) error {
	actorId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	stored, err := s.repo.Store(ctx, Entry{
		UserId:   actorId,
		Action:   action,
		Entity:   entity,
		EntityId: entityId,
		Changes:  changes,
	})
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, EntryEvent{
		Id:        stored.Id,
		UserId:    stored.UserId,
		Action:    stored.Action,
		Entity:    stored.Entity,
		EntityId:  stored.EntityId,
		Changes:   stored.Changes,
		CreatedAt: stored.CreatedAt,
	}); err != nil {
		// The entry is already persisted; a failed outbound publish must not
		// fail the originating request.
		log.Errorf("failed to publish audit event: %v", err)
	}
	return nil
}

func (s *ServiceImpl) List(ctx context.Context, limit int) ([]Entry, error) {
	if _, err := user.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.List(ctx, limit)
}
