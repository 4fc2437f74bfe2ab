package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type StubRepository struct {
	nextId  int
	Entries []Entry
}

func NewStubRepository() *StubRepository {
	return &StubRepository{}
}

func (s *StubRepository) Store(ctx context.Context, entry Entry) (Entry, error) {
	s.nextId++
	entry.Id = s.nextId
	entry.CreatedAt = time.Now()
	s.Entries = append(s.Entries, entry)
	return entry, nil
}

func (s *StubRepository) List(ctx context.Context, limit int) ([]Entry, error) {
	entries := make([]Entry, 0, limit)
	for i := len(s.Entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, s.Entries[i])
	}
	return entries, nil
}

func (s *StubRepository) WithTx(tx pgx.Tx) Repository {
	return s
}

func (s *StubRepository) Cleanup() {
	s.nextId = 0
	s.Entries = nil
}

// StubRecorder collects recorded entries in memory. It is used by service
// tests in other packages.
type StubRecorder struct {
	Entries []Entry
}

func NewStubRecorder() *StubRecorder {
	return &StubRecorder{}
}

func (s *StubRecorder) Record(ctx context.Context, action string, entity string, entityId int, changes map[string]any) error {
	s.Entries = append(s.Entries, Entry{
		Action:   action,
		Entity:   entity,
		EntityId: entityId,
		Changes:  changes,
	})
	return nil
}

func (s *StubRecorder) WithTx(tx pgx.Tx) Recorder {
	return s
}

func (s *StubRecorder) Cleanup() {
	s.Entries = nil
}
