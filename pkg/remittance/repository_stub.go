package remittance

import (
	"context"
	"sort"
	"time"
)

type StubRepository struct {
	nextId int
	data   map[int]Remittance
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[int]Remittance{}}
}

func (s *StubRepository) Store(ctx context.Context, remittance Remittance) (Remittance, error) {
	s.nextId++
	remittance.Id = s.nextId
	remittance.CreatedAt = time.Now()
	remittance.UpdatedAt = remittance.CreatedAt
	s.data[remittance.Id] = remittance
	return remittance, nil
}

func (s *StubRepository) GetById(ctx context.Context, id int) (Remittance, error) {
	remittance, ok := s.data[id]
	if !ok {
		return Remittance{}, ErrRemittanceNotFound
	}
	return remittance, nil
}

func (s *StubRepository) ListForUser(ctx context.Context, userId int) ([]Remittance, error) {
	var remittances []Remittance
	for _, r := range s.data {
		if r.UserId == userId {
			remittances = append(remittances, r)
		}
	}
	sortRemittances(remittances)
	return remittances, nil
}

func (s *StubRepository) ListByStatus(ctx context.Context, status Status) ([]Remittance, error) {
	var remittances []Remittance
	for _, r := range s.data {
		if r.Status == status {
			remittances = append(remittances, r)
		}
	}
	sortRemittances(remittances)
	return remittances, nil
}

func (s *StubRepository) UpdateStatus(ctx context.Context, id int, from Status, to Status, note string, updatedAt time.Time) (bool, error) {
	existing, ok := s.data[id]
	if !ok || existing.Status != from {
		return false, nil
	}
	existing.Status = to
	existing.Note = note
	existing.UpdatedAt = updatedAt
	s.data[id] = existing
	return true, nil
}

func (s *StubRepository) Cleanup() {
	s.nextId = 0
	s.data = map[int]Remittance{}
}

func sortRemittances(remittances []Remittance) {
	sort.Slice(remittances, func(i, j int) bool {
		return remittances[i].Id > remittances[j].Id
	})
}
