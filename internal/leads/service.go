package leads

import (
	"context"
	"fmt"
	"strings"

	"github.com/prime-apparel/backend/internal/shared"
)

// Service owns lead intake and pipeline progression.
type Service struct {
	repo Repository
}

// NewService constructs a lead service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Capture stores a new enquiry from the public form. Every lead starts NEW.
func (s *Service) Capture(ctx context.Context, lead Lead) (Lead, error) {
	if strings.TrimSpace(lead.Name) == "" || strings.TrimSpace(lead.Email) == "" {
		return Lead{}, fmt.Errorf("%w: name and email are required", shared.ErrValidation)
	}
	lead.Email = strings.ToLower(strings.TrimSpace(lead.Email))
	lead.Status = StatusNew
	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		return Lead{}, err
	}
	if err := s.repo.AppendHistory(ctx, HistoryEntry{LeadID: created.ID, Action: "Lead created"}); err != nil {
		return Lead{}, err
	}
	return created, nil
}

// Get returns a lead with its history.
func (s *Service) Get(ctx context.Context, id int64) (Lead, []HistoryEntry, error) {
	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lead{}, nil, err
	}
	history, err := s.repo.History(ctx, id)
	if err != nil {
		return Lead{}, nil, err
	}
	return lead, history, nil
}

// List returns leads matching the filters.
func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Lead, int, error) {
	return s.repo.List(ctx, filters)
}

// Update applies changes to a lead. A status change appends a history
// entry attributed to the acting user.
func (s *Service) Update(ctx context.Context, id int64, updated Lead, actorID int64) (Lead, error) {
	if !updated.Status.Valid() {
		return Lead{}, fmt.Errorf("%w: unknown lead status %q", shared.ErrValidation, updated.Status)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lead{}, err
	}
	updated.ID = id
	if err := s.repo.Update(ctx, updated); err != nil {
		return Lead{}, err
	}
	if current.Status != updated.Status {
		entry := HistoryEntry{
			LeadID:  id,
			Action:  fmt.Sprintf("Status changed from %s to %s", current.Status, updated.Status),
			ActorID: actorID,
		}
		if err := s.repo.AppendHistory(ctx, entry); err != nil {
			return Lead{}, err
		}
	}
	return s.repo.Get(ctx, id)
}
