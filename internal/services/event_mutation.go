package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"
)

// eventMutator runs read-modify-write cycles on one event under its lock, then saves
// conditionally on the loaded version. Both the lock and the version check are needed:
// the lock orders writers that share a locker, the version catches any that do not.
type eventMutator struct {
	eventRepo domain.EventRepository
	locker    domain.EventLocker
	now       func() time.Time
}

func (m *eventMutator) mutate(ctx context.Context, eventID string, fn func(event *domain.Event) error) (*domain.Event, error) {
	unlock, err := m.locker.Lock(ctx, eventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	event, err := m.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if err := fn(event); err != nil {
		return nil, err
	}
	event.UpdatedAt = m.now()
	if err := m.eventRepo.Save(ctx, event); err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			return nil, domain.ErrConflict
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("save event: %w", err)
	}
	return event, nil
}
