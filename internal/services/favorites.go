package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"
)

type favoriteService struct {
	favoriteRepo   domain.FavoriteRepository
	userRepo       domain.UserRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewFavoriteService creates the favorites index.
func NewFavoriteService(favoriteRepo domain.FavoriteRepository, userRepo domain.UserRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.FavoriteService {
	return &favoriteService{
		favoriteRepo:   favoriteRepo,
		userRepo:       userRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *favoriteService) AddFavorite(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if err := s.favoriteRepo.Add(ctx, userID, eventID); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireUser(ctx, userID); err != nil {
		return err
	}
	if err := s.favoriteRepo.Remove(ctx, userID, eventID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (s *favoriteService) ListFavorites(ctx context.Context, userID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids, err := s.favoriteRepo.ListEventIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	events := make([]*domain.Event, 0, len(ids))
	for _, id := range ids {
		ev, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Event deleted since it was favorited.
				continue
			}
			return nil, fmt.Errorf("get favorite event: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *favoriteService) requireUser(ctx context.Context, userID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}
	return nil
}
