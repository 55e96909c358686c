package domain

import "context"

// FavoriteRepository stores each user's set of favorite event ids.
type FavoriteRepository interface {
	// Add is a no-op when the pair already exists.
	Add(ctx context.Context, userID, eventID string) error
	// Remove is a no-op when the pair does not exist.
	Remove(ctx context.Context, userID, eventID string) error
	ListEventIDs(ctx context.Context, userID string) ([]string, error)
}

// FavoriteService is the Favorites Index.
type FavoriteService interface {
	AddFavorite(ctx context.Context, userID, eventID string) error
	RemoveFavorite(ctx context.Context, userID, eventID string) error
	// ListFavorites resolves favorites to events; ids whose event was deleted are skipped.
	ListFavorites(ctx context.Context, userID string) ([]*Event, error)
}
