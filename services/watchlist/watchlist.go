package watchlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUserRequired    = errors.New("user is required")
	ErrItemIDMissing   = common.NewValidationError("id", "watchlist item id is required")
	ErrItemTypeMissing = common.NewValidationError("type", "watchlist item type must be movie or tv")
)

// Watchlist keeps one collection of saved titles per user.
type Watchlist struct {
	col *store.Collection[models.WatchlistItem]
	now func() time.Time
}

func New(b store.Backend) *Watchlist {
	return &Watchlist{
		col: store.NewCollection(b, func(it *models.WatchlistItem) string { return it.ID }),
		now: time.Now,
	}
}

func key(userID string) string {
	return fmt.Sprintf("watchlist:%v", userID)
}

func check(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserRequired
	}
	return nil
}

func (s *Watchlist) List(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	if err := check(userID); err != nil {
		return nil, err
	}
	return s.col.List(ctx, key(userID))
}

func (s *Watchlist) ListByType(ctx context.Context, userID string, t models.MediaType) ([]models.WatchlistItem, error) {
	if err := check(userID); err != nil {
		return nil, err
	}
	return s.col.Filter(ctx, key(userID), func(it *models.WatchlistItem) bool {
		return it.Type == t
	})
}

func (s *Watchlist) Exists(ctx context.Context, userID string, id string) (bool, error) {
	if err := check(userID); err != nil {
		return false, err
	}
	return s.col.Exists(ctx, key(userID), id)
}

// Add saves item unless it is already on the list. The type must name a movie
// or a show. AddedAt is set when empty.
func (s *Watchlist) Add(ctx context.Context, userID string, item models.WatchlistItem) (*models.WatchlistItem, bool, error) {
	if err := check(userID); err != nil {
		return nil, false, err
	}
	if item.ID == "" {
		return nil, false, ErrItemIDMissing
	}
	t, ok := models.ParseMediaType(string(item.Type))
	if !ok {
		return nil, false, ErrItemTypeMissing
	}
	item.Type = t
	if item.AddedAt.IsZero() {
		item.AddedAt = s.now()
	}
	res, added, err := s.col.Add(ctx, key(userID), item)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to add watchlist item")
	}
	if added {
		log.WithField("user", userID).WithField("id", item.ID).Debug("watchlist item added")
	}
	return &res, added, nil
}

func (s *Watchlist) Remove(ctx context.Context, userID string, id string) (bool, error) {
	if err := check(userID); err != nil {
		return false, err
	}
	removed, err := s.col.Remove(ctx, key(userID), id)
	if err != nil {
		return false, errors.Wrap(err, "failed to remove watchlist item")
	}
	return removed, nil
}

// Toggle removes the item when present and adds it otherwise, so item only
// needs its id when it is already saved. It reports whether the item is on
// the list afterwards.
func (s *Watchlist) Toggle(ctx context.Context, userID string, item models.WatchlistItem) (bool, error) {
	removed, err := s.Remove(ctx, userID, item.ID)
	if err != nil || removed {
		return false, err
	}
	_, _, err = s.Add(ctx, userID, item)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Reset drops every item of the user.
func (s *Watchlist) Reset(ctx context.Context, userID string) error {
	if err := check(userID); err != nil {
		return err
	}
	return s.col.Reset(ctx, key(userID))
}
