package review

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/cinebuzz/discovery/models"
	"github.com/cinebuzz/discovery/services/catalog"
	"github.com/cinebuzz/discovery/services/common"
	"github.com/cinebuzz/discovery/services/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const storeKey = "reviews"

var (
	ErrAuthRequired    = errors.New("please sign in to write a review")
	ErrNotAuthor       = errors.New("only the author can delete a review")
	ErrRatingRequired  = common.NewValidationError("rating", "please select a rating for your review")
	ErrRatingRange     = common.NewValidationError("rating", "rating must be between 1 and 5")
	ErrContentRequired = common.NewValidationError("content", "please write some content for your review")
	ErrMovieRequired   = common.NewValidationError("movieId", "movie id is required")
)

type Input struct {
	MovieID string `json:"movieId"`
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func (in *Input) validate() error {
	if strings.TrimSpace(in.MovieID) == "" {
		return ErrMovieRequired
	}
	if in.Rating == 0 {
		return ErrRatingRequired
	}
	if in.Rating < 1 || in.Rating > 5 {
		return ErrRatingRange
	}
	if strings.TrimSpace(in.Content) == "" {
		return ErrContentRequired
	}
	return nil
}

// Reviews is the store of all reviews, newest first.
type Reviews struct {
	col *store.Collection[models.Review]
	now func() time.Time
}

var _ catalog.ReviewCounter = (*Reviews)(nil)

func New(b store.Backend) *Reviews {
	return &Reviews{
		col: store.NewCollection(b, func(r *models.Review) string { return r.ID }),
		now: time.Now,
	}
}

func (s *Reviews) List(ctx context.Context) ([]models.Review, error) {
	return s.col.List(ctx, storeKey)
}

func (s *Reviews) ListByMovie(ctx context.Context, movieID string) ([]models.Review, error) {
	return s.col.Filter(ctx, storeKey, func(r *models.Review) bool {
		return r.MovieID == movieID
	})
}

func (s *Reviews) ListByUser(ctx context.Context, userID string) ([]models.Review, error) {
	return s.col.Filter(ctx, storeKey, func(r *models.Review) bool {
		return r.User.ID == userID
	})
}

// Submit validates the input and stores a new review written by user.
// Nothing is written when validation fails.
func (s *Reviews) Submit(ctx context.Context, user *models.User, in Input) (*models.Review, error) {
	if user == nil || user.ID == "" {
		return nil, ErrAuthRequired
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	r := models.Review{
		ID:        "review-" + uuid.NewString(),
		MovieID:   strings.TrimSpace(in.MovieID),
		User:      user.Author(),
		Rating:    in.Rating,
		Content:   strings.TrimSpace(in.Content),
		Timestamp: s.now(),
	}
	if _, _, err := s.col.Prepend(ctx, storeKey, r); err != nil {
		return nil, errors.Wrap(err, "failed to store review")
	}
	log.WithField("movie", r.MovieID).WithField("user", user.ID).Info("review submitted")
	return &r, nil
}

// Delete removes the review if user wrote it. A missing review reports false.
func (s *Reviews) Delete(ctx context.Context, user *models.User, id string) (bool, error) {
	if user == nil || user.ID == "" {
		return false, ErrAuthRequired
	}
	r, err := s.col.Find(ctx, storeKey, id)
	if err != nil {
		return false, err
	}
	if r == nil {
		return false, nil
	}
	if r.User.ID != user.ID {
		return false, ErrNotAuthor
	}
	return s.col.Remove(ctx, storeKey, id)
}

// AverageRating is rounded to one decimal, 0 when the title has no reviews.
func (s *Reviews) AverageRating(ctx context.Context, movieID string) (float64, error) {
	rs, err := s.ListByMovie(ctx, movieID)
	if err != nil {
		return 0, err
	}
	if len(rs) == 0 {
		return 0, nil
	}
	total := 0
	for _, r := range rs {
		total += r.Rating
	}
	return math.Round(float64(total)/float64(len(rs))*10) / 10, nil
}

// Counts returns the number of reviews per title.
func (s *Reviews) Counts(ctx context.Context) (map[string]int, error) {
	rs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	res := make(map[string]int, len(rs))
	for _, r := range rs {
		res[r.MovieID]++
	}
	return res, nil
}
