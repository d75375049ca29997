package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/soaringjerry/valoracion/internal/models"
	"github.com/soaringjerry/valoracion/internal/notify"
)

// DefaultMaxCommentLength bounds the free-text comment, counted in runes.
const DefaultMaxCommentLength = 5000

// questionKeys are the JSON field names of the four yes/no answers, in order.
var questionKeys = [4]string{"q1", "q2", "q3", "q4"}

type ReviewStore interface {
	CreateReview(ctx context.Context, in models.NewReview) (*models.Review, error)
	ListReviews(ctx context.Context) ([]*models.Review, error)
	DeleteReview(ctx context.Context, id int64) (bool, error)
	CountReviews(ctx context.Context, f models.ReviewFilter) (int, error)
}

type ReviewService struct {
	store            ReviewStore
	publisher        notify.Publisher
	logger           zerolog.Logger
	now              func() time.Time
	maxCommentLength int
}

func NewReviewService(store ReviewStore, publisher notify.Publisher, logger zerolog.Logger) *ReviewService {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &ReviewService{
		store:            store,
		publisher:        publisher,
		logger:           logger.With().Str("component", "reviews").Logger(),
		now:              func() time.Time { return time.Now().UTC() },
		maxCommentLength: DefaultMaxCommentLength,
	}
}

// SetMaxCommentLength changes the comment bound. Non-positive values keep the
// current limit.
func (s *ReviewService) SetMaxCommentLength(n int) {
	if n > 0 {
		s.maxCommentLength = n
	}
}

// ParseSubmission validates a raw submission body. Each of q1..q4 must be a
// JSON boolean; comment may be absent, null or a string.
func (s *ReviewService) ParseSubmission(body []byte) (models.NewReview, error) {
	var in models.NewReview
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return in, NewInvalidError("error.invalid_json", "request body must be a JSON object")
	}

	var answers [4]bool
	for i, key := range questionKeys {
		raw, ok := fields[key]
		if !ok || isJSONNull(raw) {
			return in, NewInvalidError("error.missing_answers", "missing required answer "+key)
		}
		if err := json.Unmarshal(raw, &answers[i]); err != nil {
			return in, NewInvalidError("error.answer_not_bool", key+" must be a boolean")
		}
	}
	in.Q1, in.Q2, in.Q3, in.Q4 = answers[0], answers[1], answers[2], answers[3]

	if raw, ok := fields["comment"]; ok && !isJSONNull(raw) {
		var comment string
		if err := json.Unmarshal(raw, &comment); err != nil {
			return in, NewInvalidError("error.comment_type", "comment must be a string")
		}
		if n := utf8.RuneCountInString(comment); n > s.maxCommentLength {
			return in, NewInvalidError("error.comment_too_long",
				fmt.Sprintf("comment has %d characters, limit is %d", n, s.maxCommentLength))
		}
		in.Comment = &comment
	}
	return in, nil
}

// Submit validates and stores a public submission.
func (s *ReviewService) Submit(ctx context.Context, body []byte) (*models.Review, error) {
	in, err := s.ParseSubmission(body)
	if err != nil {
		return nil, err
	}
	review, err := s.store.CreateReview(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.logger.Info().Int64("review_id", review.ID).Bool("has_comment", review.Comment != nil).Msg("review submitted")
	s.publish(ctx, notify.Event{Type: notify.ReviewCreated, ReviewID: review.ID, Review: review, OccurredAt: review.CreatedAt})
	return review, nil
}

// List returns every review, newest first.
func (s *ReviewService) List(ctx context.Context, claims *AccountClaims) ([]*models.Review, error) {
	if claims == nil {
		return nil, ErrMissingToken
	}
	rs, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return rs, nil
}

// Delete removes a single review.
func (s *ReviewService) Delete(ctx context.Context, claims *AccountClaims, id int64) error {
	if claims == nil {
		return ErrMissingToken
	}
	ok, err := s.store.DeleteReview(ctx, id)
	if err != nil {
		return fmt.Errorf("delete review %d: %w", id, err)
	}
	if !ok {
		return NewNotFoundError("error.review_not_found", "review not found")
	}
	s.logger.Info().Int64("review_id", id).Str("by", claims.Username).Msg("review deleted")
	s.publish(ctx, notify.Event{Type: notify.ReviewDeleted, ReviewID: id, OccurredAt: s.now()})
	return nil
}

// Stats counts all reviews and the "yes" answers per question.
func (s *ReviewService) Stats(ctx context.Context, claims *AccountClaims) (*models.Stats, error) {
	if claims == nil {
		return nil, ErrMissingToken
	}
	total, err := s.store.CountReviews(ctx, models.ReviewFilter{})
	if err != nil {
		return nil, fmt.Errorf("count reviews: %w", err)
	}
	var yes [4]int
	for i := range yes {
		n, err := s.store.CountReviews(ctx, models.Question(i+1, true))
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", questionKeys[i], err)
		}
		yes[i] = n
	}
	return &models.Stats{Total: total, Q1: yes[0], Q2: yes[1], Q3: yes[2], Q4: yes[3]}, nil
}

// ExportCSV renders the review history as CSV, newest first.
func (s *ReviewService) ExportCSV(ctx context.Context, claims *AccountClaims) ([]byte, error) {
	rs, err := s.List(ctx, claims)
	if err != nil {
		return nil, err
	}
	return ExportReviewsCSV(rs)
}

func (s *ReviewService) publish(ctx context.Context, e notify.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("event", e.Key()).Msg("publish review event")
	}
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
