package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"pollsapi/internal/domain"
	"pollsapi/internal/logger"
	"pollsapi/internal/model"
	"pollsapi/internal/repository"
)

const (
	// IndexSize is how many questions the index page lists.
	IndexSize = 5
	// maxVoteAttempts bounds the reload-and-retry loop on version conflicts.
	maxVoteAttempts = 3
)

// PollService defines the public use cases of the polls app.
type PollService interface {
	// Index returns the latest published questions, newest first.
	Index(ctx context.Context) ([]*model.Question, error)

	// Detail returns a published question. Questions with a future
	// publication date are reported as not found.
	Detail(ctx context.Context, id int64) (*model.Question, error)

	// Results returns the vote tally of a question.
	Results(ctx context.Context, id int64) (*ResultsView, error)

	// Vote adds one vote to choiceID and returns the saved question.
	Vote(ctx context.Context, questionID, choiceID int64) (*model.Question, error)
}

type pollService struct {
	repo repository.QuestionRepository
	log  *zap.Logger
	now  func() time.Time
}

// NewPollService constructs a PollService. A nil logger discards output.
func NewPollService(repo repository.QuestionRepository, log *zap.Logger) PollService {
	if log == nil {
		log = zap.NewNop()
	}
	return &pollService{repo: repo, log: log, now: time.Now}
}

func (s *pollService) Index(ctx context.Context) (_ []*model.Question, err error) {
	ctx, span := startSpan(ctx, "PollService.Index")
	defer func() { endSpan(span, err) }()

	return s.repo.Search(ctx, nil,
		domain.WithFilter(repository.FilterPublishedBefore, s.now()),
		domain.OrderBy("-"+repository.OrderPubDate),
		domain.WithLimit(IndexSize),
	)
}

func (s *pollService) Detail(ctx context.Context, id int64) (_ *model.Question, err error) {
	ctx, span := startSpan(ctx, "PollService.Detail", attribute.Int64("poll.question_id", id))
	defer func() { endSpan(span, err) }()

	return s.published(ctx, id)
}

func (s *pollService) Results(ctx context.Context, id int64) (_ *ResultsView, err error) {
	ctx, span := startSpan(ctx, "PollService.Results", attribute.Int64("poll.question_id", id))
	defer func() { endSpan(span, err) }()

	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildResults(q), nil
}

func (s *pollService) Vote(ctx context.Context, questionID, choiceID int64) (_ *model.Question, err error) {
	ctx, span := startSpan(ctx, "PollService.Vote",
		attribute.Int64("poll.question_id", questionID),
		attribute.Int64("poll.choice_id", choiceID),
	)
	defer func() { endSpan(span, err) }()

	if choiceID <= 0 {
		return nil, ErrChoiceNotFound
	}

	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		q, err := s.published(ctx, questionID)
		if err != nil {
			return nil, err
		}
		if _, err := q.Vote(domain.IntID(choiceID)); err != nil {
			return nil, translate(err)
		}

		err = s.repo.Save(ctx, q)
		if err == nil {
			span.SetAttributes(attribute.Int("poll.vote_attempts", attempt))
			return q, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, translate(err)
		}
		logger.For(ctx, s.log).Debug("vote_conflict",
			zap.Int64("question_id", questionID),
			zap.Int("attempt", attempt),
		)
	}

	logger.For(ctx, s.log).Warn("vote_conflict_exhausted",
		zap.Int64("question_id", questionID),
		zap.Int("attempts", maxVoteAttempts),
	)
	return nil, fmt.Errorf("vote on question %d: %w", questionID, ErrConflict)
}

// load fetches a question regardless of its publication date.
func (s *pollService) load(ctx context.Context, id int64) (*model.Question, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	q, err := s.repo.Get(ctx, domain.IntID(id))
	if err != nil {
		return nil, translate(err)
	}
	return q, nil
}

func (s *pollService) published(ctx context.Context, id int64) (*model.Question, error) {
	q, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.IsPublished(s.now()) {
		return nil, ErrNotFound
	}
	return q, nil
}

// idOf returns the integer key of e, or 0 while it is unsaved.
func idOf(e domain.Identifiable) int64 {
	if e.EntityID() == nil {
		return 0
	}
	id, err := domain.AsIntID(e.EntityID())
	if err != nil {
		return 0
	}
	return id.Int64()
}
