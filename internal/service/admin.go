package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"pollsapi/internal/domain"
	"pollsapi/internal/logger"
	"pollsapi/internal/model"
	"pollsapi/internal/repository"
	"pollsapi/internal/storage"
)

const (
	defaultAdminLimit = 20
	maxAdminLimit     = 100
	exportPrefix      = "exports/questions"
)

// AdminQuery narrows the admin question list. Zero values disable a filter.
type AdminQuery struct {
	Text            string
	PublishedAfter  time.Time
	PublishedBefore time.Time
	Limit           int
	Offset          int
}

// ChoiceInput is one choice of a create or update request. A zero ID adds a
// new choice.
type ChoiceInput struct {
	ID    int64  `json:"id,omitempty" validate:"gte=0"`
	Text  string `json:"choice_text" validate:"required,max=200"`
	Votes int    `json:"votes" validate:"gte=0"`
}

// QuestionInput is the admin payload for a question and its choices.
// Version is only read by Update and must equal the stored version.
type QuestionInput struct {
	Text    string        `json:"question_text" validate:"required,max=200"`
	PubDate time.Time     `json:"pub_date" validate:"required"`
	Version int64         `json:"version,omitempty" validate:"gte=0"`
	Choices []ChoiceInput `json:"choices" validate:"dive"`
}

// QuestionListItem is one row of the admin list: the question plus the
// recency flag computed when the list was built.
type QuestionListItem struct {
	Question             *model.Question
	WasPublishedRecently bool
}

// MarshalJSON flattens the flag into the question object.
func (i QuestionListItem) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(i.Question)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["was_published_recently"], _ = json.Marshal(i.WasPublishedRecently)
	return json.Marshal(fields)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (i *QuestionListItem) UnmarshalJSON(data []byte) error {
	var flags struct {
		WasPublishedRecently bool `json:"was_published_recently"`
	}
	if err := json.Unmarshal(data, &flags); err != nil {
		return err
	}
	q := new(model.Question)
	if err := json.Unmarshal(data, q); err != nil {
		return err
	}
	i.Question = q
	i.WasPublishedRecently = flags.WasPublishedRecently
	return nil
}

// QuestionListResult is the service-level DTO for a page of questions.
type QuestionListResult struct {
	Items  []QuestionListItem `json:"data"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// ExportResult points at an uploaded results snapshot.
type ExportResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminService defines the management use cases for questions.
type AdminService interface {
	// Search lists questions, newest publication first.
	Search(ctx context.Context, q AdminQuery) (*QuestionListResult, error)

	// Get returns a question whatever its publication date.
	Get(ctx context.Context, id int64) (*model.Question, error)

	// Create validates and stores a new question with its choices.
	Create(ctx context.Context, in QuestionInput) (*model.Question, error)

	// Update replaces the question's fields and reconciles its choices by id.
	// Choices missing from the input are removed.
	Update(ctx context.Context, id int64, in QuestionInput) (*model.Question, error)

	// Delete removes a question. A non-zero version guards the delete.
	Delete(ctx context.Context, id int64, version int64) error

	// ExportResults uploads the question's results as JSON and returns a
	// presigned download URL.
	ExportResults(ctx context.Context, id int64) (*ExportResult, error)
}

type adminService struct {
	repo     repository.QuestionRepository
	store    storage.Storage
	validate *validator.Validate
	expiry   time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewAdminService constructs an AdminService. store may be nil, in which case
// ExportResults reports ErrExportDisabled.
func NewAdminService(repo repository.QuestionRepository, store storage.Storage, expiry time.Duration, log *zap.Logger) AdminService {
	if log == nil {
		log = zap.NewNop()
	}
	return &adminService{
		repo:     repo,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		expiry:   expiry,
		log:      log,
		now:      time.Now,
	}
}

func (s *adminService) Search(ctx context.Context, aq AdminQuery) (_ *QuestionListResult, err error) {
	ctx, span := startSpan(ctx, "AdminService.Search")
	defer func() { endSpan(span, err) }()

	if aq.Limit <= 0 {
		aq.Limit = defaultAdminLimit
	}
	if aq.Limit > maxAdminLimit {
		aq.Limit = maxAdminLimit
	}
	if aq.Offset < 0 {
		aq.Offset = 0
	}

	opts := []domain.SearchOption{
		domain.OrderBy("-" + repository.OrderPubDate),
		domain.WithLimit(aq.Limit),
		domain.WithOffset(aq.Offset),
	}
	if text := strings.TrimSpace(aq.Text); text != "" {
		opts = append(opts, domain.WithFilter(repository.FilterTextContains, text))
	}
	if !aq.PublishedAfter.IsZero() {
		opts = append(opts, domain.WithFilter(repository.FilterPublishedAfter, aq.PublishedAfter))
	}
	if !aq.PublishedBefore.IsZero() {
		opts = append(opts, domain.WithFilter(repository.FilterPublishedBefore, aq.PublishedBefore))
	}

	found, err := s.repo.Search(ctx, nil, opts...)
	if err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]QuestionListItem, 0, len(found))
	for _, q := range found {
		items = append(items, QuestionListItem{Question: q, WasPublishedRecently: q.WasPublishedRecently(now)})
	}
	return &QuestionListResult{Items: items, Limit: aq.Limit, Offset: aq.Offset}, nil
}

func (s *adminService) Get(ctx context.Context, id int64) (_ *model.Question, err error) {
	ctx, span := startSpan(ctx, "AdminService.Get", attribute.Int64("poll.question_id", id))
	defer func() { endSpan(span, err) }()

	return s.get(ctx, id)
}

func (s *adminService) Create(ctx context.Context, in QuestionInput) (_ *model.Question, err error) {
	ctx, span := startSpan(ctx, "AdminService.Create")
	defer func() { endSpan(span, err) }()

	in = normalize(in)
	if err := s.check(in); err != nil {
		return nil, err
	}
	for _, c := range in.Choices {
		if c.ID != 0 {
			return nil, fmt.Errorf("%w: new choices cannot carry an id", ErrInvalidInput)
		}
	}

	q := model.NewQuestion(in.Text, in.PubDate)
	for _, c := range in.Choices {
		q.AddChoice(c.Text).Votes = c.Votes
	}
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, translate(err)
	}

	logger.For(ctx, s.log).Info("question_created", zap.Int64("question_id", idOf(q)), zap.Int("choices", len(q.Choices)))
	return q, nil
}

func (s *adminService) Update(ctx context.Context, id int64, in QuestionInput) (_ *model.Question, err error) {
	ctx, span := startSpan(ctx, "AdminService.Update", attribute.Int64("poll.question_id", id))
	defer func() { endSpan(span, err) }()

	in = normalize(in)
	if err := s.check(in); err != nil {
		return nil, err
	}
	q, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Version != q.VersionID() {
		return nil, fmt.Errorf("question %d at version %d, got %d: %w", id, q.VersionID(), in.Version, ErrConflict)
	}

	q.Text = in.Text
	q.PubDate = in.PubDate
	if err := reconcileChoices(q, in.Choices); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, q); err != nil {
		return nil, translate(err)
	}

	logger.For(ctx, s.log).Info("question_updated", zap.Int64("question_id", id), zap.Int64("version", q.VersionID()))
	return q, nil
}

func (s *adminService) Delete(ctx context.Context, id int64, version int64) (err error) {
	ctx, span := startSpan(ctx, "AdminService.Delete", attribute.Int64("poll.question_id", id))
	defer func() { endSpan(span, err) }()

	if id <= 0 {
		return ErrIDRequired
	}
	var opts []domain.DeleteOption
	if version > 0 {
		opts = append(opts, domain.IfVersion(version))
	}
	if err := s.repo.Delete(ctx, domain.IntID(id), opts...); err != nil {
		return translate(err)
	}

	logger.For(ctx, s.log).Info("question_deleted", zap.Int64("question_id", id))
	return nil
}

func (s *adminService) ExportResults(ctx context.Context, id int64) (_ *ExportResult, err error) {
	ctx, span := startSpan(ctx, "AdminService.ExportResults", attribute.Int64("poll.question_id", id))
	defer func() { endSpan(span, err) }()

	if s.store == nil {
		return nil, ErrExportDisabled
	}
	q, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildResults(q))
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	key := path.Join(exportPrefix, strconv.FormatInt(id, 10), uuid.New().String()+".json")

	info, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata: map[string]string{
			"question-id": strconv.FormatInt(id, 10),
			"version":     strconv.FormatInt(q.VersionID(), 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	url, err := s.store.PresignGet(ctx, info.Key, s.expiry)
	if err != nil {
		// Rollback: delete the object that cannot be handed out.
		if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign failed: %w", err)
	}

	return &ExportResult{
		Key:       info.Key,
		URL:       url,
		Size:      info.Size,
		ExpiresAt: s.now().Add(s.expiry).UTC(),
	}, nil
}

func (s *adminService) get(ctx context.Context, id int64) (*model.Question, error) {
	if id <= 0 {
		return nil, ErrIDRequired
	}
	q, err := s.repo.Get(ctx, domain.IntID(id))
	if err != nil {
		return nil, translate(err)
	}
	return q, nil
}

// normalize trims every text of in so that validation sees what is stored.
func normalize(in QuestionInput) QuestionInput {
	in.Text = strings.TrimSpace(in.Text)
	choices := make([]ChoiceInput, len(in.Choices))
	for i, c := range in.Choices {
		c.Text = strings.TrimSpace(c.Text)
		choices[i] = c
	}
	in.Choices = choices
	return in
}

// check runs struct validation on trimmed input and folds failures into
// ErrInvalidInput.
func (s *adminService) check(in QuestionInput) error {
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// reconcileChoices makes q.Choices match in: known ids are updated in place,
// zero ids are appended and everything else is dropped.
func reconcileChoices(q *model.Question, in []ChoiceInput) error {
	seen := make(map[int64]struct{}, len(in))
	next := make([]*model.Choice, 0, len(in))
	for _, ci := range in {
		if ci.ID == 0 {
			c := &model.Choice{Text: ci.Text, Votes: ci.Votes}
			next = append(next, c)
			continue
		}
		if _, dup := seen[ci.ID]; dup {
			return fmt.Errorf("%w: choice %d listed twice", ErrInvalidInput, ci.ID)
		}
		seen[ci.ID] = struct{}{}

		c, ok := q.Choice(domain.IntID(ci.ID))
		if !ok {
			return fmt.Errorf("choice %d: %w", ci.ID, ErrChoiceNotFound)
		}
		c.Text = ci.Text
		c.Votes = ci.Votes
		next = append(next, c)
	}
	q.Choices = next
	return nil
}
