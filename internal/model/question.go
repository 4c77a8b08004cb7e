package model

import (
	"encoding/json"
	"errors"
	"time"

	"pollsapi/internal/domain"
)

// MaxTextLength bounds question and choice texts.
const MaxTextLength = 200

// RecentWindow is how far back a publication date still counts as recent.
const RecentWindow = 24 * time.Hour

// ErrChoiceNotFound is returned when a choice does not belong to the question.
var ErrChoiceNotFound = errors.New("choice not found")

// Question is the poll aggregate root. Its choices are only ever loaded and
// saved together with it.
type Question struct {
	domain.RootEntity
	Text    string
	PubDate time.Time
	Choices []*Choice
}

// NewQuestion returns an unsaved question without choices.
func NewQuestion(text string, pubDate time.Time) *Question {
	return &Question{Text: text, PubDate: pubDate}
}

// Equals compares questions by identity.
func (q *Question) Equals(other any) bool {
	return domain.Equal(q, other)
}

// Hash is derived from the identity only.
func (q *Question) Hash() uint64 {
	return domain.Hash(q)
}

// IsPublished reports whether the publication date is not in the future.
func (q *Question) IsPublished(now time.Time) bool {
	return !q.PubDate.After(now)
}

// WasPublishedRecently reports whether the question was published within the
// last RecentWindow. Future questions are never recent.
func (q *Question) WasPublishedRecently(now time.Time) bool {
	return q.IsPublished(now) && !q.PubDate.Before(now.Add(-RecentWindow))
}

// AddChoice appends an unsaved choice and returns it.
func (q *Question) AddChoice(text string) *Choice {
	c := &Choice{Text: text}
	q.Choices = append(q.Choices, c)
	return c
}

// Choice looks up a choice by identity.
func (q *Question) Choice(id domain.EntityIdentity) (*Choice, bool) {
	if id == nil {
		return nil, false
	}
	for _, c := range q.Choices {
		if domain.SameIdentity(c.EntityID(), id) {
			return c, true
		}
	}
	return nil, false
}

// RemoveChoice drops the choice named by id.
func (q *Question) RemoveChoice(id domain.EntityIdentity) bool {
	for i, c := range q.Choices {
		if c.EntityID() != nil && domain.SameIdentity(c.EntityID(), id) {
			q.Choices = append(q.Choices[:i], q.Choices[i+1:]...)
			return true
		}
	}
	return false
}

// Vote records one vote for the given choice.
func (q *Question) Vote(choiceID domain.EntityIdentity) (*Choice, error) {
	c, ok := q.Choice(choiceID)
	if !ok {
		return nil, ErrChoiceNotFound
	}
	c.Votes++
	return c, nil
}

// TotalVotes sums votes over all choices.
func (q *Question) TotalVotes() int {
	total := 0
	for _, c := range q.Choices {
		total += c.Votes
	}
	return total
}

// Clone returns a deep copy, identities and version included.
func (q *Question) Clone() *Question {
	out := &Question{
		RootEntity: domain.NewRootEntity(q.EntityID(), q.VersionID()),
		Text:       q.Text,
		PubDate:    q.PubDate,
		Choices:    make([]*Choice, 0, len(q.Choices)),
	}
	for _, c := range q.Choices {
		out.Choices = append(out.Choices, c.Clone())
	}
	return out
}

type questionJSON struct {
	ID      *int64    `json:"id"`
	Text    string    `json:"question_text"`
	PubDate time.Time `json:"pub_date"`
	Version int64     `json:"version"`
	Choices []*Choice `json:"choices"`
}

// MarshalJSON renders the question with its identity and version.
func (q *Question) MarshalJSON() ([]byte, error) {
	choices := q.Choices
	if choices == nil {
		choices = []*Choice{}
	}
	return json.Marshal(questionJSON{
		ID:      rawID(q.EntityID()),
		Text:    q.Text,
		PubDate: q.PubDate,
		Version: q.VersionID(),
		Choices: choices,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.RootEntity = domain.NewRootEntity(identity(raw.ID), raw.Version)
	q.Text = raw.Text
	q.PubDate = raw.PubDate
	q.Choices = raw.Choices
	return nil
}

func rawID(id domain.EntityIdentity) *int64 {
	v, err := domain.AsIntID(id)
	if err != nil {
		return nil
	}
	n := v.Int64()
	return &n
}

func identity(id *int64) domain.EntityIdentity {
	if id == nil {
		return nil
	}
	return domain.IntID(*id)
}
