package model

import (
	"encoding/json"

	"pollsapi/internal/domain"
)

// Choice is one answer of a question. It has its own identity but is owned by
// the Question aggregate.
type Choice struct {
	domain.Entity
	Text  string
	Votes int
}

// Equals compares choices by identity.
func (c *Choice) Equals(other any) bool {
	return domain.Equal(c, other)
}

// Hash is derived from the identity only.
func (c *Choice) Hash() uint64 {
	return domain.Hash(c)
}

// Clone returns a copy with the same identity.
func (c *Choice) Clone() *Choice {
	return &Choice{Entity: domain.NewEntity(c.EntityID()), Text: c.Text, Votes: c.Votes}
}

type choiceJSON struct {
	ID    *int64 `json:"id"`
	Text  string `json:"choice_text"`
	Votes int    `json:"votes"`
}

// MarshalJSON renders the choice with its identity.
func (c *Choice) MarshalJSON() ([]byte, error) {
	return json.Marshal(choiceJSON{ID: rawID(c.EntityID()), Text: c.Text, Votes: c.Votes})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var raw choiceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Entity = domain.NewEntity(identity(raw.ID))
	c.Text = raw.Text
	c.Votes = raw.Votes
	return nil
}
