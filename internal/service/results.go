package service

import (
	"time"

	"github.com/shopspring/decimal"

	"pollsapi/internal/model"
)

// ChoiceResult is one row of a results page.
type ChoiceResult struct {
	ID    int64           `json:"id"`
	Text  string          `json:"choice_text"`
	Votes int             `json:"votes"`
	Share decimal.Decimal `json:"share"`
}

// ResultsView is the vote tally of one question.
type ResultsView struct {
	QuestionID int64          `json:"question_id"`
	Text       string         `json:"question_text"`
	PubDate    time.Time      `json:"pub_date"`
	Version    int64          `json:"version"`
	TotalVotes int            `json:"total_votes"`
	Choices    []ChoiceResult `json:"choices"`
}

// buildResults tallies q. Shares are rounded to two places; with no votes
// every share is zero.
func buildResults(q *model.Question) *ResultsView {
	total := q.TotalVotes()
	view := &ResultsView{
		QuestionID: idOf(q),
		Text:       q.Text,
		PubDate:    q.PubDate,
		Version:    q.VersionID(),
		TotalVotes: total,
		Choices:    make([]ChoiceResult, 0, len(q.Choices)),
	}
	for _, c := range q.Choices {
		share := decimal.Zero
		if total > 0 {
			share = decimal.NewFromInt(int64(c.Votes)).Div(decimal.NewFromInt(int64(total))).Round(2)
		}
		view.Choices = append(view.Choices, ChoiceResult{
			ID:    idOf(c),
			Text:  c.Text,
			Votes: c.Votes,
			Share: share,
		})
	}
	return view
}
