// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory) inside this directory.
package repository

import (
	"pollsapi/internal/domain"
	"pollsapi/internal/model"
)

// QuestionRepository persists Question aggregates together with their choices.
// No business logic here; strictly persistence operations.
type QuestionRepository interface {
	domain.Repository[*model.Question]
}

// Search filter keys understood by every QuestionRepository implementation.
const (
	// FilterPublishedBefore keeps questions with pub_date <= the given time.Time.
	FilterPublishedBefore = "published_before"
	// FilterPublishedAfter keeps questions with pub_date >= the given time.Time.
	FilterPublishedAfter = "published_after"
	// FilterTextContains keeps questions whose text contains the given string,
	// ignoring case.
	FilterTextContains = "text_contains"
)

// Sortable fields for domain.OrderBy. Prefix with "-" for descending order.
const (
	OrderID      = "id"
	OrderPubDate = "pub_date"
	OrderText    = "question_text"
)
