package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"pollsapi/internal/domain"
	"pollsapi/internal/model"
	"pollsapi/internal/repository"
)

// QuestionPostgres is a PostgreSQL implementation of repository.QuestionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Questions carry a version_id column; every write is a compare-and-swap on it.
type QuestionPostgres struct {
	db *sql.DB
}

// NewQuestionPostgres creates a new QuestionPostgres repository.
func NewQuestionPostgres(db *sql.DB) *QuestionPostgres {
	return &QuestionPostgres{db: db}
}

var _ repository.QuestionRepository = (*QuestionPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var orderColumns = map[string]string{
	repository.OrderID:      "id",
	repository.OrderPubDate: "pub_date",
	repository.OrderText:    "question_text",
}

// Get fetches a question and its choices.
func (r *QuestionPostgres) Get(ctx context.Context, id domain.EntityIdentity) (*model.Question, error) {
	qid, err := domain.AsIntID(id)
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT id, question_text, pub_date, version_id
		FROM questions
		WHERE id = $1
	`
	out, err := scanQuestion(r.db.QueryRowContext(ctx, q, qid.Int64()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("question %s: %w", qid, domain.ErrNotFound)
		}
		return nil, err
	}

	if err := r.attachChoices(ctx, []*model.Question{out}); err != nil {
		return nil, err
	}
	return out, nil
}

// Search returns questions filtered by ids and the repository filter keys.
// Results are ordered by id unless OrderBy says otherwise.
func (r *QuestionPostgres) Search(ctx context.Context, ids []domain.EntityIdentity, opts ...domain.SearchOption) ([]*model.Question, error) {
	query := domain.NewSearchQuery(opts...)

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if len(ids) > 0 {
		placeholders := make([]string, 0, len(ids))
		for _, id := range ids {
			v, err := domain.AsIntID(id)
			if err != nil {
				return nil, err
			}
			placeholders = append(placeholders, arg(v.Int64()))
		}
		where = append(where, "id IN ("+strings.Join(placeholders, ", ")+")")
	}

	// Sorted so the generated SQL is stable.
	keys := make([]string, 0, len(query.Filters))
	for k := range query.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := query.Filters[k]
		switch k {
		case repository.FilterPublishedBefore, repository.FilterPublishedAfter:
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants time.Time, got %T", domain.ErrUnsupportedFilter, k, v)
			}
			op := "<="
			if k == repository.FilterPublishedAfter {
				op = ">="
			}
			where = append(where, "pub_date "+op+" "+arg(t))
		case repository.FilterTextContains:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s wants string, got %T", domain.ErrUnsupportedFilter, k, v)
			}
			where = append(where, "question_text ILIKE "+arg("%"+escapeLike(s)+"%"))
		default:
			return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFilter, k)
		}
	}

	order, err := orderClause(query.OrderBy)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, question_text, pub_date, version_id FROM questions")
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(order)
	if query.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(query.Limit))
	}
	if query.Offset > 0 {
		sb.WriteString(" OFFSET " + arg(query.Offset))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*model.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachChoices(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a question; its choices go with it (ON DELETE CASCADE).
func (r *QuestionPostgres) Delete(ctx context.Context, id domain.EntityIdentity, opts ...domain.DeleteOption) error {
	qid, err := domain.AsIntID(id)
	if err != nil {
		return err
	}
	dq := domain.NewDeleteQuery(opts...)

	if dq.ExpectedVersion == nil {
		const q = `DELETE FROM questions WHERE id = $1`
		res, err := r.db.ExecContext(ctx, q, qid.Int64())
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("question %s: %w", qid, domain.ErrNotFound)
		}
		return nil
	}

	const q = `DELETE FROM questions WHERE id = $1 AND version_id = $2`
	res, err := r.db.ExecContext(ctx, q, qid.Int64(), *dq.ExpectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missingOrConflict(ctx, r.db, qid)
	}
	return nil
}

// Save inserts or updates the question and mirrors its choices in one
// transaction. Identities and the new version are written back to the
// aggregate only once the transaction has committed.
func (r *QuestionPostgres) Save(ctx context.Context, q *model.Question) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	isNew := q.EntityID() == nil
	newVersion := q.VersionID() + 1

	var qid int64
	if isNew {
		const ins = `
			INSERT INTO questions (question_text, pub_date, version_id)
			VALUES ($1, $2, $3)
			RETURNING id
		`
		if err := tx.QueryRowContext(ctx, ins, q.Text, q.PubDate, newVersion).Scan(&qid); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	} else {
		id, err := domain.AsIntID(q.EntityID())
		if err != nil {
			return err
		}
		qid = id.Int64()

		const upd = `
			UPDATE questions
			SET question_text = $1, pub_date = $2, version_id = $3
			WHERE id = $4 AND version_id = $5
		`
		res, err := tx.ExecContext(ctx, upd, q.Text, q.PubDate, newVersion, qid, q.VersionID())
		if err != nil {
			return fmt.Errorf("update question: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return missingOrConflict(ctx, tx, id)
		}
	}

	choiceIDs, err := saveChoices(ctx, tx, qid, isNew, q.Choices)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if isNew {
		q.SetEntityID(domain.IntID(qid))
	}
	for i, c := range q.Choices {
		if c.EntityID() == nil {
			c.SetEntityID(domain.IntID(choiceIDs[i]))
		}
	}
	q.SetVersionID(newVersion)
	return nil
}

// saveChoices deletes rows for choices no longer in the aggregate, then
// updates or inserts the rest. The returned ids line up with choices.
func saveChoices(ctx context.Context, tx *sql.Tx, qid int64, isNew bool, choices []*model.Choice) ([]int64, error) {
	ids := make([]int64, len(choices))
	kept := make([]any, 0, len(choices))
	for i, c := range choices {
		if c.EntityID() == nil {
			continue
		}
		id, err := domain.AsIntID(c.EntityID())
		if err != nil {
			return nil, err
		}
		ids[i] = id.Int64()
		kept = append(kept, id.Int64())
	}

	if !isNew {
		del := `DELETE FROM choices WHERE question_id = $1`
		args := []any{qid}
		if len(kept) > 0 {
			placeholders := make([]string, len(kept))
			for i := range kept {
				placeholders[i] = "$" + strconv.Itoa(i+2)
			}
			del += " AND id NOT IN (" + strings.Join(placeholders, ", ") + ")"
			args = append(args, kept...)
		}
		if _, err := tx.ExecContext(ctx, del, args...); err != nil {
			return nil, fmt.Errorf("delete choices: %w", err)
		}
	}

	for i, c := range choices {
		if c.EntityID() == nil {
			const ins = `
				INSERT INTO choices (question_id, choice_text, votes)
				VALUES ($1, $2, $3)
				RETURNING id
			`
			if err := tx.QueryRowContext(ctx, ins, qid, c.Text, c.Votes).Scan(&ids[i]); err != nil {
				return nil, fmt.Errorf("insert choice: %w", err)
			}
			continue
		}

		const upd = `
			UPDATE choices
			SET choice_text = $1, votes = $2
			WHERE id = $3 AND question_id = $4
		`
		res, err := tx.ExecContext(ctx, upd, c.Text, c.Votes, ids[i], qid)
		if err != nil {
			return nil, fmt.Errorf("update choice: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("choice %d of question %d: %w", ids[i], qid, domain.ErrConflict)
		}
	}
	return ids, nil
}

// attachChoices loads the choices of all questions with a single query.
func (r *QuestionPostgres) attachChoices(ctx context.Context, questions []*model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	byID := make(map[int64]*model.Question, len(questions))
	placeholders := make([]string, 0, len(questions))
	args := make([]any, 0, len(questions))
	for _, q := range questions {
		id, err := domain.AsIntID(q.EntityID())
		if err != nil {
			return err
		}
		q.Choices = make([]*model.Choice, 0)
		byID[id.Int64()] = q
		args = append(args, id.Int64())
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}

	q := `SELECT id, question_id, choice_text, votes FROM choices WHERE question_id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, questionID int64
			c              model.Choice
		)
		if err := rows.Scan(&id, &questionID, &c.Text, &c.Votes); err != nil {
			return err
		}
		c.SetEntityID(domain.IntID(id))
		if owner, ok := byID[questionID]; ok {
			owner.Choices = append(owner.Choices, &c)
		}
	}
	return rows.Err()
}

func scanQuestion(s rowScanner) (*model.Question, error) {
	var (
		id, version int64
		q           model.Question
	)
	if err := s.Scan(&id, &q.Text, &q.PubDate, &version); err != nil {
		return nil, err
	}
	q.RootEntity = domain.NewRootEntity(domain.IntID(id), version)
	return &q, nil
}

// missingOrConflict explains a write that matched no row.
func missingOrConflict(ctx context.Context, db rowQueryer, id domain.IntID) error {
	const q = `SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)`
	var exists bool
	if err := db.QueryRowContext(ctx, q, id.Int64()).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("question %s: %w", id, domain.ErrConflict)
	}
	return fmt.Errorf("question %s: %w", id, domain.ErrNotFound)
}

func orderClause(fields []string) (string, error) {
	parts := make([]string, 0, len(fields)+1)
	hasID := false
	for _, f := range fields {
		dir := "ASC"
		name := f
		if strings.HasPrefix(f, "-") {
			dir = "DESC"
			name = f[1:]
		}
		col, ok := orderColumns[name]
		if !ok {
			return "", fmt.Errorf("%w: order field %q", domain.ErrUnsupportedFilter, f)
		}
		if col == "id" {
			hasID = true
		}
		parts = append(parts, col+" "+dir)
	}
	if !hasID {
		parts = append(parts, "id ASC")
	}
	return strings.Join(parts, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
