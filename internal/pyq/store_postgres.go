package pyq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed question store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Create(q Question) (string, error) {
	if err := validate(q); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	options, err := json.Marshal(optionsOrEmpty(q.Options))
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}

	createdAt := q.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO questions (exam_id, subject, topic, year, body, options, answer, marks, body_norm, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)
		 RETURNING id::text`,
		q.ExamID,
		q.Subject,
		q.Topic,
		q.Year,
		q.Body,
		string(options),
		q.Answer,
		marksOrDefault(q.Marks),
		Normalize(q.Body),
		createdAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create question: %w", err)
	}

	return id, nil
}

func (s *PostgresStore) Get(id string) (*Question, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx,
		`SELECT id::text, exam_id, subject, topic, year, body, options, answer, marks, created_at
		 FROM questions
		 WHERE id = $1::uuid`,
		id,
	)

	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

func (s *PostgresStore) Update(q Question) error {
	if err := validate(q); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	options, err := json.Marshal(optionsOrEmpty(q.Options))
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	cmd, err := s.pool.Exec(ctx,
		`UPDATE questions
		 SET exam_id = $2, subject = $3, topic = $4, year = $5, body = $6,
		     options = $7::jsonb, answer = $8, marks = $9, body_norm = $10
		 WHERE id = $1::uuid`,
		q.ID,
		q.ExamID,
		q.Subject,
		q.Topic,
		q.Year,
		q.Body,
		string(options),
		q.Answer,
		marksOrDefault(q.Marks),
		Normalize(q.Body),
	)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, q.ID)
	}
	return nil
}

func (s *PostgresStore) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) Search(query SearchQuery) (SearchResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	conds := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if query.ExamID != "" {
		conds = append(conds, "exam_id = "+arg(query.ExamID))
	}
	if query.Subject != "" {
		conds = append(conds, "subject = "+arg(query.Subject))
	}
	if query.YearFrom != 0 {
		conds = append(conds, "year >= "+arg(query.YearFrom))
	}
	if query.YearTo != 0 {
		conds = append(conds, "year <= "+arg(query.YearTo))
	}
	if q := Normalize(query.Text); q != "" {
		conds = append(conds, `body_norm LIKE '%' || `+arg(escapeLike(q))+` || '%' ESCAPE '\'`)
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE `+where, args...,
	).Scan(&total); err != nil {
		return SearchResult{}, fmt.Errorf("count questions: %w", err)
	}

	limit := normalizeLimit(query.Limit)
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id::text, exam_id, subject, topic, year, body, options, answer, marks, created_at
		 FROM questions
		 WHERE `+where+`
		 ORDER BY year DESC, created_at ASC
		 LIMIT `+arg(limit)+` OFFSET `+arg(offset),
		args...,
	)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search questions: %w", err)
	}
	defer rows.Close()

	result := SearchResult{Questions: []Question{}, Total: total}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return SearchResult{}, fmt.Errorf("scan question: %w", err)
		}
		result.Questions = append(result.Questions, *q)
	}
	if err := rows.Err(); err != nil {
		return SearchResult{}, fmt.Errorf("iterate questions: %w", err)
	}

	return result, nil
}

func (s *PostgresStore) Stats(examID string) (Stats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	stats := Stats{BySubject: map[string]int{}, ByYear: map[int]int{}}

	rows, err := s.pool.Query(ctx,
		`SELECT subject, year, COUNT(*)
		 FROM questions
		 WHERE exam_id = $1
		 GROUP BY subject, year`,
		examID,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subject string
		var year, count int
		if err := rows.Scan(&subject, &year, &count); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		stats.BySubject[subject] += count
		stats.ByYear[year] += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate stats: %w", err)
	}

	return stats, nil
}

func scanQuestion(row pgx.Row) (*Question, error) {
	var q Question
	var options []byte
	if err := row.Scan(
		&q.ID,
		&q.ExamID,
		&q.Subject,
		&q.Topic,
		&q.Year,
		&q.Body,
		&options,
		&q.Answer,
		&q.Marks,
		&q.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
	}
	return &q, nil
}

// escapeLike backslash-escapes LIKE metacharacters so search text matches
// literally, the same way MemoryStore's substring match does.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func optionsOrEmpty(options []string) []string {
	if options == nil {
		return []string{}
	}
	return options
}

func marksOrDefault(marks int) int {
	if marks <= 0 {
		return 1
	}
	return marks
}
