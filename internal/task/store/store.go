package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/task"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectTaskColumns = `
	id, user_id, source_insight_id, title, description, task_type, priority, status,
	due_date, completed_at, created_at, updated_at
`

func scanTask(s scanner) (*task.Task, error) {
	var t task.Task

	var typ, priority, status string

	if err := s.Scan(
		&t.ID, &t.UserID, &t.SourceInsightID, &t.Title, &t.Description, &typ, &priority, &status,
		&t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	t.Type = task.Type(typ)
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)

	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, source_insight_id, title, description, task_type, priority, status, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.SourceInsightID,
		t.Title,
		t.Description,
		t.Type,
		t.Priority,
		t.Status,
		t.DueDate,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}

	return nil
}

func (s *Store) GetTask(ctx context.Context, userID string, id uuid.UUID) (*task.Task, error) {
	query := `SELECT ` + selectTaskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	t, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("getting task: %w", err)
	}

	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks
		SET status = $1, description = $2, completed_at = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	res, err := s.db.ExecContext(ctx, query, t.Status, t.Description, t.CompletedAt, t.UpdatedAt, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	return expectOne(res, "updating task")
}

func (s *Store) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	return expectOne(res, "deleting task")
}

func expectOne(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (s *Store) ListTasks(ctx context.Context, filter task.ListFilter) ([]*task.Task, error) {
	query := `SELECT ` + selectTaskColumns + ` FROM tasks WHERE user_id = $1`

	args := []any{filter.UserID}
	argIdx := 2

	add := func(cond string, v any) {
		query += fmt.Sprintf(" AND "+cond, argIdx)

		args = append(args, v)
		argIdx++
	}

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}

	if filter.Priority != nil {
		add("priority = $%d", *filter.Priority)
	}

	if filter.Type != nil {
		add("task_type = $%d", *filter.Type)
	}

	if filter.DueBefore != nil {
		add("due_date <= $%d", *filter.DueBefore)
	}

	if filter.DueAfter != nil {
		add("due_date >= $%d", *filter.DueAfter)
	}

	query += `
		ORDER BY CASE priority
			WHEN 'urgent' THEN 4
			WHEN 'high' THEN 3
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 1
			ELSE 0
		END DESC, due_date ASC NULLS LAST, created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}
