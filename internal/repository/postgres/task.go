package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskvault/internal/model"
)

var _ model.TaskStore = (*TaskRepository)(nil)

// TaskRepository implements model.TaskStore over PostgreSQL. It stores
// whatever field values it is handed; encryption happens above it.
type TaskRepository struct {
	db *Connection
}

// NewTaskRepository constructs a repository bound to the given connection.
func NewTaskRepository(db *Connection) *TaskRepository {
	return &TaskRepository{
		db: db,
	}
}

const taskColumns = `id, owner_id, title, description, due_date, status, priority, category, favorite, shared, group_id, created_at, updated_at`

func scanTask(row interface{ Scan(dest ...any) error }) (model.Task, error) {
	var task model.Task
	err := row.Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description,
		&task.DueDate, &task.Status, &task.Priority, &task.Category,
		&task.Favorite, &task.Shared, &task.GroupID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	return task, err
}

func (r *TaskRepository) Create(ctx context.Context, task model.Task) (model.Task, error) {
	query := `
		INSERT INTO tasks (id, owner_id, title, description, due_date, status, priority, category, favorite, shared, group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + taskColumns

	saved, err := scanTask(r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description,
		task.DueDate, string(task.Status), task.Priority, task.Category,
		task.Favorite, task.Shared, task.GroupID,
	))
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}

	return saved, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, err
	}

	return task, nil
}

func (r *TaskRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// UpdateFields applies a partial update. Only the sensitive columns may
// appear in fields; the clause is built in a fixed column order so the
// query is deterministic.
func (r *TaskRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields model.FieldUpdate) error {
	if len(fields) == 0 {
		return nil
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)

	for _, column := range model.SensitiveFieldNames {
		value, ok := fields[column]
		if !ok {
			continue
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if len(sets) != len(fields) {
		return fmt.Errorf("unsupported column in field update")
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return model.ErrNotFound
	}

	return nil
}
