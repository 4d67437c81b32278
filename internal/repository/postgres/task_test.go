package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskvault/internal/model"
)

var taskTestColumns = []string{
	"id", "owner_id", "title", "description", "due_date", "status",
	"priority", "category", "favorite", "shared", "group_id",
	"created_at", "updated_at",
}

func newMockRepository(t *testing.T) (*TaskRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTaskRepository(&Connection{DB: db}), mock
}

func TestTaskRepository_GetByID(t *testing.T) {
	repo, mock := newMockRepository(t)

	taskID := uuid.New()
	ownerID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_id, title, description, due_date, status, priority, category, favorite, shared, group_id, created_at, updated_at FROM tasks WHERE id = $1`)).
		WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows(taskTestColumns).AddRow(
			taskID.String(), ownerID.String(), "enc:v1:b3BhcXVl", "",
			nil, "pending", 2, "groceries", false, false, nil, now, now,
		))

	task, err := repo.GetByID(context.Background(), taskID)
	require.NoError(t, err)

	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, ownerID, task.OwnerID)
	assert.Equal(t, "enc:v1:b3BhcXVl", task.Title)
	assert.Equal(t, model.TaskStatusPending, task.Status)
	assert.Nil(t, task.DueDate)
	assert.Nil(t, task.GroupID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	taskID := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, owner_id`)).
		WithArgs(taskID).
		WillReturnRows(sqlmock.NewRows(taskTestColumns))

	_, err := repo.GetByID(context.Background(), taskID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTaskRepository_GetByOwnerID(t *testing.T) {
	repo, mock := newMockRepository(t)

	ownerID := uuid.New()
	now := time.Now()
	groupID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tasks WHERE owner_id = $1 ORDER BY created_at`)).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows(taskTestColumns).
			AddRow(uuid.New().String(), ownerID.String(), "first", "", nil, "pending", 0, "", false, false, nil, now, now).
			AddRow(uuid.New().String(), ownerID.String(), "second", "notes", nil, "completed", 1, "home", true, true, groupID.String(), now, now))

	tasks, err := repo.GetByOwnerID(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, model.TaskStatusCompleted, tasks[1].Status)
	require.NotNil(t, tasks[1].GroupID)
	assert.Equal(t, groupID, *tasks[1].GroupID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  model.FieldUpdate
		setup   func(sqlmock.Sqlmock, uuid.UUID)
		wantErr error
	}{
		{
			name:   "single field",
			fields: model.FieldUpdate{"title": "enc:v1:dGl0bGU="},
			setup: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET title = $1, updated_at = NOW() WHERE id = $2`)).
					WithArgs("enc:v1:dGl0bGU=", id).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "both fields in fixed order",
			fields: model.FieldUpdate{
				"description": "enc:v1:ZGVzYw==",
				"title":       "enc:v1:dGl0bGU=",
			},
			setup: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET title = $1, description = $2, updated_at = NOW() WHERE id = $3`)).
					WithArgs("enc:v1:dGl0bGU=", "enc:v1:ZGVzYw==", id).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "missing task",
			fields: model.FieldUpdate{"title": "enc:v1:dGl0bGU="},
			setup: func(mock sqlmock.Sqlmock, id uuid.UUID) {
				mock.ExpectExec(regexp.QuoteMeta(`UPDATE tasks SET title = $1`)).
					WithArgs("enc:v1:dGl0bGU=", id).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t)
			taskID := uuid.New()
			tt.setup(mock, taskID)

			err := repo.UpdateFields(context.Background(), taskID, tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTaskRepository_UpdateFields_RejectsNonSensitiveColumns(t *testing.T) {
	repo, mock := newMockRepository(t)

	err := repo.UpdateFields(context.Background(), uuid.New(), model.FieldUpdate{"status": "archived"})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateFields_EmptyPayloadIsNoop(t *testing.T) {
	repo, mock := newMockRepository(t)

	err := repo.UpdateFields(context.Background(), uuid.New(), model.FieldUpdate{})
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
