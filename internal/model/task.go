package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskStore defines persistence operations for tasks. The encryption
// subsystem only ever depends on this interface; concrete backends are
// injected by the caller.
type TaskStore interface {
	Create(ctx context.Context, task Task) (Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (Task, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Task, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields FieldUpdate) error
}

// Task represents a stored task entity. Title and Description are the
// two sensitive fields; everything else stays queryable plaintext.
type Task struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Title       string
	Description string
	DueDate     *time.Time
	Status      TaskStatus
	Priority    int
	Category    string
	Favorite    bool
	Shared      bool
	GroupID     *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	// TaskStatusPending is an open, not yet completed task.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusCompleted is a finished task.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusArchived is a task hidden from the default views.
	TaskStatusArchived TaskStatus = "archived"
)

// FieldUpdate is a minimal column-to-value payload for partial updates.
// Only changed fields are included.
type FieldUpdate map[string]string

// SensitiveFieldNames lists the columns that pass through the field codec.
// Every other column is stored as-is.
var SensitiveFieldNames = []string{"title", "description"}
