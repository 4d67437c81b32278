package service

import (
	"context"
	"fmt"

	"taskvault/internal/fieldcrypt"
	"taskvault/internal/logger"
	"taskvault/internal/model"
)

// Migration converts legacy plaintext tasks to the encrypted field
// format. Runs are best-effort and resumable: per-task failures are
// counted and logged but never abort a run, and a re-run simply retries
// whatever is still plaintext.
type Migration struct {
	tasks  model.TaskStore
	crypto *TaskCrypto
	logger *logger.Logger
}

// NewMigration creates a Migration over the given task store.
func NewMigration(tasks model.TaskStore, crypto *TaskCrypto, logger *logger.Logger) *Migration {
	return &Migration{
		tasks:  tasks,
		crypto: crypto,
		logger: logger,
	}
}

// Summary tallies the outcome of one migration run.
type Summary struct {
	Migrated int
	Skipped  int
	Errors   int
	Total    int
}

// Progress is passed to the progress callback after every processed
// task. Current counts processed tasks and increases monotonically.
type Progress struct {
	Current  int
	Total    int
	Migrated int
	Skipped  int
	Errors   int
}

// NeedsMigration reports whether either sensitive field still holds
// legacy plaintext.
func (s *Migration) NeedsMigration(task model.Task) bool {
	if task.Title != "" && !fieldcrypt.IsEncrypted(task.Title) {
		return true
	}
	if task.Description != "" && !fieldcrypt.IsEncrypted(task.Description) {
		return true
	}
	return false
}

// MigrateOne encrypts the plaintext fields of a single task and returns
// the minimal update payload, containing only the fields that changed.
// It returns nil when nothing needed migration, including the case of a
// shared task with no usable group key, which stays plaintext by policy.
func (s *Migration) MigrateOne(ctx context.Context, task model.Task, identity model.Identity) (model.FieldUpdate, error) {
	if !s.NeedsMigration(task) {
		return nil, nil
	}

	keyID, err := s.crypto.storageKeyID(task, identity)
	if err != nil {
		return nil, err
	}
	if keyID == "" {
		s.logger.Warn("shared task has no group key, leaving plaintext",
			"task_id", task.ID)
		return nil, nil
	}

	codec, err := s.crypto.codecFor(keyID)
	if err != nil {
		return nil, err
	}

	update := model.FieldUpdate{}

	if task.Title != "" && !fieldcrypt.IsEncrypted(task.Title) {
		encrypted, err := codec.Encrypt(task.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt title: %w", err)
		}
		update["title"] = encrypted
	}

	if task.Description != "" && !fieldcrypt.IsEncrypted(task.Description) {
		encrypted, err := codec.Encrypt(task.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt description: %w", err)
		}
		update["description"] = encrypted
	}

	if len(update) == 0 {
		return nil, nil
	}

	return update, nil
}

// Run migrates all of the caller's tasks, strictly sequentially so that
// progress stays ordered and the store is not flooded with concurrent
// writes. A failure to even list the tasks is a hard error; everything
// past that point is per-task accounting.
//
// onProgress, when non-nil, is called after every task. It must not
// block for long and must not panic; the run does not guard against
// callback panics.
//
// Cancellation via ctx takes effect between tasks only, never in the
// middle of encrypting or persisting one.
func (s *Migration) Run(ctx context.Context, identity model.Identity, onProgress func(Progress)) (Summary, error) {
	if identity.OwnerKeyID() == "" {
		return Summary{}, model.ErrMissingKeyIdentifier
	}

	tasks, err := s.tasks.GetByOwnerID(ctx, identity.UserID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	summary := Summary{Total: len(tasks)}

	for i, task := range tasks {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		update, err := s.MigrateOne(ctx, task, identity)
		switch {
		case err != nil:
			summary.Errors++
			s.logger.Error("failed to migrate task",
				"task_id", task.ID, "error", err)
		case update == nil:
			summary.Skipped++
		default:
			if err := s.tasks.UpdateFields(ctx, task.ID, update); err != nil {
				summary.Errors++
				s.logger.Error("failed to persist migrated task",
					"task_id", task.ID, "error", err)
			} else {
				summary.Migrated++
			}
		}

		if onProgress != nil {
			onProgress(Progress{
				Current:  i + 1,
				Total:    summary.Total,
				Migrated: summary.Migrated,
				Skipped:  summary.Skipped,
				Errors:   summary.Errors,
			})
		}
	}

	return summary, nil
}
