package service

import (
	"context"
	"fmt"

	"taskvault/internal/fieldcrypt"
	"taskvault/internal/logger"
	"taskvault/internal/model"
)

// KeyProvider derives a symmetric key from an opaque key identifier.
// fieldcrypt.KeyCache satisfies it; the default provider derives fresh
// on every call.
type KeyProvider interface {
	Derive(identifier string) ([]byte, error)
}

type deriveEachCall struct{}

func (deriveEachCall) Derive(identifier string) ([]byte, error) {
	return fieldcrypt.DeriveKey(identifier)
}

// TaskCrypto applies field encryption to the sensitive fields of a task
// on its way to and from storage. Non-sensitive fields pass through
// untouched.
//
// Key selection: a shared task with a group identifier uses the group
// key, so every member derives the same key. A shared task without a
// group identifier is stored as plaintext, because ciphertext nobody
// else can decrypt defeats sharing; the condition is logged. A private
// task uses the owner key.
type TaskCrypto struct {
	keys   KeyProvider
	logger *logger.Logger
}

// NewTaskCrypto creates a TaskCrypto deriving keys fresh per operation.
func NewTaskCrypto(logger *logger.Logger) *TaskCrypto {
	return &TaskCrypto{keys: deriveEachCall{}, logger: logger}
}

// NewTaskCryptoWithKeys creates a TaskCrypto with a custom key provider,
// typically a fieldcrypt.KeyCache for batch workloads.
func NewTaskCryptoWithKeys(keys KeyProvider, logger *logger.Logger) *TaskCrypto {
	return &TaskCrypto{keys: keys, logger: logger}
}

// storageKeyID returns the key identifier the task's sensitive fields
// are bound to in storage. An empty return with nil error means the
// task is stored as plaintext (shared without a group key).
func (s *TaskCrypto) storageKeyID(task model.Task, identity model.Identity) (string, error) {
	if task.Shared {
		if groupKeyID := identity.GroupKeyID(); groupKeyID != "" {
			return groupKeyID, nil
		}
		return "", nil
	}

	ownerKeyID := identity.OwnerKeyID()
	if ownerKeyID == "" {
		return "", model.ErrMissingKeyIdentifier
	}
	return ownerKeyID, nil
}

func (s *TaskCrypto) codecFor(keyID string) (*fieldcrypt.Codec, error) {
	key, err := s.keys.Derive(keyID)
	if err != nil {
		return nil, err
	}
	codec, err := fieldcrypt.NewCodec(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build codec: %w", err)
	}
	return codec, nil
}

// EncryptTask returns a copy of task with its sensitive fields encrypted
// for storage. Already-encrypted fields are left as they are.
//
// Cipher failures fall back to storing plaintext and are logged as
// security-relevant events rather than surfaced as hard failures; a
// failed save would otherwise lose the user's edit.
func (s *TaskCrypto) EncryptTask(ctx context.Context, task model.Task, identity model.Identity) (model.Task, error) {
	keyID, err := s.storageKeyID(task, identity)
	if err != nil {
		return model.Task{}, err
	}
	if keyID == "" {
		s.logger.Warn("shared task has no group key, storing plaintext",
			"task_id", task.ID)
		return task, nil
	}

	codec, err := s.codecFor(keyID)
	if err != nil {
		s.logger.Error("field encryption unavailable, storing plaintext",
			"task_id", task.ID, "error", err)
		return task, nil
	}

	task.Title = s.encryptField(codec, task.Title, task, "title")
	task.Description = s.encryptField(codec, task.Description, task, "description")

	return task, nil
}

// DecryptTask returns a copy of task with its sensitive fields decrypted
// for presentation. Legacy plaintext fields pass through unchanged.
//
// A field that fails authentication (wrong key, corruption, tampering)
// keeps its stored encoded value: callers should present a value still
// carrying the encryption prefix as unavailable content, not crash.
func (s *TaskCrypto) DecryptTask(ctx context.Context, task model.Task, identity model.Identity) (model.Task, error) {
	keyID, err := s.storageKeyID(task, identity)
	if err != nil {
		return model.Task{}, err
	}
	if keyID == "" {
		return task, nil
	}

	codec, err := s.codecFor(keyID)
	if err != nil {
		s.logger.Error("field decryption unavailable, returning stored values",
			"task_id", task.ID, "error", err)
		return task, nil
	}

	task.Title = s.decryptField(codec, task.Title, task, "title")
	task.Description = s.decryptField(codec, task.Description, task, "description")

	return task, nil
}

// Reshare handles the private-to-shared transition: it decrypts any
// ciphertext held under the owner key and re-encrypts for the task's new
// audience (group key, or plaintext when no group key is available). A
// task must never stay encrypted under a key its new audience cannot
// derive.
func (s *TaskCrypto) Reshare(ctx context.Context, task model.Task, identity model.Identity) (model.Task, error) {
	ownerKeyID := identity.OwnerKeyID()
	if ownerKeyID == "" {
		return model.Task{}, model.ErrMissingKeyIdentifier
	}

	ownerCodec, err := s.codecFor(ownerKeyID)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to derive owner key: %w", err)
	}

	task.Title = s.decryptField(ownerCodec, task.Title, task, "title")
	task.Description = s.decryptField(ownerCodec, task.Description, task, "description")
	task.Shared = true

	return s.EncryptTask(ctx, task, identity)
}

func (s *TaskCrypto) encryptField(codec *fieldcrypt.Codec, value string, task model.Task, field string) string {
	encrypted, err := codec.Encrypt(value)
	if err != nil {
		s.logger.Error("field encryption failed, storing plaintext",
			"task_id", task.ID, "field", field, "error", err)
		return value
	}
	return encrypted
}

func (s *TaskCrypto) decryptField(codec *fieldcrypt.Codec, value string, task model.Task, field string) string {
	decrypted, err := codec.Decrypt(value)
	if err != nil {
		s.logger.Warn("field decryption failed, returning stored value",
			"task_id", task.ID, "field", field, "error", err)
		return value
	}
	return decrypted
}
