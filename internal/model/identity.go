package model

import "github.com/google/uuid"

// Identity carries the caller's key identifiers for one call. It is
// passed explicitly into every adapter and migration call; the subsystem
// holds no ambient session state.
type Identity struct {
	UserID  uuid.UUID
	GroupID *uuid.UUID
}

// OwnerKeyID returns the canonical key identifier string for the
// caller's own key.
func (i Identity) OwnerKeyID() string {
	if i.UserID == uuid.Nil {
		return ""
	}
	return i.UserID.String()
}

// GroupKeyID returns the shared group key identifier string, or ""
// when the caller is not a member of a sharing group.
func (i Identity) GroupKeyID() string {
	if i.GroupID == nil || *i.GroupID == uuid.Nil {
		return ""
	}
	return i.GroupID.String()
}
