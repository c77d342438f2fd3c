// Package vault talks to the external vault agent (the bw CLI).
package vault

import (
	"context"

	"bwtui/internal/model"
)

type LockStatus string

const (
	StatusLocked          LockStatus = "locked"
	StatusUnlocked        LockStatus = "unlocked"
	StatusUnauthenticated LockStatus = "unauthenticated"
)

type Status struct {
	Status    LockStatus `json:"status"`
	UserEmail string     `json:"userEmail,omitempty"`
	UserID    string     `json:"userId,omitempty"`
	ServerURL string     `json:"serverUrl,omitempty"`
	LastSync  string     `json:"lastSync,omitempty"`
}

// Agent is the command surface the session engine drives. Every call that needs an
// unlocked vault takes the session token explicitly.
type Agent interface {
	CheckInstalled() bool
	Status(ctx context.Context) (Status, error)
	Unlock(ctx context.Context, password string) (session string, err error)
	Lock(ctx context.Context, session string) error
	Sync(ctx context.Context, session string) error
	ListItems(ctx context.Context, session string) ([]model.Item, error)
	CreateItem(ctx context.Context, session string, item model.Item) (model.Item, error)
	// EditItem replaces the stored item with item. Callers merge edits onto the original
	// first because the agent does not patch.
	EditItem(ctx context.Context, session, id string, item model.Item) error
	DeleteItem(ctx context.Context, session, id string) error
	RemoteTOTP(ctx context.Context, id, session string) (string, error)
}
