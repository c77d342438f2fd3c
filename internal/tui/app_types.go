package tui

import (
	"time"

	"bwtui/internal/model"
	"bwtui/internal/secret"
	"bwtui/internal/vault"
)

type mode int

const (
	modeUnlocking mode = iota
	modePasswordPrompt
	modeLoading
	modeSearch
	modeDetail
	modeShortcut
	modeGenerate
	modeConfirmDelete
	modeProcessing
	modeExiting
	modeError
)

func (m mode) String() string {
	switch m {
	case modeUnlocking:
		return "unlocking"
	case modePasswordPrompt:
		return "password"
	case modeLoading:
		return "loading"
	case modeSearch:
		return "search"
	case modeDetail:
		return "detail"
	case modeShortcut:
		return "shortcut"
	case modeGenerate:
		return "generate"
	case modeConfirmDelete:
		return "confirm-delete"
	case modeProcessing:
		return "processing"
	case modeExiting:
		return "exiting"
	case modeError:
		return "error"
	default:
		return "unknown"
	}
}

// busy modes swallow every key so no second vault call can start.
func (m mode) busy() bool {
	switch m {
	case modeUnlocking, modeLoading, modeProcessing, modeExiting:
		return true
	default:
		return false
	}
}

// idleTickMsg drives the idle-lock poll and message expiry.
type idleTickMsg struct{ at time.Time }

type clipboardClearMsg struct{ seq uint64 }

type exitDoneMsg struct{ err error }

// startupMsg carries the agent status check done before the first prompt.
type startupMsg struct {
	status vault.Status
	err    error
	// reuse is set when an already-unlocked session token was supplied.
	reuse bool
}

type unlockDoneMsg struct {
	session string
	err     error
}

type itemsLoadedMsg struct {
	items []model.Item
	err   error
}

type mutationKind int

const (
	mutationCreate mutationKind = iota
	mutationEdit
	mutationDelete
	mutationSync
)

func (k mutationKind) String() string {
	switch k {
	case mutationCreate:
		return "Create"
	case mutationEdit:
		return "Edit"
	case mutationDelete:
		return "Delete"
	case mutationSync:
		return "Sync"
	default:
		return "Operation"
	}
}

// mutationDoneMsg reports a mutating call followed by its re-list.
type mutationDoneMsg struct {
	kind mutationKind
	// item is the created/edited/deleted item as known locally.
	item model.Item
	// createdID is empty when the agent's response could not be resolved.
	createdID string
	err       error
	items     []model.Item
	listErr   error
}

type editorPurpose int

const (
	editCreate editorPurpose = iota
	editItem
	editConfig
)

type editorDoneMsg struct {
	purpose editorPurpose
	orig    model.Item
	result  secret.Result
	err     error
}

type totpDoneMsg struct {
	itemID string
	code   string
	err    error
}
