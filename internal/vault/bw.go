package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"bwtui/internal/model"

	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 30 * time.Second
	UnlockTimeout  = 60 * time.Second
	SyncTimeout    = 2 * time.Minute
)

// runFunc executes the agent binary. It returns stdout, stderr and the exit code; err is
// only set when the process could not be run at all.
type runFunc func(ctx context.Context, env []string, args ...string) (stdout, stderr []byte, code int, err error)

// BW drives the bw CLI as a subprocess. The session token is passed through BW_SESSION
// and the master password through BW_PASSWORD so neither shows up in the process list.
type BW struct {
	Binary  string
	Timeout time.Duration
	Log     zerolog.Logger

	run runFunc
}

func NewBW(binary string, log zerolog.Logger) *BW {
	if strings.TrimSpace(binary) == "" {
		binary = "bw"
	}
	b := &BW{Binary: binary, Timeout: DefaultTimeout, Log: log}
	b.run = b.exec
	return b
}

func (b *BW) exec(ctx context.Context, env []string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, b.Binary, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, -1, ctx.Err()
		}
		return nil, nil, -1, err
	}
	return stdout.Bytes(), stderr.Bytes(), 0, nil
}

func (b *BW) call(ctx context.Context, op string, timeout time.Duration, env []string, args ...string) ([]byte, error) {
	if timeout <= 0 {
		timeout = b.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	args = append(args, "--nointeraction")
	stdout, stderr, code, err := b.run(ctx, env, args...)
	b.Log.Debug().Str("op", op).Int("exit", code).Dur("took", time.Since(start)).Msg("bw call")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, ErrNotInstalled
		}
		return nil, &AgentError{Op: op, ExitCode: code, Stderr: err.Error()}
	}
	if code != 0 {
		return nil, &AgentError{Op: op, ExitCode: code, Stderr: string(stderr)}
	}
	return stdout, nil
}

func sessionEnv(session string) []string {
	if session == "" {
		return nil
	}
	return []string{"BW_SESSION=" + session}
}

func (b *BW) CheckInstalled() bool {
	_, err := exec.LookPath(b.Binary)
	return err == nil
}

func (b *BW) Status(ctx context.Context) (Status, error) {
	out, err := b.call(ctx, "status", 0, nil, "status")
	if err != nil {
		return Status{}, err
	}
	var st Status
	if err := json.Unmarshal(out, &st); err != nil {
		return Status{}, &ParseError{Op: "status", Err: err}
	}
	return st, nil
}

func (b *BW) Unlock(ctx context.Context, password string) (string, error) {
	out, err := b.call(ctx, "unlock", UnlockTimeout, []string{"BW_PASSWORD=" + password}, "unlock", "--passwordenv", "BW_PASSWORD", "--raw")
	if err != nil {
		return "", err
	}
	session := strings.TrimSpace(string(out))
	if session == "" {
		return "", &ParseError{Op: "unlock", Err: errors.New("empty session key")}
	}
	return session, nil
}

func (b *BW) Lock(ctx context.Context, session string) error {
	_, err := b.call(ctx, "lock", 0, sessionEnv(session), "lock")
	return err
}

func (b *BW) Sync(ctx context.Context, session string) error {
	_, err := b.call(ctx, "sync", SyncTimeout, sessionEnv(session), "sync")
	return err
}

func (b *BW) ListItems(ctx context.Context, session string) ([]model.Item, error) {
	out, err := b.call(ctx, "list items", 0, sessionEnv(session), "list", "items")
	if err != nil {
		return nil, err
	}
	items, skipped, err := decodeItems("list items", out)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		b.Log.Warn().Err(s).Msg("skipping item")
	}
	return items, nil
}

func (b *BW) CreateItem(ctx context.Context, session string, item model.Item) (model.Item, error) {
	item.ID = ""
	enc, err := encodeItem(item)
	if err != nil {
		return model.Item{}, err
	}
	out, err := b.call(ctx, "create item", 0, sessionEnv(session), "create", "item", enc)
	if err != nil {
		return model.Item{}, err
	}
	created, perr := decodeItem("create item", out)
	if perr != nil {
		// The item exists; the caller just can't jump to it.
		b.Log.Warn().Err(perr).Msg("create item: could not decode response")
		return model.Item{}, nil
	}
	return created, nil
}

func (b *BW) EditItem(ctx context.Context, session, id string, item model.Item) error {
	enc, err := encodeItem(item)
	if err != nil {
		return err
	}
	_, err = b.call(ctx, "edit item", 0, sessionEnv(session), "edit", "item", id, enc)
	return err
}

func (b *BW) DeleteItem(ctx context.Context, session, id string) error {
	_, err := b.call(ctx, "delete item", 0, sessionEnv(session), "delete", "item", id)
	return err
}

func (b *BW) RemoteTOTP(ctx context.Context, id, session string) (string, error) {
	out, err := b.call(ctx, "get totp", 0, sessionEnv(session), "get", "totp", id)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
