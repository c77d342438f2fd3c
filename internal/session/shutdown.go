package session

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Locker is the subset of the vault agent the coordinator needs.
type Locker interface {
	Lock(ctx context.Context, session string) error
}

const lockTimeout = 10 * time.Second

// Coordinator makes sure the vault is locked once on every exit path.
//
// The session token is mirrored in an atomic pointer so a signal handler can read the
// latest value without going through the UI update loop.
type Coordinator struct {
	agent Locker
	log   zerolog.Logger

	token atomic.Pointer[string]

	once    sync.Once
	lockErr error
}

func NewCoordinator(agent Locker, log zerolog.Logger) *Coordinator {
	return &Coordinator{agent: agent, log: log}
}

func (c *Coordinator) SetToken(token string) {
	c.token.Store(&token)
}

func (c *Coordinator) ClearToken() {
	c.token.Store(nil)
}

// Token returns the current session token ("" when locked).
func (c *Coordinator) Token() string {
	if p := c.token.Load(); p != nil {
		return *p
	}
	return ""
}

// Lock runs the agent lock command the first time it is called; later calls return the
// first result. A failing lock is logged and returned but never blocks exit.
func (c *Coordinator) Lock(ctx context.Context) error {
	c.once.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, lockTimeout)
		defer cancel()
		tok := c.Token()
		c.lockErr = c.agent.Lock(ctx, tok)
		c.ClearToken()
		if c.lockErr != nil {
			c.log.Error().Err(c.lockErr).Msg("vault lock failed")
			return
		}
		c.log.Info().Msg("vault locked")
	})
	return c.lockErr
}

// WatchSignals locks the vault when a termination signal arrives and then calls onSignal.
// The returned stop function uninstalls the handler.
func (c *Coordinator) WatchSignals(ctx context.Context, onSignal func(os.Signal)) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-ch:
			c.log.Warn().Str("signal", sig.String()).Msg("termination signal; locking vault")
			_ = c.Lock(context.Background())
			if onSignal != nil {
				onSignal(sig)
			}
		case <-ctx.Done():
		}
	}()
	return func() {
		signal.Stop(ch)
		cancel()
		<-done
	}
}
