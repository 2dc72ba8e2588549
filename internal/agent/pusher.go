package agent

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cryptotracker/tracker/internal/agent/session"
)

const (
	pushBuffer  = 64
	pushTimeout = 10 * time.Second
)

// PreferenceAPI is the part of the server API the pusher writes to.
type PreferenceAPI interface {
	UpdateSettings(ctx context.Context, token string, settings session.Settings) (session.Profile, error)
	UpdateFavorites(ctx context.Context, token string, favorites []string) (session.Profile, error)
	Logout(ctx context.Context, token string) error
}

// Pusher sends preference changes to the server on a single worker, so pushes
// reach the server in the order they were made. Failures are logged and
// dropped; nothing is retried.
type Pusher struct {
	jobs chan session.Effect
	api  PreferenceAPI
	log  zerolog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func NewPusher(api PreferenceAPI, log zerolog.Logger) *Pusher {
	return &Pusher{
		jobs: make(chan session.Effect, pushBuffer),
		api:  api,
		log:  log,
		done: make(chan struct{}),
	}
}

// Start launches the worker. It stops when ctx is cancelled or after Close
// once the queue is drained.
func (p *Pusher) Start(ctx context.Context) {
	go p.runWorker(ctx)
}

// Enqueue schedules a push. The call blocks only when pushBuffer pushes are
// already waiting. Pushes after Close or after the worker stopped are dropped.
func (p *Pusher) Enqueue(e session.Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.log.Warn().Stringer("effect", e.Kind).Msg("push dropped: pusher closed")
		return
	}
	select {
	case p.jobs <- e:
	case <-p.done:
		p.log.Warn().Stringer("effect", e.Kind).Msg("push dropped: worker stopped")
	}
}

// Close stops accepting pushes and waits for queued ones to finish. Start
// must have been called.
func (p *Pusher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *Pusher) runWorker(ctx context.Context) {
	defer close(p.done)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.push(ctx, e); err != nil {
				p.log.Error().Err(err).
					Stringer("effect", e.Kind).
					Msg("preference push failed")
			}
		}
	}
}

func (p *Pusher) push(ctx context.Context, e session.Effect) error {
	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	switch e.Kind {
	case session.PushSettings:
		_, err := p.api.UpdateSettings(ctx, e.Token, e.Settings)
		return err
	case session.PushFavorites:
		_, err := p.api.UpdateFavorites(ctx, e.Token, e.Favorites)
		return err
	case session.RevokeToken:
		return p.api.Logout(ctx, e.Token)
	default:
		p.log.Warn().Stringer("effect", e.Kind).Msg("pusher ignores effect")
		return nil
	}
}
