package bot

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
)

// ErrUpdatesClosed is returned by Run when the source stops delivering.
var ErrUpdatesClosed = errors.New("update channel closed")

type Handler interface {
	Handle(ctx context.Context, u Update)
}

// Runner pulls updates from a source and hands them to a handler one at a
// time, so a user's messages are applied in order.
type Runner struct {
	source  UpdateSource
	handler Handler
}

func NewRunner(source UpdateSource, handler Handler) *Runner {
	return &Runner{source: source, handler: handler}
}

// Run blocks until ctx is cancelled or the source closes. A closed source
// is reported as ErrUpdatesClosed.
func (r *Runner) Run(ctx context.Context) error {
	updates := r.source.Updates(ctx)
	defer r.source.Stop()

	log.Println("[BOT] polling for updates")
	for {
		select {
		case <-ctx.Done():
			log.Println("[BOT] stopping update loop")
			return nil
		case u, ok := <-updates:
			if !ok {
				return ErrUpdatesClosed
			}
			r.dispatch(ctx, u)
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, u Update) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[BOT] panic while handling update: %v\n%s", p, debug.Stack())
		}
	}()
	r.handler.Handle(ctx, u)
}
