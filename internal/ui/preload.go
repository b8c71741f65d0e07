package ui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/san-kum/arfall/internal/dynamo"
)

// Preloader loads a font once in the background. Readers poll Done or Ready
// and read the outcome with Result.
type Preloader struct {
	logger *slog.Logger
	once   sync.Once
	done   chan struct{}

	font *Font
	err  error
}

func NewPreloader(logger *slog.Logger) *Preloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preloader{logger: logger, done: make(chan struct{})}
}

// Preload starts the load. Later calls are no-ops.
func (p *Preloader) Preload(ctx context.Context, loader FontLoader, path string) {
	p.once.Do(func() {
		go func() {
			defer close(p.done)
			p.font, p.err = loader.Load(ctx, path)
			if p.err != nil {
				p.logger.Warn("font_preload_failed", "path", path, "error", p.err)
				return
			}
			p.logger.Debug("font_preloaded", "path", path, "family", p.font.FamilyName)
		}()
	})
}

// Done is closed when the load finishes, successfully or not.
func (p *Preloader) Done() <-chan struct{} { return p.done }

func (p *Preloader) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Result returns the loaded font, the load error, or dynamo.ErrNotReady
// while the load is still running.
func (p *Preloader) Result() (*Font, error) {
	if !p.Ready() {
		return nil, dynamo.ErrNotReady
	}
	return p.font, p.err
}

// Wait blocks until the load finishes or ctx is done.
func (p *Preloader) Wait(ctx context.Context) (*Font, error) {
	select {
	case <-p.done:
		return p.font, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
