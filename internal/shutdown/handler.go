package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels a shared context on SIGINT/SIGTERM and runs registered
// cleanups once, most recently added first.
type Handler struct {
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	cleanupFns []func()
	mu         sync.Mutex
	once       sync.Once
	stop       func()
}

// New creates a new shutdown handler
func New() *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled when shutdown starts.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers fn to run during shutdown.
func (h *Handler) AddCleanup(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanupFns = append(h.cleanupFns, fn)
}

// Listen starts listening for shutdown signals. onSignal, if non-nil, is
// called with the received signal before cleanups run.
func (h *Handler) Listen(onSignal func(os.Signal)) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	h.mu.Lock()
	h.stop = func() { signal.Stop(sigChan) }
	h.mu.Unlock()

	go func() {
		select {
		case sig := <-sigChan:
			if onSignal != nil {
				onSignal(sig)
			}
			h.Shutdown()
		case <-h.ctx.Done():
		}
	}()
}

// Shutdown cancels the context and runs cleanups. Later calls are no-ops.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		fns := h.cleanupFns
		stop := h.stop
		h.mu.Unlock()

		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
		if stop != nil {
			stop()
		}
	})
}

// Go runs fn in a goroutine tracked by Wait.
func (h *Handler) Go(fn func(ctx context.Context)) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn(h.ctx)
	}()
}

// Wait blocks until every function started with Go has returned.
func (h *Handler) Wait() {
	h.wg.Wait()
}
