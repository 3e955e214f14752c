package contxt

import (
	"context"
	"os"
	"time"
)

// NewContext returns a self-cancelling context for fire-and-forget calls
// (publishes, broadcasts). Setting CONTEXT_TEST opts out of deadlines so
// tests can step through slowly.
func NewContext(timeout time.Duration) context.Context {
	if os.Getenv("CONTEXT_TEST") != "" {
		return context.Background()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
