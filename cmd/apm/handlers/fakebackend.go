package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/apmconsole/internal/fakebackend"
)

// FakeBackend serves the in-memory backend on addr until ctx is done.
func FakeBackend(ctx context.Context, addr, seedPath string) error {
	seed := fakebackend.DefaultSeed()
	if seedPath != "" {
		var err error
		if seed, err = fakebackend.LoadSeed(seedPath); err != nil {
			return err
		}
	}

	srv := fakebackend.New(seed)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(addr) }()

	fmt.Fprintf(stdout, "fake backend listening on %s (API key %q, %d users, %d orders)\n",
		addr, seed.APIKey, len(seed.Users), len(seed.Orders))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
