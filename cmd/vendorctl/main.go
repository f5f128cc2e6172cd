// Command vendorctl manages a vendor's todo list from the terminal. Todos are
// cached in the local store and synced to API_BASE_URL when it is set.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jimdaga/vendorhub/internal/config"
	"github.com/jimdaga/vendorhub/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	if err := newRootCmd(cfg, logger).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
