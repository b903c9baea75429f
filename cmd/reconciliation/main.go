package main

import (
	"fmt"
	"os"

	"github.com/tirasundara/reconcile-accounts/internal/logger"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitWithError(err)
	}
}

func exitWithError(err error) {
	l, logErr := logger.New(&logger.Config{Level: "info", Format: "console"})
	if logErr == nil {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	fmt.Fprintf(os.Stderr, "Run with -h flag for usage information.\n")
	os.Exit(1)
}
