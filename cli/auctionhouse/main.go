package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alphabill-org/auctionhouse/cli/auctionhouse/cmd"
	"github.com/alphabill-org/auctionhouse/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.New(logger.New).Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "auctionhouse: %v\n", err)
		os.Exit(1)
	}
}
