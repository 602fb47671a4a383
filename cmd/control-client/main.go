// Command control-client is the operator station: it turns switch input
// (stdin lines, for desktop bring-up) into control requests against a pad
// server and prints the pad's acknowledgements (spec §4.6, §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/carletonu/hysim-go/config"
	"github.com/carletonu/hysim-go/controlclient"
)

// alwaysKeyed stands in for a physical arming-key switch on desktop builds,
// where no GPIO line backs it: with this stub the privilege-escalation guard
// (spec §4.6) never drops an edge. This build has no GPIO-backed
// ArmingKeyGuard.
type alwaysKeyed struct{}

func (alwaysKeyed) Keyed() bool { return true }

func main() {
	var (
		padAddr string
		padPort int
	)
	flag.StringVar(&padAddr, "a", "127.0.0.1", "pad server address")
	flag.IntVar(&padPort, "p", 50001, "pad server control port")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	tuning := config.Default()

	addr := fmt.Sprintf("%s:%d", padAddr, padPort)
	input := controlclient.NewStdinSource(os.Stdin)
	client := controlclient.New(addr, tuning.ReconnectBackoff, logger, input, alwaysKeyed{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.Info("signal received, shutting down")
		cancel()
		<-sigCh
		logger.Warn("second signal received, forcing exit")
		os.Exit(1)
	}()

	fmt.Println("control client ready; type '<switch> on|off' or 'arm <level>', Ctrl-D to quit")
	if err := client.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("control client stopped", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("control client shut down cleanly")
}
