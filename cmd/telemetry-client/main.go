// Command telemetry-client joins the pad server's multicast telemetry group
// and prints every received record as a human-readable line (spec §4.7, §6).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/carletonu/hysim-go/packet"
	"github.com/carletonu/hysim-go/telemetryclient"
)

func main() {
	var (
		groupAddr string
		port      int
	)
	// Note: spec.md's original telemetry-client default (224.0.0.10)
	// disagreed with the pad server's default multicast group
	// (239.100.110.210); this build unifies on the pad server's default
	// so the two processes interoperate out of the box (spec Open
	// Question (b)).
	flag.StringVar(&groupAddr, "a", "239.100.110.210", "telemetry multicast group address")
	flag.IntVar(&port, "port", 50002, "telemetry UDP port")
	flag.Parse()

	client, err := telemetryclient.Join(groupAddr, port, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry-client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		client.Close()
	}()

	err = client.Run(func(msg packet.Message) {
		fmt.Println(telemetryclient.Render(msg))
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry-client: %v\n", err)
		os.Exit(1)
	}
}
