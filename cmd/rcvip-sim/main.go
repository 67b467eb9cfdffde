// Command rcvip-sim plays drive scenarios against the emulated controller,
// or against a real one over a serial port.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"rcvip/core"
	"rcvip/host/mcu"
	"rcvip/host/serial"
	"rcvip/protocol"
	"rcvip/sim"
)

var (
	scenarioPath = flag.String("scenario", "", "Scenario YAML file (default: built-in failsafe scenario)")
	device       = flag.String("device", "", "Serial device of a real controller; replays in wall-clock time")
	baud         = flag.Int("baud", 115200, "Baud rate")
	timeline     = flag.Bool("timeline", true, "Print the state timeline (emulated runs only)")
	verbose      = flag.Bool("verbose", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Print the protocol version and exit")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("rcvip-sim " + protocol.Version)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if *verbose {
		core.SetDebugWriter(func(msg string) { log.Debug(msg) })
		core.SetDebugEnabled(true)
	}

	log.Debug("starting", slog.String("version", protocol.Version))

	sc := sim.DefaultScenario()
	if *scenarioPath != "" {
		var err error
		sc, err = sim.Load(*scenarioPath)
		if err != nil {
			log.Error("load scenario", slog.Any("err", err))
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		res *sim.Result
		err error
	)
	if *device == "" {
		res, err = sim.Run(sc, log)
		if *verbose {
			core.DumpEventRing()
		}
	} else {
		res, err = replay(ctx, sc, log)
	}
	if err != nil {
		log.Error("scenario aborted", slog.String("name", sc.Name), slog.Any("err", err))
		os.Exit(1)
	}

	if *timeline && len(res.Timeline) > 0 {
		fmt.Printf("%s timeline:\n", res.Name)
		for _, tr := range res.Timeline {
			fmt.Println("  " + tr.String())
		}
	}
	for _, f := range res.Failures {
		fmt.Println("FAIL " + f)
	}
	if res.Violations > 0 {
		fmt.Printf("FAIL %d shoot-through violations\n", res.Violations)
	}
	if !res.OK() {
		os.Exit(1)
	}
	fmt.Printf("PASS %s\n", res.Name)
}

func replay(ctx context.Context, sc *sim.Scenario, log *slog.Logger) (*sim.Result, error) {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	link, err := mcu.Connect(cfg, log)
	if err != nil {
		return nil, err
	}
	defer link.Close()

	log.Info("replaying", slog.String("name", sc.Name), slog.String("device", *device))
	return sim.Replay(ctx, sc, link, log)
}
