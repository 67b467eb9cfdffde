package sim

import (
	"context"
	"log/slog"
	"time"

	"rcvip/core"
	"rcvip/host/mcu"
)

// Replay plays a scenario against real hardware in wall-clock time.
// Link latency shifts every step by a few milliseconds, so expectations
// placed right at a timeout boundary are not meaningful here.
func Replay(ctx context.Context, sc *Scenario, link *mcu.MCU, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}

	start := time.Now()
	waitUntil := func(ctx context.Context, at uint32) error {
		d := time.Until(start.Add(time.Duration(at) * time.Millisecond))
		if d <= 0 {
			return ctx.Err()
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}

	res := &Result{Name: sc.Name}
	err := play(ctx, sc, link, log, waitUntil, res)
	if err == nil {
		// Leave the vehicle stopped.
		err = link.SendCarControl(core.NoSignalThrottle, 0)
	}
	log.Info("replay finished",
		slog.String("name", sc.Name),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("failures", len(res.Failures)),
		slog.Int("bad_packets", link.BadPackets()))
	return res, err
}
