package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"rcvip/host/mcu"
)

// StatusTimeout bounds the wait for a drive_status reply
const StatusTimeout = 200 * time.Millisecond

// play sends the scenario's steps over link. waitUntil blocks until the
// given scenario time.
func play(ctx context.Context, sc *Scenario, link *mcu.MCU, log *slog.Logger,
	waitUntil func(context.Context, uint32) error, res *Result) error {
	for _, st := range sc.steps() {
		if err := waitUntil(ctx, st.at); err != nil {
			return err
		}

		switch {
		case st.command != nil:
			c := st.command
			log.Debug("car_control", slog.Uint64("at", uint64(c.At)), slog.Float64("throttle", float64(c.Value())))
			if err := link.SendCarControl(c.Value(), c.Steer); err != nil {
				return errors.Wrapf(err, "t=%dms", c.At)
			}
		case st.expect != nil:
			status, err := link.QueryStatus(StatusTimeout)
			if err != nil {
				return errors.Wrapf(err, "t=%dms", st.at)
			}
			res.check(st.expect, status)
		}
	}
	return waitUntil(ctx, sc.DurationMS)
}
