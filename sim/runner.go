package sim

import (
	"context"
	"log/slog"

	"rcvip/core"
	"rcvip/host/mcu"
)

// Run plays a scenario against an emulated controller on a virtual clock
// and records every drive state transition.
func Run(sc *Scenario, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}

	var now uint32
	dev, err := NewDevice(sc.Drive, func() uint32 { return now })
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	res := &Result{Name: sc.Name}
	var last Transition
	sample := func() {
		st := dev.Drive.Status()
		cur := Transition{At: now, State: st.State, Supervisor: st.Supervisor, Threshold: st.Threshold}
		if len(res.Timeline) == 0 || cur.State != last.State ||
			cur.Supervisor != last.Supervisor || cur.Threshold != last.Threshold {
			res.Timeline = append(res.Timeline, cur)
			last = cur
		}
	}
	sample()

	waitUntil := func(ctx context.Context, at uint32) error {
		for now < at {
			if err := ctx.Err(); err != nil {
				return err
			}
			sample()
			now++
			dev.Sync()
		}
		sample()
		return nil
	}

	link := mcu.New(dev, log)
	if err := play(context.Background(), sc, link, log, waitUntil, res); err != nil {
		return res, err
	}

	res.Violations = dev.Lines.Violations()
	res.Cycles = dev.Timer.Cycles()
	log.Info("scenario finished",
		slog.String("name", sc.Name),
		slog.Int("transitions", len(res.Timeline)),
		slog.Int("failures", len(res.Failures)),
		slog.Int("violations", res.Violations))
	if dropped := dev.Dropped() + dev.Failures(); dropped > 0 {
		log.Warn("controller rejected input", slog.Int("count", dropped))
	}
	return res, nil
}

// DefaultScenario is the reference failsafe scenario: two commands, a
// silence long enough to trip, then a resuming command at a new duty.
func DefaultScenario() *Scenario {
	half, resume := float32(0.5), float32(0.3)
	driving, tripped, notTripped := "driving", true, false
	threshold := core.ThresholdFor(resume, core.DefaultDriveConfig().MaxPower)
	sc := &Scenario{
		Name:       "failsafe",
		DurationMS: 800,
		Drive:      core.DefaultDriveConfig(),
		Commands: []Command{
			{At: 0, Throttle: &half},
			{At: 100, Throttle: &half},
			{At: 700, Throttle: &resume},
		},
		Expect: []Expect{
			{At: 50, State: driving},
			{At: 600, State: driving, Tripped: &notTripped},
			{At: 601, State: "disabled", Tripped: &tripped},
			{At: 700, State: driving, Tripped: &notTripped, Threshold: &threshold},
		},
	}
	return sc
}
