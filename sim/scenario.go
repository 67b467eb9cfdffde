// Package sim replays timed control scenarios against the drive, either on
// an emulated controller or on real hardware over a serial link.
package sim

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rcvip/core"
)

// Scenario is a timed sequence of control records and state checks
type Scenario struct {
	Name       string           `yaml:"name"`
	DurationMS uint32           `yaml:"duration_ms"`
	Drive      core.DriveConfig `yaml:"drive"`
	Commands   []Command        `yaml:"commands"`
	Expect     []Expect         `yaml:"expect"`
}

// Command is one car_control record sent at At ms
type Command struct {
	At       uint32   `yaml:"at"`
	Throttle *float32 `yaml:"throttle"`
	NoSignal bool     `yaml:"no_signal"`
	Steer    float32  `yaml:"steer"`
}

// Value returns the throttle to put on the wire
func (c Command) Value() float32 {
	if c.NoSignal || c.Throttle == nil {
		return core.NoSignalThrottle
	}
	return *c.Throttle
}

// Expect is a drive state check at At ms. Unset fields are not checked.
type Expect struct {
	At        uint32 `yaml:"at"`
	State     string `yaml:"state"`
	Tripped   *bool  `yaml:"tripped"`
	Threshold *uint8 `yaml:"threshold"`
}

// ParseState maps a scenario state name to a bridge state
func ParseState(s string) (core.BridgeState, error) {
	switch strings.ToLower(s) {
	case "driving":
		return core.Driving, nil
	case "disabled":
		return core.Disabled, nil
	default:
		return 0, errors.Errorf("unknown state %q", s)
	}
}

// Parse decodes a scenario. Drive settings not given keep their defaults.
func Parse(data []byte) (*Scenario, error) {
	sc := &Scenario{Drive: core.DefaultDriveConfig()}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, errors.Wrap(err, "failed to parse scenario")
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Load reads and parses a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario")
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

// Validate checks the scenario and sorts its steps by time
func (sc *Scenario) Validate() error {
	if sc.DurationMS == 0 {
		return errors.New("duration_ms is required")
	}
	if err := sc.Drive.Validate(); err != nil {
		return errors.Wrap(err, "drive")
	}
	for i, c := range sc.Commands {
		if c.At > sc.DurationMS {
			return errors.Errorf("command %d at %dms is past the end", i, c.At)
		}
		if c.Throttle == nil && !c.NoSignal {
			return errors.Errorf("command %d needs throttle or no_signal", i)
		}
	}
	for i, e := range sc.Expect {
		if e.At > sc.DurationMS {
			return errors.Errorf("expectation %d at %dms is past the end", i, e.At)
		}
		if e.State != "" {
			if _, err := ParseState(e.State); err != nil {
				return errors.Wrapf(err, "expectation %d", i)
			}
		}
	}

	sort.SliceStable(sc.Commands, func(i, j int) bool { return sc.Commands[i].At < sc.Commands[j].At })
	sort.SliceStable(sc.Expect, func(i, j int) bool { return sc.Expect[i].At < sc.Expect[j].At })
	return nil
}

// step is a command or an expectation, merged in time order. Commands run
// before expectations due at the same time.
type step struct {
	at      uint32
	command *Command
	expect  *Expect
}

func (sc *Scenario) steps() []step {
	steps := make([]step, 0, len(sc.Commands)+len(sc.Expect))
	for i := range sc.Commands {
		steps = append(steps, step{at: sc.Commands[i].At, command: &sc.Commands[i]})
	}
	for i := range sc.Expect {
		steps = append(steps, step{at: sc.Expect[i].At, expect: &sc.Expect[i]})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].at < steps[j].at })
	return steps
}
