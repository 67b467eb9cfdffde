package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// DriveEvent captures a drive state change for post-mortem analysis
type DriveEvent struct {
	EventType uint8  // Event type code
	Clock     uint32 // System time in milliseconds
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtCommand   = 1 // Valid throttle accepted (v1=fixed throttle, v2=threshold)
	EvtReject    = 2 // Out-of-range throttle rejected (v1=fixed throttle)
	EvtEnable    = 3 // Bridge enabled (v1=threshold)
	EvtDisable   = 4 // Bridge disabled from Driving
	EvtTrip      = 5 // Failsafe tripped (v1=command age in ms)
	EvtRecover   = 6 // Failsafe cleared (v1=1 if re-enabled)
	EvtTeardown  = 7 // Drive torn down
	EvtSensorErr = 8 // Sensor read failed (v1=sensor code)
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Event ring buffer, written from the main context only
	eventRing     [EventRingSize]DriveEvent
	eventRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a drive event in the ring buffer.
// Never call from interrupt context.
func RecordEvent(eventType uint8, value1, value2 uint32) {
	idx := eventRingHead
	eventRing[idx] = DriveEvent{
		EventType: eventType,
		Clock:     Millis(),
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize
}

// RecentEvents returns recorded events from oldest to newest
func RecentEvents() []DriveEvent {
	events := make([]DriveEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType != 0 {
			events = append(events, evt)
		}
	}
	return events
}

// eventName returns the dump label for an event type
func eventName(eventType uint8) string {
	switch eventType {
	case EvtCommand:
		return "COMMAND"
	case EvtReject:
		return "REJECT"
	case EvtEnable:
		return "ENABLE"
	case EvtDisable:
		return "DISABLE"
	case EvtTrip:
		return "TRIP!"
	case EvtRecover:
		return "RECOVER"
	case EvtTeardown:
		return "TEARDOWN"
	case EvtSensorErr:
		return "SENSOR_ERR"
	default:
		return "UNKNOWN"
	}
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[DRIVE] === Event Ring Dump ===")
	for _, evt := range RecentEvents() {
		debugPrintln("[DRIVE] " + eventName(evt.EventType) +
			" clock=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[DRIVE] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = DriveEvent{}
	}
	eventRingHead = 0
}
