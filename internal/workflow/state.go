package workflow

type State int

const (
	StateIdle State = iota
	StateScanning
	StateScanComplete
	StateEmailing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateScanComplete:
		return "scan_complete"
	case StateEmailing:
		return "emailing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event types published on every transition.
const (
	EventScanStarted   = "workflow.scan_started"
	EventScanFailed    = "workflow.scan_failed"
	EventScanSucceeded = "workflow.scan_succeeded"
	EventEmailStarted  = "workflow.email_started"
	EventCycleDone     = "workflow.cycle_done"
)
