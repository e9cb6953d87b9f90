package emulator

// Outcome reports how a Run finished.
type Outcome int

const (
	Returned   Outcome = iota // control returned to the sentinel address
	Idle                      // HALT with no keys queued and IdleStop set
	Faulted                   // instruction outside the supported subset
	CycleLimit                // instruction budget exhausted
)

var outcomeNames = map[Outcome]string{
	Returned:   "returned",
	Idle:       "halt-no-keys",
	Faulted:    "fault",
	CycleLimit: "cycle-limit",
}

func (outcome Outcome) String() string {
	name, ok := outcomeNames[outcome]
	if !ok {
		return "unknown"
	}
	return name
}
