package tui

// Mode selects which question the explorer answers for an identifier.
type Mode int

// Explorer modes, in tab order.
const (
	ModeNetwork Mode = iota
	ModeConnections
	ModeProfile
	modeCount
)

func (m Mode) String() string {
	switch m {
	case ModeNetwork:
		return "Network"
	case ModeConnections:
		return "Connections"
	case ModeProfile:
		return "Profile"
	default:
		return "Unknown"
	}
}

// queryResultMsg carries a rendered answer back to the model. seq ties it to
// the submission that produced it so stale answers can be dropped.
type queryResultMsg struct {
	err     error
	id      string
	content string
	summary string
	mode    Mode
	seq     int
}
