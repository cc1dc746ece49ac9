package lifecycle

// Status is the request lifecycle of a search session. One status is
// shared by the normal fetch and the image search.
type Status string

// Lifecycle states.
const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Success Status = "success"
	Error   Status = "error"
)

// IsSettled reports whether no request is in flight.
func (s Status) IsSettled() bool { return s != Loading }
