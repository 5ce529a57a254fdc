package logger

type ConnectionState uint32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateRetrying
	StateSilent
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateRetrying:
		return "RETRYING"
	case StateSilent:
		return "SILENT"
	default:
		return "INVALID"
	}
}

// Stats is a point-in-time view of a Transport.
type Stats struct {
	State   ConnectionState `json:"state"`
	Queued  int             `json:"queued"`
	Retries int             `json:"retries"`
	Sent    uint64          `json:"sent"`
	Dropped uint64          `json:"dropped"`
}
