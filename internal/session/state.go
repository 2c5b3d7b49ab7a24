package session

// State tracks one session's connection handle through the handshake
// sequence. Socket close from any state forces Disconnected.
type State int

const (
	Disconnected State = iota
	SocketOpen
	FrontConnecting
	FrontConnected
	Authenticating
	Authenticated
	LoggedIn
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case SocketOpen:
		return "socket_open"
	case FrontConnecting:
		return "front_connecting"
	case FrontConnected:
		return "front_connected"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case LoggedIn:
		return "logged_in"
	case LoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}
