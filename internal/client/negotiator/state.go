package negotiator

type Role int

const (
	Responder Role = iota
	Initiator
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

type Status int

const (
	StatusNew Status = iota
	StatusNegotiating
	StatusAwaitingOffer
	StatusStable
	StatusRenegotiating
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusNegotiating:
		return "NEGOTIATING"
	case StatusAwaitingOffer:
		return "AWAITING_OFFER"
	case StatusStable:
		return "STABLE"
	case StatusRenegotiating:
		return "RENEGOTIATING"
	case StatusClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// offerOutstanding reports whether a local offer waits for its answer.
func (s Status) offerOutstanding() bool {
	return s == StatusNegotiating || s == StatusRenegotiating
}

// acceptsOffer reports whether a remote offer may be applied in s.
func (s Status) acceptsOffer() bool {
	return s == StatusNew || s == StatusAwaitingOffer || s == StatusStable
}
