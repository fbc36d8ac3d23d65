package app

import "github.com/dkeye/Zloer/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a member whose send buffer overflowed
// during a room fan-out.
type Policy interface {
	OnBackPressure(room domain.RoomID, peer domain.PeerID) BackpressureAction
}

// SimplePolicy disconnects slow consumers. A peer that misses membership
// notifications would keep negotiating with participants that are gone.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomID, domain.PeerID) BackpressureAction {
	return KickMember
}
