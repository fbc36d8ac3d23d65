package domain

import (
	"errors"
	"fmt"
)

type AdmissionReason string

const (
	RoomFull   AdmissionReason = "room-full"
	RoomLocked AdmissionReason = "room-locked"
)

// AdmissionError is returned to a joining connection only. Room state is untouched.
type AdmissionError struct {
	Reason AdmissionReason
	Room   RoomID
	Max    int
}

func (e *AdmissionError) Error() string {
	switch e.Reason {
	case RoomFull:
		return fmt.Sprintf("room %s is full: at most %d participants", e.Room, e.Max)
	case RoomLocked:
		return fmt.Sprintf("room %s is locked for new participants", e.Room)
	default:
		return fmt.Sprintf("admission to room %s denied: %s", e.Room, e.Reason)
	}
}

const NotHost = "not-host"

// AuthorizationError rejects a host-only action sent by someone else.
type AuthorizationError struct {
	Reason    string
	Requester PeerID
	Action    string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: %s may not perform %s", e.Reason, e.Requester, e.Action)
}

var (
	ErrNotInRoom      = errors.New("connection is not in a room")
	ErrTargetNotFound = errors.New("target is not a member of the room")
	ErrUnknownAction  = errors.New("unknown admin action")
)
