package app

import (
	"github.com/dkeye/Zloer/internal/domain"
	"github.com/dkeye/Zloer/internal/protocol"
)

// Chat stamps the message with the server clock and sends it to the whole
// room, sender included. Nothing is stored.
func (g *Gateway) Chat(peer domain.PeerID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, err := g.roomOfLocked(peer)
	if err != nil {
		return err
	}
	m, _ := room.Member(peer)
	g.broadcast(room, "", protocol.TypeChatMessage, protocol.ChatOut{
		From:      string(peer),
		Nickname:  nicknameOf(m),
		Message:   text,
		Timestamp: g.now().UTC(),
	})
	return nil
}

// Typing announces that peer started (or stopped) typing.
func (g *Gateway) Typing(peer domain.PeerID, typing bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, err := g.roomOfLocked(peer)
	if err != nil {
		return err
	}
	t := protocol.TypeUserTyping
	if !typing {
		t = protocol.TypeUserStopTyping
	}
	m, _ := room.Member(peer)
	g.broadcast(room, peer, t, protocol.Typing{PeerID: string(peer), Nickname: nicknameOf(m)})
	return nil
}

func (g *Gateway) PlaySound(peer domain.PeerID, sound string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, err := g.roomOfLocked(peer)
	if err != nil {
		return err
	}
	m, _ := room.Member(peer)
	g.broadcast(room, peer, protocol.TypePlaySound, protocol.SoundOut{Sound: sound, Nickname: nicknameOf(m)})
	return nil
}
