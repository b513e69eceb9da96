package sshserver

import (
	"encoding/binary"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"sshchat/room"
	"sshchat/terminal"
)

// renderTick is the periodic full-frame flush cadence.
const renderTick = 50 * time.Millisecond

// readBufSize is the chunk size for reading raw keystroke bytes off the
// SSH channel.
const readBufSize = 256

// session owns one client's terminal state, decodes its keystrokes through
// the room's input pipeline, and drains its outbound queue to the SSH
// channel on a periodic tick. Grounded on the teacher's clientSSHSession /
// handleUISession pair (sshserver/server.go), replacing the tview UI
// bridge with the room's own keystroke-decoded Terminal and message
// formatting.
type session struct {
	id            int
	sessionUUID   string
	username      string
	fingerprint   string
	clientVersion string
	isOp          bool

	channel ssh.Channel
	room    *room.Room
	log     *zap.Logger
	term    *terminal.Terminal
}

func newSession(id int, sessionUUID, username, fingerprint, clientVersion string, channel ssh.Channel,
	r *room.Room, isOp bool, log *zap.Logger) *session {
	return &session{
		id:            id,
		sessionUUID:   sessionUUID,
		username:      username,
		fingerprint:   fingerprint,
		clientVersion: clientVersion,
		isOp:          isOp,
		channel:       channel,
		room:          r,
		log:           log,
		term:          terminal.New(),
	}
}

// run joins the room, starts the render ticker, and blocks reading
// keystrokes until the client disconnects or leaves.
func (s *session) run() {
	defer s.channel.Close()

	if s.room.IsBanned(s.username, s.fingerprint) {
		s.channel.Write([]byte(terminal.ToCRLF("you are banned from this server\n")))
		return
	}

	member, assignedName, err := s.room.Join(s.id, s.username, s.fingerprint, s.clientVersion, s.isOp)
	if err != nil {
		s.channel.Write([]byte(terminal.ToCRLF("could not join: " + err.Error() + "\n")))
		return
	}
	s.username = assignedName

	if motd := s.room.Motd(); motd != "" {
		s.channel.Write([]byte(terminal.ToCRLF(motd) + "\n\r"))
	}

	done := make(chan struct{})
	go s.renderLoop(member, done)
	defer close(done)

	buf := make([]byte, readBufSize)
	for {
		n, err := s.channel.Read(buf)
		if n > 0 {
			s.room.HandleInput(s.id, s.term, buf[:n])
			if _, stillJoined := s.room.Member(s.id); !stillJoined {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				s.log.Debug("session read error", zap.Int("user_id", s.id), zap.Error(err))
			}
			s.room.Leave(s.id, "")
			return
		}
	}
}

// renderLoop drains member's outbound queue into the terminal sink and
// flushes it as a single SSH data frame every renderTick, per the server's
// full-frame rendering cadence. The in-progress input line is redrawn into
// the same sink synchronously by room.HandleInput, in the read loop's
// goroutine, rather than here — reading *terminal.Input from this goroutine
// while the read loop concurrently mutates it would race.
func (s *session) renderLoop(member *room.Member, done <-chan struct{}) {
	ticker := time.NewTicker(renderTick)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			s.drain(member)
			return
		case <-ticker.C:
			s.drain(member)
			if frame := s.term.Flush(); frame != nil {
				if _, err := s.channel.Write(frame); err != nil {
					return
				}
			}
		}
	}
}

// drain moves any pending outbound lines into the terminal sink without
// blocking.
func (s *session) drain(member *room.Member) {
	for {
		select {
		case line := <-member.Outbound:
			s.term.Write([]byte(terminal.ToCRLF(line) + "\n\r"))
		default:
			return
		}
	}
}

// handleRequests services the out-of-band SSH requests ("pty-req",
// "shell", "window-change") associated with the session channel, updating
// the terminal's negotiated size.
func (s *session) handleRequests(reqs <-chan *ssh.Request) {
	for req := range reqs {
		switch req.Type {
		case "pty-req":
			if w, h, ok := parsePtyRequest(req.Payload); ok {
				s.term.SetSize(w, h)
			}
			if req.WantReply {
				req.Reply(true, nil)
			}
		case "shell":
			if req.WantReply {
				req.Reply(true, nil)
			}
		case "window-change":
			if w, h, ok := parseWindowChange(req.Payload); ok {
				s.term.SetSize(w, h)
			}
			if req.WantReply {
				req.Reply(true, nil)
			}
		default:
			if req.WantReply {
				req.Reply(false, nil)
			}
		}
	}
}

// parsePtyRequest decodes the "pty-req" payload: a length-prefixed TERM
// string followed by char width/height and pixel width/height uint32s.
func parsePtyRequest(payload []byte) (width, height int, ok bool) {
	if len(payload) < 4 {
		return 0, 0, false
	}
	termLen := binary.BigEndian.Uint32(payload[0:4])
	offset := 4 + int(termLen)
	if offset+8 > len(payload) {
		return 0, 0, false
	}
	w := binary.BigEndian.Uint32(payload[offset : offset+4])
	h := binary.BigEndian.Uint32(payload[offset+4 : offset+8])
	if w == 0 || h == 0 {
		return 0, 0, false
	}
	return int(w), int(h), true
}

// parseWindowChange decodes the "window-change" payload: char width,
// char height, pixel width, pixel height, all uint32.
func parseWindowChange(payload []byte) (width, height int, ok bool) {
	if len(payload) < 8 {
		return 0, 0, false
	}
	w := binary.BigEndian.Uint32(payload[0:4])
	h := binary.BigEndian.Uint32(payload[4:8])
	if w == 0 || h == 0 {
		return 0, 0, false
	}
	return int(w), int(h), true
}
