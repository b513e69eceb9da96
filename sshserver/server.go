// Package sshserver accepts SSH connections, performs the handshake, and
// spawns one session per accepted channel. Grounded on the teacher's
// sshserver package (sshserver/server.go): same accept loop, same
// temporary-error handling around syscall.EINTR/EAGAIN/EWOULDBLOCK, same
// "session" channel type gate — generalized to hand channels off to a
// Session instead of a tview UI bridge, and to allocate the small
// monotonic numeric ids the room uses instead of keying by username.
package sshserver

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"sshchat/auth"
	"sshchat/room"
)

// Server listens for SSH connections and joins each accepted channel into
// a shared Room.
type Server struct {
	log             *zap.Logger
	room            *room.Room
	auth            *auth.SSHAuth
	sshServerConfig *ssh.ServerConfig
	tcpListener     net.Listener

	idMu   sync.Mutex
	nextID int
}

// New builds a Server configured with sshAuth's host key and whitelist
// callback, and starts listening on host:port.
func New(log *zap.Logger, sshAuth *auth.SSHAuth, r *room.Room, host, port string) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		log:  log,
		room: r,
		auth: sshAuth,
		sshServerConfig: &ssh.ServerConfig{
			PublicKeyCallback: sshAuth.HandlePublicKeyLogin,
		},
	}
	s.sshServerConfig.AddHostKey(sshAuth.HostSSHPrivateKey)

	addr := fmt.Sprintf("%s:%s", host, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.tcpListener = listener

	return s, nil
}

// Addr returns the listener's bound address, useful when port 0 was
// requested.
func (s *Server) Addr() net.Addr {
	return s.tcpListener.Addr()
}

// AcceptConnections blocks accepting TCP connections, performing the SSH
// handshake on each, and handing authenticated connections off to
// handleConnection.
func (s *Server) AcceptConnections() {
	for {
		nConn, err := s.tcpListener.Accept()
		if err != nil {
			if errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
				s.log.Warn("temporary error accepting connection", zap.Error(err))
				continue
			}
			s.log.Error("fatal error accepting connections, stopping", zap.Error(err))
			return
		}

		conn, chans, reqs, err := ssh.NewServerConn(nConn, s.sshServerConfig)
		if err != nil {
			s.log.Info("failed handshake", zap.Error(err))
			nConn.Close()
			continue
		}

		fingerprint := conn.Permissions.Extensions["pubkey-fp"]
		s.log.Info("user authenticated", zap.String("ssh_user", conn.User()), zap.String("fingerprint", fingerprint))
		go s.handleConnection(conn, chans, reqs)
	}
}

// handleConnection services one SSH connection's channels. Each "session"
// channel becomes one Session joined into the room; any other channel
// type is rejected.
func (s *Server) handleConnection(conn *ssh.ServerConn, chans <-chan ssh.NewChannel, reqs <-chan *ssh.Request) {
	defer conn.Close()
	go ssh.DiscardRequests(reqs)

	fingerprint := conn.Permissions.Extensions["pubkey-fp"]

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		channel, sshRequests, err := newChannel.Accept()
		if err != nil {
			s.log.Info("could not accept channel", zap.Error(err))
			continue
		}

		id := s.allocateID()
		sess := newSession(id, uuid.New().String(), conn.User(), fingerprint, string(conn.ClientVersion()),
			channel, s.room, s.auth.IsOperator(fingerprint), s.log)

		go sess.handleRequests(sshRequests)
		go sess.run()
	}
}

func (s *Server) allocateID() int {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	s.nextID++
	return s.nextID
}
