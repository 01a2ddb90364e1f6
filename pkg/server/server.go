// Package server implements the IRC protocol engine and its TCP connection
// handling: registration, channels, messaging, channel modes and numeric
// replies for the client-facing subset of RFC 1459/2812.
package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mkdd/ircd/internal/config"
	redisclient "github.com/mkdd/ircd/pkg/redis"
	"github.com/mkdd/ircd/pkg/version"
)

// maxLineLen is the maximum encoded line length including the CRLF
// terminator. Longer input is truncated at the cap before parsing.
const maxLineLen = 512

// Server owns the client and channel tables. One mutex serializes every
// command handler against them: connection goroutines only read bytes and
// hand complete lines to HandleLine, so no two handlers ever mutate shared
// state concurrently and the entities need no locks of their own.
type Server struct {
	cfg  *config.Config
	name string

	createdAt     time.Time
	clientTimeout time.Duration
	channelLimit  int

	mu       sync.Mutex
	clients  map[uuid.UUID]*Client
	channels map[string]*Channel

	commands []command

	ln net.Listener

	// Closed by Shutdown; stops background goroutines.
	done chan struct{}

	// Distributed state, nil in single-server mode.
	redis *redisclient.Client
}

// New builds a server from the configuration. The reply catalog is validated
// here so a malformed template fails startup, not a live command.
func New(cfg *config.Config) (*Server, error) {
	if err := validateCatalog(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:           cfg,
		name:          cfg.Server.Name,
		createdAt:     time.Now(),
		clientTimeout: time.Duration(cfg.Limits.ClientTimeoutMinutes) * time.Minute,
		channelLimit:  cfg.Limits.ChannelsPerClient,
		clients:       make(map[uuid.UUID]*Client),
		channels:      make(map[string]*Channel),
		done:          make(chan struct{}),
	}
	s.registerCommands()

	if cfg.Redis.Enabled {
		podID := cfg.Redis.PodID
		if podID == "" {
			podID = uuid.Must(uuid.NewRandom()).String()
			log.Infof("Generated pod ID: %s", podID)
		}
		rc, err := redisclient.NewClient(cfg.Redis.URL, podID)
		if err != nil {
			log.Errorf("Failed to initialize Redis client: %v", err)
			log.Println("Continuing in single-server mode...")
		} else {
			s.redis = rc
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := rc.RegisterPod(ctx, version.GetVersion()); err != nil {
				log.Errorf("Failed to register pod: %v", err)
			}
			cancel()
			go s.heartbeatLoop()
		}
	}

	return s, nil
}

// ListenAndServe listens on the configured port and accepts connections
// until Shutdown closes the listener.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen failed, port possibly in use already: %w", err)
	}
	log.Infof("%s %s listening on %s", s.name, version.GetVersion(), ln.Addr())
	return s.Serve(ln)
}

// Serve accepts connections from ln, one goroutine per client.
func (s *Server) Serve(ln net.Listener) error {
	s.ln = ln
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Shutdown closes the listener, tells every client the server is going away
// and cleans up distributed state.
func (s *Server) Shutdown() {
	close(s.done)
	if s.ln != nil {
		s.ln.Close()
	}

	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	log.Infof("Disconnecting %d clients...", len(clients))
	for _, c := range clients {
		c.sendLine("ERROR :Server shutting down")
		if closer, ok := c.conn.(net.Conn); ok {
			closer.Close()
		}
	}

	if s.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.redis.GracefulShutdown(ctx); err != nil {
			log.Errorf("Failed to clean up Redis state: %v", err)
		}
		if err := s.redis.Close(); err != nil {
			log.Errorf("Failed to close Redis connection: %v", err)
		}
	}
}

// handleConn runs the per-connection read loop. The reader is created once
// so buffered bytes survive between reads; each complete line goes through
// HandleLine under the server mutex.
func (s *Server) handleConn(conn net.Conn) {
	c := newClient(conn)

	s.mu.Lock()
	s.clients[c.identifier] = c
	s.mu.Unlock()

	log.Infof("Client %s connected from %s", c.identifier, conn.RemoteAddr())

	defer func() {
		s.disconnect(c, "Connection closed")
		conn.Close()
	}()

	reader := bufio.NewReader(conn)
	for {
		conn.SetReadDeadline(time.Now().Add(s.clientTimeout))
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Debugf("Client %s read error: %v", c.identifier, err)
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) > maxLineLen-2 {
			line = line[:maxLineLen-2]
		}
		if line == "" {
			continue
		}
		if s.cfg.Server.Debug {
			log.Debugf("Received from %s: %s", c.identifier, line)
		}
		if quit := s.HandleLine(c, line); quit {
			return
		}
	}
}

// HandleLine feeds one complete input line belonging to c into the engine.
// It returns true when the client asked to quit and the transport should be
// closed. This is the engine's entire input surface.
func (s *Server) HandleLine(c *Client, line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := parseLine(line)
	if msg == nil {
		return c.quitting
	}
	msg.Command = strings.ToUpper(msg.Command)
	s.dispatchMessage(c, msg)
	return c.quitting
}

// disconnect removes a client entirely: QUIT notifications to channel peers,
// membership cleanup, table removal and nickname release, all in one
// critical section so no handler can observe a dangling reference.
func (s *Server) disconnect(c *Client, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, present := s.clients[c.identifier]; !present {
		return
	}
	s.departAllChannels(c, reason)
	// Invitations may exist on channels the client never joined.
	for _, ch := range s.channels {
		delete(ch.invited, c.identifier)
	}
	delete(s.clients, c.identifier)
	log.Infof("Client %s disconnected: %s", c.identifier, reason)

	if s.redis != nil && c.nickname != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redis.ReleaseNick(ctx, c.nickname); err != nil {
			log.Errorf("Failed to release nick %q: %v", c.nickname, err)
		}
		if err := s.redis.PublishEvent(ctx, redisclient.Event{
			Type: "QUIT",
			Data: map[string]interface{}{"uuid": c.identifier.String(), "nick": c.nickname, "reason": reason},
		}); err != nil {
			log.Errorf("Failed to publish QUIT event: %v", err)
		}
	}
}

// departAllChannels removes the client from every channel it belongs to,
// notifying each peer exactly once even when channels overlap, and deletes
// channels emptied by the departure.
func (s *Server) departAllChannels(c *Client, reason string) {
	if len(c.channels) == 0 {
		return
	}
	quitLine := createMessage(c.fullID, QuitCmd, ":"+reason)
	notified := make(map[uuid.UUID]bool)

	for name := range c.channels {
		ch := s.channels[name]
		if ch == nil {
			continue
		}
		for _, id := range ch.members {
			if id == c.identifier || notified[id] {
				continue
			}
			if peer := s.clients[id]; peer != nil {
				peer.sendLine(quitLine)
				notified[id] = true
			}
		}
		ch.removeMember(c.identifier)
		delete(ch.invited, c.identifier)
		s.dropChannelIfEmpty(ch)
	}
	c.channels = make(map[string]bool)
}

// completeRegistration promotes the client and fires the welcome sequence.
// Called exactly once, the instant both nickname and username are set.
func (s *Server) completeRegistration(c *Client) {
	c.registered = true
	c.fullID = c.nickname + "!" + c.username + "@" + s.name

	info := map[string]string{
		"nick":       c.nickname,
		"client":     c.fullID,
		"network":    s.name,
		"servername": s.name,
		"version":    version.GetVersion(),
		"datetime":   s.createdAt.UTC().Format("Mon Jan 02 2006 at 15:04:05 GMT"),
	}
	s.sendNumeric(c, RplWelcome, info)
	s.sendNumeric(c, RplYourHost, info)
	s.sendNumeric(c, RplCreated, info)
	if s.cfg.Server.Motd != "" {
		c.sendLine(createMessage(s.name, "NOTICE", c.nickname+" :"+s.cfg.Server.Motd))
	}
	log.Infof("Client %s registered as %s", c.identifier, c.fullID)

	if s.redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.redis.PublishEvent(ctx, redisclient.Event{
			Type: "REGISTER",
			Data: map[string]interface{}{"uuid": c.identifier.String(), "nick": c.nickname, "user": c.username},
		}); err != nil {
			log.Errorf("Failed to publish REGISTER event: %v", err)
		}
	}
}

// reserveNick claims a nickname cluster-wide when distributed mode is on.
// Always succeeds in single-server mode; the local uniqueness check has
// already passed by the time this is called.
func (s *Server) reserveNick(c *Client, nick string) bool {
	if s.redis == nil || nick == c.nickname {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok, err := s.redis.ReserveNick(ctx, nick, c.identifier.String())
	if err != nil {
		log.Errorf("Failed to reserve nick %q, falling back to local check: %v", nick, err)
		return true
	}
	if !ok {
		return false
	}
	if c.nickname != "" {
		if err := s.redis.ReleaseNick(ctx, c.nickname); err != nil {
			log.Errorf("Failed to release nick %q: %v", c.nickname, err)
		}
	}
	return true
}

func (s *Server) heartbeatLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		count := len(s.clients)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := s.redis.Heartbeat(ctx, count, version.GetVersion()); err != nil {
			log.Errorf("Heartbeat failed: %v", err)
		}
		cancel()
	}
}

// findClientByNick resolves a nickname to a registered client.
func (s *Server) findClientByNick(nick string) *Client {
	for _, c := range s.clients {
		if c.registered && c.nickname == nick {
			return c
		}
	}
	return nil
}

// findClientByNickAny also matches clients that have not finished
// registration; NICK collisions are checked against every connection.
func (s *Server) findClientByNickAny(nick string) *Client {
	for _, c := range s.clients {
		if c.nickname == nick {
			return c
		}
	}
	return nil
}

// broadcast delivers one line to every member of a channel.
func (s *Server) broadcast(ch *Channel, line string) {
	for _, id := range ch.members {
		if c := s.clients[id]; c != nil {
			c.sendLine(line)
		}
	}
}

// broadcastExcept delivers one line to every member except one.
func (s *Server) broadcastExcept(ch *Channel, line string, except uuid.UUID) {
	for _, id := range ch.members {
		if id == except {
			continue
		}
		if c := s.clients[id]; c != nil {
			c.sendLine(line)
		}
	}
}

// channelNicks renders the member nick list in join order for RPL_NAMREPLY.
func (s *Server) channelNicks(ch *Channel) string {
	nicks := make([]string, 0, len(ch.members))
	for _, id := range ch.members {
		if c := s.clients[id]; c != nil {
			nicks = append(nicks, c.nickname)
		}
	}
	return strings.Join(nicks, " ")
}

// dropChannelIfEmpty enforces the lifecycle rule: a channel with zero
// members does not exist.
func (s *Server) dropChannelIfEmpty(ch *Channel) {
	if len(ch.members) == 0 {
		delete(s.channels, ch.name)
		log.Infof("Channel %s deleted", ch.name)
	}
}
