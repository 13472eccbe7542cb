package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"meetingmind/internal/domain"
	"meetingmind/internal/infra/config"
	"meetingmind/internal/infra/middleware"
	"meetingmind/internal/usecase"
)

// sendQueueSize bounds per-client outbound messages. A client that
// falls this far behind is disconnected rather than stalling the rest.
const sendQueueSize = 64

// SessionFactory builds the per-connection pipeline: the session that
// consumes transcript segments and the transcriber the connection
// feeds raw audio into. broadcast is the server's fan-out.
type SessionFactory func(ctx context.Context, broadcast domain.Broadcaster) (*usecase.Session, domain.Transcriber, error)

// clientConn tracks a single WebSocket connection.
type clientConn struct {
	ws        *websocket.Conn
	sendCh    chan domain.InsightMessage
	done      chan struct{}
	closeOnce sync.Once
}

func (cc *clientConn) shutdown() {
	cc.closeOnce.Do(func() { close(cc.done) })
}

// Server is the WebSocket gateway. Each connection owns one session
// and one transcriber; insight messages fan out to every connection.
type Server struct {
	factory     SessionFactory
	control     *ControlHandler
	auth        Authenticator
	bus         domain.EventBus
	logger      *slog.Logger
	metrics     *Metrics
	addr        string
	rateLimit   middleware.RateLimitConfig
	httpSrv     *http.Server
	boundAddr   string
	clients     sync.Map // connID (uint64) -> *clientConn
	eventTotals sync.Map // domain.EventType -> *atomic.Int64
	nextID      atomic.Uint64
	startTime   time.Time
}

// NewServer creates a gateway server.
func NewServer(cfg config.GatewayConfig, factory SessionFactory, control *ControlHandler, bus domain.EventBus, logger *slog.Logger) *Server {
	return &Server{
		factory: factory,
		control: control,
		auth:    AuthFromConfig(cfg.AuthToken),
		bus:     bus,
		logger:  logger,
		metrics: &Metrics{},
		addr:    cfg.Addr,
		rateLimit: middleware.RateLimitConfig{
			RequestsPerMin: cfg.RatePerMin,
			BurstSize:      cfg.RateBurst,
			TrustedProxies: cfg.TrustedProxies,
		},
	}
}

// Start begins accepting WebSocket connections. Blocks until context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.startTime = time.Now()

	if s.bus != nil {
		unsubscribe := s.bus.SubscribeAll(s.observeEvent)
		defer unsubscribe()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/metrics", s.handleMetrics)

	var handler http.Handler = middleware.SecurityHeaders(mux)
	if s.rateLimit.RequestsPerMin > 0 {
		handler = middleware.RateLimit(ctx, s.rateLimit)(handler)
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	s.boundAddr = listener.Addr().String()

	s.httpSrv = &http.Server{Handler: handler}

	s.logger.Info("gateway started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		s.Stop(context.Background())
	}()

	if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("gateway serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the gateway server.
func (s *Server) Stop(ctx context.Context) error {
	s.clients.Range(func(key, value any) bool {
		cc := value.(*clientConn)
		cc.shutdown()
		cc.ws.Close(websocket.StatusGoingAway, "server shutting down")
		s.clients.Delete(key)
		return true
	})

	if s.httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
	return nil
}

// BoundAddr returns the actual address the server bound to. Only valid after Start.
func (s *Server) BoundAddr() string { return s.boundAddr }

// Broadcast implements domain.Broadcaster: every connected client gets
// the message. A client whose send queue is full is disconnected;
// delivery to the others is unaffected.
func (s *Server) Broadcast(ctx context.Context, msg domain.InsightMessage) error {
	if msg.Type == domain.MessageInsight {
		s.metrics.InsightsTotal.Add(1)
		s.publishBroadcast(ctx, msg)
	}

	s.clients.Range(func(key, value any) bool {
		cc := value.(*clientConn)
		select {
		case cc.sendCh <- msg:
			s.metrics.MessagesSent.Add(1)
		default:
			s.logger.Warn("disconnecting unresponsive client", "conn_id", key)
			cc.shutdown()
			cc.ws.Close(websocket.StatusPolicyViolation, "send queue overflow")
			s.clients.Delete(key)
		}
		return true
	})
	return nil
}

// observeEvent tallies bus traffic per event type for the metrics
// endpoint. Runs on the bus's handler goroutines.
func (s *Server) observeEvent(_ context.Context, event domain.Event) {
	counter, _ := s.eventTotals.LoadOrStore(event.Type, &atomic.Int64{})
	counter.(*atomic.Int64).Add(1)
	s.logger.Debug("bus event", "type", string(event.Type), "session", event.SessionID)
}

func (s *Server) publishBroadcast(ctx context.Context, msg domain.InsightMessage) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	s.bus.Publish(ctx, domain.Event{
		Type:      domain.EventInsightBroadcast,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Authenticate(r.URL.Query().Get("token")); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{
			"localhost",
			"localhost:*",
			"127.0.0.1",
			"127.0.0.1:*",
			"[::1]",
			"[::1]:*",
		},
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	ctx := r.Context()

	session, transcriber, err := s.factory(ctx, s.Broadcast)
	if err != nil {
		s.terminalError(ctx, ws, err)
		return
	}

	segments, err := transcriber.Stream(ctx)
	if err != nil {
		transcriber.Close()
		s.terminalError(ctx, ws, err)
		return
	}

	connID := s.nextID.Add(1)
	cc := &clientConn{
		ws:     ws,
		sendCh: make(chan domain.InsightMessage, sendQueueSize),
		done:   make(chan struct{}),
	}
	s.clients.Store(connID, cc)
	s.metrics.SessionsTotal.Add(1)
	s.metrics.SessionsActive.Add(1)

	s.logger.Info("client connected", "conn_id", connID, "session", session.ID)

	go s.writeLoop(connID, cc)
	go session.Consume(ctx, segments)

	s.readLoop(ctx, cc, transcriber)

	// Cleanup.
	cc.shutdown()
	s.clients.Delete(connID)
	s.metrics.SessionsActive.Add(-1)
	transcriber.Close()
	session.Close()
	ws.Close(websocket.StatusNormalClosure, "")
	s.logger.Info("client disconnected", "conn_id", connID, "session", session.ID)
}

// terminalError tells the client the backend is not usable and closes
// the socket. Sent when per-connection setup fails.
func (s *Server) terminalError(ctx context.Context, ws *websocket.Conn, cause error) {
	s.logger.Error("connection setup failed", "error", cause)
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = wsjson.Write(writeCtx, ws, domain.InsightMessage{
		Type:    domain.MessageError,
		Message: "Backend AI/Speech services not ready. Please try again later.",
	})
	ws.Close(websocket.StatusInternalError, "session init failed")
}

// readLoop routes inbound frames: binary carries audio for the
// transcriber, text carries control messages. Returns when the
// connection drops or the client stops cleanly.
func (s *Server) readLoop(ctx context.Context, cc *clientConn, transcriber domain.Transcriber) {
	for {
		select {
		case <-cc.done:
			return
		default:
		}

		typ, data, err := cc.ws.Read(ctx)
		if err != nil {
			return
		}

		switch typ {
		case websocket.MessageBinary:
			s.metrics.AudioChunks.Add(1)
			if err := transcriber.WriteAudio(ctx, data); err != nil {
				s.logger.Warn("audio forward failed", "error", err)
				return
			}
		case websocket.MessageText:
			s.metrics.ControlRequests.Add(1)
			reply := s.control.Handle(ctx, data)
			s.send(cc, reply)
		}
	}
}

// writeLoop drains the send queue. A failed write means the peer is
// gone; the connection is dropped from the client set immediately
// rather than waiting for readLoop to notice.
func (s *Server) writeLoop(connID uint64, cc *clientConn) {
	for {
		select {
		case <-cc.done:
			return
		case msg := <-cc.sendCh:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := wsjson.Write(ctx, cc.ws, msg)
			cancel()
			if err != nil {
				s.logger.Warn("client write failed", "conn_id", connID, "error", err)
				cc.shutdown()
				s.clients.Delete(connID)
				cc.ws.CloseNow()
				return
			}
		}
	}
}

// send queues one message for a single connection, used for control
// replies that must not fan out.
func (s *Server) send(cc *clientConn, msg domain.InsightMessage) {
	select {
	case cc.sendCh <- msg:
		s.metrics.MessagesSent.Add(1)
	default:
		s.logger.Warn("dropped control reply for slow client")
	}
}
