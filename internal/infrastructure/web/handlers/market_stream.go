package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tbtc-market-service/internal/application/dto"
	"tbtc-market-service/internal/domain/interfaces"
	"tbtc-market-service/internal/infrastructure/logging"
	"tbtc-market-service/internal/infrastructure/metrics"
)

const (
	streamWriteWait      = 10 * time.Second
	streamPongWait       = 60 * time.Second
	streamPingInterval   = 30 * time.Second
	streamReadLimit      = 4096
	streamReadBufferSize = 1024
)

// MarketStream serves /ws/tbtc. Every text frame received from the client
// triggers exactly one upstream invocation and exactly one reply frame.
type MarketStream struct {
	marketService interfaces.MarketService
	upgrader      websocket.Upgrader
	logger        logging.HTTPLogger
}

// NewMarketStream crea el handler WebSocket
func NewMarketStream(marketService interfaces.MarketService, logger logging.HTTPLogger) *MarketStream {
	if logger == nil {
		logger = logging.HTTP()
	}
	return &MarketStream{
		marketService: marketService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  streamReadBufferSize,
			WriteBufferSize: streamReadBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve godoc
// @Summary Market stream
// @Description WebSocket endpoint. Each client message runs the market script once and is answered with one frame.
// @Tags market
// @Success 101 {object} dto.StreamMessage "Switching protocols"
// @Router /ws/tbtc [get]
func (s *MarketStream) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya escribió la respuesta HTTP de error
		s.logger.WarnWithError(r.Context(), "WebSocket upgrade failed", err, nil)
		return
	}
	defer conn.Close()

	done := metrics.TrackWebSocketSession()
	defer done()

	sessionID := uuid.New().String()
	ctx, cancel := context.WithCancel(logging.WithRequestID(context.Background(), logging.GetRequestID(r.Context())))
	defer cancel()

	fields := logging.Fields{logging.FieldSessionID: sessionID}
	s.logger.Info(ctx, "WebSocket session opened", fields)

	conn.SetReadLimit(streamReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	// Los pings comparten el writer con las respuestas
	writes := make(chan *dto.StreamMessage)
	writerDone := make(chan struct{})
	go s.writeLoop(ctx, conn, writes, writerDone)

	messages := 0
	for {
		msgType, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WarnWithError(ctx, "WebSocket read failed", err, fields)
			}
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		messages++
		metrics.RecordWebSocketMessage("in", "request")

		reply := s.handleRequest(ctx)
		select {
		case writes <- reply:
		case <-writerDone:
			// el writer terminó por error, no hay a quién responder
		}
	}

	cancel()
	<-writerDone

	s.logger.Info(ctx, "WebSocket session closed", logging.Fields{
		logging.FieldSessionID: sessionID,
		logging.FieldMessages:  messages,
	})
}

// handleRequest runs one market fetch and builds the reply frame
func (s *MarketStream) handleRequest(ctx context.Context) *dto.StreamMessage {
	doc, err := s.marketService.FetchMarket(ctx)
	if err != nil {
		return dto.NewErrorMessage(StatusForError(err), DetailForError(err))
	}
	return dto.NewMarketMessage(doc.Bytes())
}

// writeLoop serializa todas las escrituras sobre la conexión
func (s *MarketStream) writeLoop(ctx context.Context, conn *websocket.Conn, writes <-chan *dto.StreamMessage, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteWait))
			return

		case msg := <-writes:
			payload, err := json.Marshal(msg)
			if err != nil {
				s.logger.ErrorWithError(ctx, "Failed to encode stream frame", err, nil)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					s.logger.WarnWithError(ctx, "WebSocket write failed", err, nil)
				}
				return
			}
			metrics.RecordWebSocketMessage("out", msg.Type)

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		}
	}
}
