package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tbtc-market-service/internal/application/dto"
	"tbtc-market-service/internal/application/services"
	"tbtc-market-service/internal/domain/entities"
)

func dialStream(t *testing.T, runner *fakeRunner) *websocket.Conn {
	t.Helper()
	httpLogger, upstreamLogger := newTestLoggers(t)
	stream := NewMarketStream(services.NewMarketService(runner, nil, "", upstreamLogger), httpLogger)

	server := httptest.NewServer(http.HandlerFunc(stream.Serve))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) dto.StreamMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg dto.StreamMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestMarketStream_OneReplyPerMessage(t *testing.T) {
	runner := stdoutRunner(`{"price": 42000}`)
	conn := dialStream(t, runner)

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("get")))
		msg := readFrame(t, conn)

		assert.Equal(t, dto.StreamTypeMarket, msg.Type)
		assert.JSONEq(t, `{"price": 42000}`, string(msg.Data))
		assert.Zero(t, msg.Status)
	}

	assert.Equal(t, 2, runner.calls())
}

func TestMarketStream_ErrorFrame(t *testing.T) {
	runner := &fakeRunner{err: context.DeadlineExceeded}
	conn := dialStream(t, runner)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("get")))
	msg := readFrame(t, conn)

	assert.Equal(t, dto.StreamTypeError, msg.Type)
	assert.Equal(t, http.StatusGatewayTimeout, msg.Status)
	assert.Equal(t, "Timeout calling node index.js --json", msg.Detail)
	assert.Empty(t, msg.Data)
}

func TestMarketStream_ProcessFailureFrame(t *testing.T) {
	runner := &fakeRunner{result: &entities.ProcessResult{ExitCode: 1, Stderr: "network error"}}
	conn := dialStream(t, runner)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("get")))
	msg := readFrame(t, conn)

	assert.Equal(t, dto.StreamTypeError, msg.Type)
	assert.Equal(t, http.StatusInternalServerError, msg.Status)
	assert.Contains(t, msg.Detail, "network error")
}

func TestMarketStream_RejectsPlainHTTP(t *testing.T) {
	httpLogger, upstreamLogger := newTestLoggers(t)
	runner := stdoutRunner(`{}`)
	stream := NewMarketStream(services.NewMarketService(runner, nil, "", upstreamLogger), httpLogger)

	rec := httptest.NewRecorder()
	stream.Serve(rec, httptest.NewRequest(http.MethodGet, "/ws/tbtc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, runner.calls())
}
