package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blog-planner-go/internal/service"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHTTPTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping websocket test: local listener unavailable (%v)", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

type frame struct {
	Type    string                 `json:"type"`
	Message interface{}            `json:"message"`
	Plan    map[string]interface{} `json:"plan"`
	Status  string                 `json:"status"`
}

func dial(t *testing.T, srv *httptest.Server, tok string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/" + tok
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestWebSocket_MessageFlow(t *testing.T) {
	env := newTestEnv(t)
	srv := newHTTPTestServer(t, env.router)
	defer srv.Close()

	conn := dial(t, srv, env.userToken)
	defer conn.Close()

	lines := []string{"Hi", "I want to blog about street food"}
	var last []frame
	for _, line := range lines {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(line)))
		last = []frame{readFrame(t, conn), readFrame(t, conn), readFrame(t, conn)}
	}

	assert.Equal(t, "message", last[0].Type)
	msg, ok := last[0].Message.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "assistant", msg["role"])

	assert.Equal(t, "plan", last[1].Type)
	assert.Equal(t, "street food", last[1].Plan["title"])

	assert.Equal(t, "completion", last[2].Type)
	assert.Equal(t, "finished", last[2].Status)
}

func TestWebSocket_StopCancelsReply(t *testing.T) {
	env := newTestEnv(t)
	env.chat.hold = make(chan struct{})
	srv := newHTTPTestServer(t, env.router)
	defer srv.Close()

	conn := dial(t, srv, env.userToken)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("Hi")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"stop"}`)))

	// stop 确认与被取消请求的 error 帧来自不同 goroutine，先后不定
	var types []string
	for i := 0; i < 3; i++ {
		types = append(types, readFrame(t, conn).Type)
	}
	assert.ElementsMatch(t, []string{"stop", "error", "completion"}, types)
	assert.Less(t, indexOf(types, "error"), indexOf(types, "completion"))
}

func TestWebSocket_RejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	srv := newHTTPTestServer(t, env.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/not-a-token"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIsStopFrame(t *testing.T) {
	assert.True(t, isStopFrame([]byte(`{"type":"stop"}`)))
	assert.False(t, isStopFrame([]byte(`{"type":"message"}`)))
	assert.False(t, isStopFrame([]byte(`stop`)))
	assert.False(t, isStopFrame(nil))
}

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}

func TestChatErrorStatus(t *testing.T) {
	cases := map[error]int{
		service.ErrEmptyMessage:                           http.StatusBadRequest,
		service.ErrAssistantResponding:                    http.StatusConflict,
		context.Canceled:                                  http.StatusRequestTimeout,
		fmt.Errorf("reply: %w", context.DeadlineExceeded): http.StatusGatewayTimeout,
		errors.New("store down"):                          http.StatusInternalServerError,
	}
	for err, want := range cases {
		status, _ := chatErrorStatus(err)
		assert.Equal(t, want, status, err.Error())
	}
}
