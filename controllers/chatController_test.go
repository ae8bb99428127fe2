package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GameNest/models"
	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	server *httptest.Server
	mock   sqlmock.Sqlmock
	tokens *services.TokenService
	hub    *services.ChatHub
}

func newChatFixture(t *testing.T, allowedOrigins []string) *chatFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, mock := SetupTestDB(t)
	mock.MatchExpectationsInOrder(false)
	tokens := NewTestTokens()
	metrics := services.NewMetrics(prometheus.NewRegistry())
	hub := services.NewChatHub(8, metrics)
	chat := NewChatController(
		services.NewChatGate(db, tokens, testTimeout, metrics),
		hub,
		services.NewChatService(db, hub, testTimeout, metrics),
		allowedOrigins,
	)

	router := gin.New()
	router.GET("/chat/ws", chat.Connect)
	router.GET("/chat/messages", chat.History)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &chatFixture{server: server, mock: mock, tokens: tokens, hub: hub}
}

func (f *chatFixture) wsURL(token string) string {
	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/chat/ws"
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u
}

func (f *chatFixture) expectUser(user models.User) {
	f.mock.ExpectQuery(`SELECT "id", "user_nickname" FROM "users" WHERE \("id" = ` + strconv.FormatInt(user.ID, 10) + `\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_nickname"}).AddRow(user.ID, user.User_Nickname))
}

func (f *chatFixture) dial(t *testing.T, user models.User) *websocket.Conn {
	t.Helper()
	token, err := f.tokens.Issue(user)
	require.NoError(t, err)
	conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL(token), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *chatFixture) waitForClients(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.hub.Len() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestChatController_RejectsBeforeUpgrade(t *testing.T) {
	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "no credential", token: "", expectedStatus: http.StatusUnauthorized},
		{name: "forged credential", token: "not-a-jwt", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t, nil)

			conn, resp, err := websocket.DefaultDialer.Dial(f.wsURL(tt.token), nil)
			if conn != nil {
				conn.Close()
			}
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, 0, f.hub.Len())
		})
	}
}

func TestChatController_RejectsDeletedUser(t *testing.T) {
	f := newChatFixture(t, nil)
	f.mock.ExpectQuery(`SELECT "id", "user_nickname" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_nickname"}))

	token, err := f.tokens.Issue(MockUser())
	require.NoError(t, err)
	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(token), nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, f.hub.Len())
}

func TestChatController_RejectsForeignOrigin(t *testing.T) {
	f := newChatFixture(t, []string{"https://gamenest.example"})
	f.expectUser(MockUser())

	token, err := f.tokens.Issue(MockUser())
	require.NoError(t, err)
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(f.wsURL(token), header)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChatController_BroadcastsToJoinedClients(t *testing.T) {
	f := newChatFixture(t, nil)
	alice, bob := MockUser(), MockOtherUser()

	f.expectUser(alice)
	f.expectUser(bob)
	f.mock.ExpectExec(`INSERT INTO "chat_messages" \("date", "text", "user_id"\) VALUES \('.*', 'hello nest', 1\)`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	aliceConn := f.dial(t, alice)
	bobConn := f.dial(t, bob)
	f.waitForClients(t, 2)

	// blank messages are dropped without a write
	require.NoError(t, aliceConn.WriteJSON(gin.H{"event": models.ChatMessageEvent, "data": gin.H{"text": "   "}}))
	require.NoError(t, aliceConn.WriteJSON(gin.H{"event": models.ChatMessageEvent, "data": gin.H{"text": "hello nest"}}))

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var frame struct {
			Event string              `json:"event"`
			Data  models.ChatOutbound `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, models.ChatMessageEvent, frame.Event)
		assert.Equal(t, "hello nest", frame.Data.Text)
		assert.Equal(t, alice.ID, frame.Data.User_ID)
		assert.Equal(t, alice.User_Nickname, frame.Data.User)
	}

	require.NoError(t, bobConn.Close())
	f.waitForClients(t, 1)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestChatController_History(t *testing.T) {
	f := newChatFixture(t, nil)
	f.mock.ExpectQuery(`SELECT .* FROM "chat_messages" AS "cm" INNER JOIN "users" AS "u" .* ORDER BY "cm"."date" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "user", "text", "date"}).
			AddRow(1, 1, "tester", "gg", time.Now()))

	resp, err := http.Get(f.server.URL + "/chat/messages")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []models.ChatMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "gg", messages[0].Text)
}
