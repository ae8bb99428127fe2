package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/GameNest/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	chatWriteWait      = 10 * time.Second
	chatPongWait       = 60 * time.Second
	chatPingPeriod     = (chatPongWait * 9) / 10
	chatMaxMessageSize = 4096
)

type ChatController struct {
	gate     *services.ChatGate
	hub      *services.ChatHub
	chat     *services.ChatService
	upgrader websocket.Upgrader
}

// NewChatController accepts websocket upgrades from allowedOrigins. An empty
// list allows any origin, and requests without an Origin header always pass.
func NewChatController(gate *services.ChatGate, hub *services.ChatHub, chat *services.ChatService, allowedOrigins []string) *ChatController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &ChatController{
		gate: gate,
		hub:  hub,
		chat: chat,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// chatCredential reads the token from the query string, falling back to a
// bearer Authorization header.
func chatCredential(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Connect admits the caller before upgrading, so a rejected connection never
// joins the hub.
func (cc *ChatController) Connect(c *gin.Context) {
	user, err := cc.gate.Admit(c.Request.Context(), chatCredential(c))
	if err != nil {
		if !errors.Is(err, services.ErrStorage) {
			log.Printf("Chat connection rejected from %s: %v", c.ClientIP(), err)
		}
		respondError(c, err)
		return
	}

	conn, err := cc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Chat upgrade failed for user %d: %v", user.ID, err)
		return
	}

	client := cc.hub.Join(user)
	go cc.writeLoop(conn, client)
	cc.readLoop(c, conn, client)
}

func (cc *ChatController) readLoop(c *gin.Context, conn *websocket.Conn, client *services.ChatClient) {
	defer func() {
		cc.hub.Leave(client)
		conn.Close()
	}()

	conn.SetReadLimit(chatMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(chatPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatPongWait))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Chat read error for %s: %v", client.ID, err)
			}
			return
		}

		text, err := services.DecodeChatMessage(frame)
		if err != nil {
			log.Printf("Chat frame ignored from %s: %v", client.ID, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		if _, err := cc.chat.Post(c.Request.Context(), client.User, text); err != nil {
			log.Printf("Chat message from user %d not saved: %v", client.User.ID, err)
		}
	}
}

// writeLoop drains the client's outbox until the hub closes it.
func (cc *ChatController) writeLoop(conn *websocket.Conn, client *services.ChatClient) {
	ticker := time.NewTicker(chatPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-client.Outbox():
			conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("Chat write error for %s: %v", client.ID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// History returns every stored chat message, oldest first.
func (cc *ChatController) History(c *gin.Context) {
	messages, err := cc.chat.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
