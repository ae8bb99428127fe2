package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/GameNest/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

var ErrChatUserNotFound = NewError(ErrUnauthenticated, "user not found")

// ChatGate decides whether a realtime connection may join.
type ChatGate struct {
	db      *goqu.Database
	tokens  *TokenService
	timeout time.Duration
	metrics *Metrics
}

func NewChatGate(db *goqu.Database, tokens *TokenService, timeout time.Duration, metrics *Metrics) *ChatGate {
	return &ChatGate{db: db, tokens: tokens, timeout: timeout, metrics: metrics}
}

// Admit verifies credential and confirms the user still exists. The returned
// user is the session state of the connection.
func (g *ChatGate) Admit(ctx context.Context, credential string) (models.ChatUser, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		g.metrics.ChatRejected("no_credential")
		return models.ChatUser{}, ErrNoCredential
	}

	principal, err := g.tokens.Verify(credential)
	if err != nil {
		g.metrics.ChatRejected("invalid_credential")
		return models.ChatUser{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var user models.ChatUser
	found, err := g.db.From("users").
		Select("id", "user_nickname").
		Where(goqu.C("id").Eq(principal.ID)).
		ScanStructContext(ctx, &user)
	if err != nil {
		g.metrics.ChatRejected("storage")
		return models.ChatUser{}, storageError("load chat user", err)
	}
	if !found {
		g.metrics.ChatRejected("unknown_user")
		return models.ChatUser{}, ErrChatUserNotFound
	}
	return user, nil
}

// ChatClient is one joined connection. Its outbox is closed when it leaves.
type ChatClient struct {
	ID   string
	User models.ChatUser
	send chan []byte
}

func (c *ChatClient) Outbox() <-chan []byte {
	return c.send
}

// ChatHub fans messages out to every joined connection. Delivery never
// blocks: a connection whose queue is full misses that message.
type ChatHub struct {
	mu      sync.RWMutex
	clients map[*ChatClient]struct{}
	buffer  int
	metrics *Metrics
}

func NewChatHub(buffer int, metrics *Metrics) *ChatHub {
	return &ChatHub{
		clients: make(map[*ChatClient]struct{}),
		buffer:  buffer,
		metrics: metrics,
	}
}

func (h *ChatHub) Join(user models.ChatUser) *ChatClient {
	c := &ChatClient{
		ID:   uuid.NewString(),
		User: user,
		send: make(chan []byte, h.buffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.chatJoined()
	log.Printf("Chat user joined: %s (%s)", user.Nickname, c.ID)
	return c
}

// Leave is idempotent.
func (h *ChatHub) Leave(c *ChatClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.chatLeft()
		log.Printf("Chat user left: %s (%s)", c.User.Nickname, c.ID)
	}
}

// Broadcast queues payload for every joined connection and returns how many
// accepted it.
func (h *ChatHub) Broadcast(payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients {
		select {
		case c.send <- payload:
			delivered++
		default:
			h.metrics.chatDropped()
			log.Printf("Chat queue full, dropping message for %s (%s)", c.User.Nickname, c.ID)
		}
	}
	return delivered
}

func (h *ChatHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type ChatService struct {
	db      *goqu.Database
	hub     *ChatHub
	timeout time.Duration
	metrics *Metrics
	now     func() time.Time
}

func NewChatService(db *goqu.Database, hub *ChatHub, timeout time.Duration, metrics *Metrics) *ChatService {
	return &ChatService{db: db, hub: hub, timeout: timeout, metrics: metrics, now: time.Now}
}

// Post persists a message from user and broadcasts it to every joined
// connection. Blank messages are rejected before touching storage.
func (s *ChatService) Post(ctx context.Context, user models.ChatUser, text string) (models.ChatOutbound, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatOutbound{}, ErrEmptyContent
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	date := s.now().UTC()
	_, err := s.db.Insert("chat_messages").
		Rows(goqu.Record{"user_id": user.ID, "text": text, "date": date}).
		Executor().ExecContext(ctx)
	if err != nil {
		return models.ChatOutbound{}, storageError("insert chat message", err)
	}

	out := models.ChatOutbound{
		User_ID: user.ID,
		User:    user.Nickname,
		Text:    text,
		Date:    date.Format(time.RFC3339Nano),
	}
	frame, err := EncodeChatFrame(models.ChatMessageEvent, out)
	if err != nil {
		return out, err
	}
	s.hub.Broadcast(frame)
	s.metrics.chatMessage()
	return out, nil
}

// History returns every stored message, oldest first.
func (s *ChatService) History(ctx context.Context) ([]models.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []models.ChatMessage{}
	err := s.db.From(goqu.T("chat_messages").As("cm")).
		Select(
			goqu.I("cm.id"),
			goqu.I("cm.user_id"),
			goqu.I("u.user_nickname").As("user"),
			goqu.I("cm.text"),
			goqu.I("cm.date"),
		).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("cm.user_id").Eq(goqu.I("u.id")))).
		Order(goqu.I("cm.date").Asc(), goqu.I("cm.id").Asc()).
		ScanStructsContext(ctx, &messages)
	if err != nil {
		return nil, storageError("list chat messages", err)
	}
	return messages, nil
}

func EncodeChatFrame(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(models.ChatFrame{Event: event, Data: raw})
}

// DecodeChatMessage extracts the text of an inbound chat message frame.
func DecodeChatMessage(frame []byte) (string, error) {
	var f models.ChatFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return "", NewError(ErrValidation, "malformed frame")
	}
	if f.Event != models.ChatMessageEvent {
		return "", NewError(ErrValidation, "unknown event")
	}
	var in models.ChatInbound
	if err := json.Unmarshal(f.Data, &in); err != nil {
		return "", NewError(ErrValidation, "malformed chat message")
	}
	return in.Text, nil
}
