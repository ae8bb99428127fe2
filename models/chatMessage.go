package models

import (
	"encoding/json"
	"time"
)

const ChatMessageEvent = "chat message"

type ChatMessage struct {
	ID      int64     `json:"id" db:"id"`
	User_ID int64     `json:"user_id" db:"user_id"`
	User    string    `json:"user" db:"user"`
	Text    string    `json:"text" db:"text"`
	Date    time.Time `json:"date" db:"date"`
}

// ChatUser is the session state attached to an admitted connection.
type ChatUser struct {
	ID       int64  `json:"id" db:"id"`
	Nickname string `json:"nickname" db:"user_nickname"`
}

// ChatFrame is the envelope for every websocket frame in both directions.
type ChatFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ChatInbound struct {
	Text string `json:"text"`
}

type ChatOutbound struct {
	User_ID int64  `json:"user_id"`
	User    string `json:"user"`
	Text    string `json:"text"`
	Date    string `json:"date"`
}
