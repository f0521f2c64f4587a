package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) String() string {
	return string(r)
}

// UnmarshalText accepts any letter case so histories written as
// "User" or "Assistant" still load.
func (r *Role) UnmarshalText(text []byte) error {
	switch Role(strings.ToLower(strings.TrimSpace(string(text)))) {
	case RoleSystem:
		*r = RoleSystem
	case RoleUser:
		*r = RoleUser
	case RoleAssistant:
		*r = RoleAssistant
	default:
		return fmt.Errorf("unknown role %q", string(text))
	}
	return nil
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r), nil
}

// StoredMessage is one persisted half of a conversation turn.
type StoredMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
	Role     Role   `json:"role"`
}

// RequestMessage is one inbound turn. Context is filled by the memory
// stage and Embedding by the embedding stage; capabilities only read them.
type RequestMessage struct {
	ID        string
	Text      string
	Username  string
	Context   []StoredMessage
	Embedding []float32
}

func NewRequest(text, username string) *RequestMessage {
	return &RequestMessage{
		Text:     text,
		Username: username,
	}
}

// ResponseMessage is one outbound result. At most one of Bytes and
// Options is set; when Bytes is set, Text is the file name.
type ResponseMessage struct {
	Text    string
	Bytes   []byte
	Options []string
}

func NewTextResponse(text string) ResponseMessage {
	return ResponseMessage{Text: text}
}

func NewFileResponse(filename string, data []byte) ResponseMessage {
	return ResponseMessage{Text: filename, Bytes: data}
}

func NewOptionsResponse(text string, options []string) ResponseMessage {
	return ResponseMessage{Text: text, Options: append([]string(nil), options...)}
}

func (r ResponseMessage) IsFile() bool {
	return r.Bytes != nil
}

func (r ResponseMessage) HasOptions() bool {
	return r.Bytes == nil && len(r.Options) > 0
}
