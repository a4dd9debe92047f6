package yophone

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// Result is the decoded JSON reply of endpoints without a documented schema.
// An empty reply body yields a nil Result.
type Result map[string]any

// Data returns the "data" member of the reply, if present.
func (r Result) Data() (any, bool) {
	v, ok := r["data"]
	return v, ok
}

// Sender identifies who wrote an incoming message.
type Sender struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// UnmarshalJSON accepts the sender id as a JSON string or number.
func (s *Sender) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        flexString `json:"id"`
		FirstName string     `json:"firstName"`
		LastName  string     `json:"lastName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Sender{ID: string(raw.ID), FirstName: raw.FirstName, LastName: raw.LastName}
	return nil
}

// FullName joins first and last name.
func (s Sender) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Update is an incoming event as delivered by getUpdates or a webhook.
// Text is base64-encoded on the wire.
type Update struct {
	ID     string `json:"id"`
	BotID  string `json:"botId"`
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// UnmarshalJSON accepts ids as JSON strings or numbers.
func (u *Update) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     flexString `json:"id"`
		BotID  flexString `json:"botId"`
		ChatID flexString `json:"chatId"`
		Text   string     `json:"text"`
		Sender Sender     `json:"sender"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = Update{
		ID:     string(raw.ID),
		BotID:  string(raw.BotID),
		ChatID: string(raw.ChatID),
		Text:   raw.Text,
		Sender: raw.Sender,
	}
	return nil
}

// flexString decodes a JSON string or number into its string form.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Message is a parsed Update with its text decoded.
type Message struct {
	UpdateID string
	BotID    string
	ChatID   string
	Text     string
	Sender   Sender
}

// ParseUpdate decodes u into a Message. Text that is not base64-encoded UTF-8
// is kept as received.
func ParseUpdate(u Update) Message {
	return Message{
		UpdateID: u.ID,
		BotID:    u.BotID,
		ChatID:   u.ChatID,
		Text:     decodeText(u.Text),
		Sender:   u.Sender,
	}
}

func decodeText(s string) string {
	if s == "" {
		return ""
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding} {
		if decoded, err := enc.DecodeString(s); err == nil && utf8.Valid(decoded) {
			return string(decoded)
		}
	}
	return s
}

// Command returns the leading "/command" token of the text, or "" when the
// message is not a command.
func (m Message) Command() string {
	if !strings.HasPrefix(m.Text, "/") {
		return ""
	}
	fields := strings.Fields(m.Text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Args returns the text following the command token.
func (m Message) Args() string {
	cmd := m.Command()
	if cmd == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m.Text), cmd))
}

// ReplyOption is a reply option shown under a message.
type ReplyOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InlineButton is a button that opens a URL.
type InlineButton struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Buttons lays out options and inline buttons in a grid.
type Buttons struct {
	// Grid is the number of columns. Zero selects one column.
	Grid          int            `json:"grid"`
	Options       []ReplyOption  `json:"options"`
	InlineButtons []InlineButton `json:"inline_buttons"`
}

// Command is a bot command advertised to users.
type Command struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// CommandName returns name as setCommands expects it: trimmed and without
// the leading slash.
func CommandName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "/")
}
