package chat

type Who string

const (
	User Who = "user"
	Bot  Who = "bot"
)

// Message is the persisted unit of a conversation.
type Message struct {
	Who  Who    `json:"who"`
	Text string `json:"text"`
}

// Entry is what a Transcript renders. Placeholder entries are never stored.
type Entry struct {
	ID          string
	Message     Message
	Placeholder bool
}
