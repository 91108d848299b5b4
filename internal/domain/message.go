package domain

// IncomingMessage is built per request from a platform payload and discarded
// once the reply is sent.
type IncomingMessage struct {
	ChatID     int64
	Text       string
	SenderName string
}

// ConversationRecord is one persisted exchange. Records are append-only.
type ConversationRecord struct {
	ChatID    string
	Message   string
	Response  string
	Timestamp int64 // epoch milliseconds
}
