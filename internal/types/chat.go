package types

// ChatMessage is one turn of a chat conversation as sent by the client.
type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}
