package whatsapp

import (
	botTypes "culinary-booking/types/bot"
)

// Inbound webhook payload shapes of the WhatsApp Cloud API.

type webhookPayload struct {
	Object string  `json:"object"`
	Entry  []entry `json:"entry"`
}

type entry struct {
	ID      string   `json:"id"`
	Changes []change `json:"changes"`
}

type change struct {
	Value changeValue `json:"value"`
	Field string      `json:"field"`
}

type changeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Messages         []message `json:"messages,omitempty"`
}

type message struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *textContent `json:"text,omitempty"`
	Interactive *interactive `json:"interactive,omitempty"`
}

type textContent struct {
	Body string `json:"body"`
}

type interactive struct {
	Type        string `json:"type"` // button_reply or list_reply
	ButtonReply *reply `json:"button_reply,omitempty"`
	ListReply   *reply `json:"list_reply,omitempty"`
}

type reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// incomingMessages flattens the nested entry/change structure into the
// channel-agnostic shape the bot engine consumes.
func (p *webhookPayload) incomingMessages() []botTypes.IncomingMessage {
	var out []botTypes.IncomingMessage
	for _, e := range p.Entry {
		for _, ch := range e.Changes {
			for _, msg := range ch.Value.Messages {
				incoming := botTypes.IncomingMessage{
					From: msg.From,
					Type: msg.Type,
				}
				if msg.Text != nil {
					incoming.Text = msg.Text.Body
				}
				if msg.Interactive != nil {
					switch {
					case msg.Interactive.ButtonReply != nil:
						incoming.InteractiveID = msg.Interactive.ButtonReply.ID
						incoming.Text = msg.Interactive.ButtonReply.Title
					case msg.Interactive.ListReply != nil:
						incoming.InteractiveID = msg.Interactive.ListReply.ID
						incoming.Text = msg.Interactive.ListReply.Title
					}
				}
				if incoming.Text == "" && incoming.InteractiveID == "" {
					continue // media and status updates are not conversation input
				}
				out = append(out, incoming)
			}
		}
	}
	return out
}
