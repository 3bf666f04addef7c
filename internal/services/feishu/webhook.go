package feishu

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s"<>\\]+`)

// ExtractURL pulls the first http(s) link out of a message text.
func ExtractURL(text string) (string, bool) {
	match := urlPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return strings.TrimRight(match, ".,;)"), true
}

// Callback is the normalized form of an incoming webhook delivery.
type Callback struct {
	// Challenge is non-empty for the URL verification handshake; the
	// handler must echo it back.
	Challenge string
	Token     string
	MessageID string
	ChatID    string
	SenderID  string
	Text      string
	// CardAction is non-nil when the delivery is a decision button press.
	CardAction *CardAction
}

// CardAction is a decision button press on the triage card.
type CardAction struct {
	RunKey   string
	Decision string
	Comment  string
}

type eventEnvelope struct {
	Challenge string `json:"challenge"`
	Token     string `json:"token"`
	Type      string `json:"type"`
	Header    struct {
		Token     string `json:"token"`
		EventType string `json:"event_type"`
	} `json:"header"`
	Event struct {
		Sender struct {
			SenderID struct {
				OpenID string `json:"open_id"`
			} `json:"sender_id"`
		} `json:"sender"`
		Message struct {
			MessageID string `json:"message_id"`
			ChatID    string `json:"chat_id"`
			Content   string `json:"content"`
		} `json:"message"`
	} `json:"event"`
	Action *struct {
		Value json.RawMessage `json:"value"`
	} `json:"action"`
	OpenMessageID string `json:"open_message_id"`
	OpenChatID    string `json:"open_chat_id"`
}

// ParseCallback decodes a webhook delivery into its normalized form.
func ParseCallback(body []byte) (Callback, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Callback{}, fmt.Errorf("feishu callback: decode body: %w", err)
	}

	cb := Callback{
		Challenge: envelope.Challenge,
		Token:     envelope.Token,
	}
	if cb.Token == "" {
		cb.Token = envelope.Header.Token
	}
	if cb.Challenge != "" {
		return cb, nil
	}

	if envelope.Action != nil {
		action, err := parseCardAction(envelope.Action.Value)
		if err != nil {
			return Callback{}, err
		}
		cb.CardAction = &action
		cb.MessageID = envelope.OpenMessageID
		cb.ChatID = envelope.OpenChatID
		return cb, nil
	}

	cb.MessageID = envelope.Event.Message.MessageID
	cb.ChatID = envelope.Event.Message.ChatID
	cb.SenderID = envelope.Event.Sender.SenderID.OpenID
	cb.Text = messageText(envelope.Event.Message.Content)
	return cb, nil
}

// Card action values arrive either as an object or as a JSON string
// wrapping one, depending on the delivery path.
func parseCardAction(raw json.RawMessage) (CardAction, error) {
	var value struct {
		RunKey   string `json:"run_key"`
		Decision string `json:"decision"`
		Comment  string `json:"comment"`
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		var encoded string
		if strErr := json.Unmarshal(raw, &encoded); strErr != nil {
			return CardAction{}, fmt.Errorf("feishu callback: decode action value: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &value); err != nil {
			return CardAction{}, fmt.Errorf("feishu callback: decode nested action value: %w", err)
		}
	}
	if value.RunKey == "" {
		return CardAction{}, fmt.Errorf("feishu callback: action value missing run_key")
	}
	return CardAction{
		RunKey:   value.RunKey,
		Decision: value.Decision,
		Comment:  value.Comment,
	}, nil
}

func messageText(content string) string {
	if content == "" {
		return ""
	}
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(parsed.Text)
}
