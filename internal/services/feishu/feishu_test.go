package feishu_test

import (
	"fmt"
	"testing"
	"time"

	"paperflow/internal/services/feishu"
)

func TestExtractURL(t *testing.T) {
	url, ok := feishu.ExtractURL("please read https://arxiv.org/abs/2401.12345, thanks")
	if !ok || url != "https://arxiv.org/abs/2401.12345" {
		t.Fatalf("unexpected url: %q %v", url, ok)
	}
	if _, ok := feishu.ExtractURL("no link here"); ok {
		t.Fatal("expected no url")
	}
}

func TestParseCallbackChallenge(t *testing.T) {
	cb, err := feishu.ParseCallback([]byte(`{"challenge":"abc","token":"tok","type":"url_verification"}`))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if cb.Challenge != "abc" || cb.Token != "tok" {
		t.Fatalf("unexpected callback: %+v", cb)
	}
}

func TestParseCallbackMessage(t *testing.T) {
	body := `{
		"header": {"token": "tok", "event_type": "im.message.receive_v1"},
		"event": {
			"sender": {"sender_id": {"open_id": "ou_1"}},
			"message": {
				"message_id": "om_1",
				"chat_id": "oc_1",
				"content": "{\"text\":\"check https://arxiv.org/abs/2401.12345\"}"
			}
		}
	}`
	cb, err := feishu.ParseCallback([]byte(body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if cb.MessageID != "om_1" || cb.ChatID != "oc_1" || cb.SenderID != "ou_1" {
		t.Fatalf("unexpected callback: %+v", cb)
	}
	if cb.Text != "check https://arxiv.org/abs/2401.12345" {
		t.Fatalf("unexpected text: %q", cb.Text)
	}
	if cb.Token != "tok" {
		t.Fatalf("expected token from header, got %q", cb.Token)
	}
}

func TestParseCallbackCardActionDoubleEncoded(t *testing.T) {
	body := `{
		"token": "tok",
		"open_message_id": "om_2",
		"open_chat_id": "oc_2",
		"action": {"value": "{\"run_key\":\"abc123\",\"decision\":\"deep_read\"}"}
	}`
	cb, err := feishu.ParseCallback([]byte(body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if cb.CardAction == nil {
		t.Fatal("expected card action")
	}
	if cb.CardAction.RunKey != "abc123" || cb.CardAction.Decision != "deep_read" {
		t.Fatalf("unexpected action: %+v", cb.CardAction)
	}
}

func TestParseCallbackCardActionObject(t *testing.T) {
	body := `{"token":"tok","action":{"value":{"run_key":"def456","decision":"skim"}}}`
	cb, err := feishu.ParseCallback([]byte(body))
	if err != nil {
		t.Fatalf("ParseCallback: %v", err)
	}
	if cb.CardAction == nil || cb.CardAction.RunKey != "def456" {
		t.Fatalf("unexpected action: %+v", cb.CardAction)
	}
}

func TestDeduperSuppressesWithinTTL(t *testing.T) {
	deduper := feishu.NewDeduper()
	if deduper.Seen("om_1") {
		t.Fatal("first delivery should pass")
	}
	if !deduper.Seen("om_1") {
		t.Fatal("second delivery should be suppressed")
	}
	if deduper.Seen("om_2") {
		t.Fatal("different message should pass")
	}
	if deduper.Seen("") {
		t.Fatal("empty id should never be suppressed")
	}
}

func TestDeduperExpiresAfterTTL(t *testing.T) {
	clock := time.Now()
	deduper := feishu.NewDeduperForTest(time.Minute, 8, func() time.Time { return clock })

	if deduper.Seen("om_1") {
		t.Fatal("first delivery should pass")
	}
	clock = clock.Add(30 * time.Second)
	if !deduper.Seen("om_1") {
		t.Fatal("delivery within TTL should be suppressed")
	}
	clock = clock.Add(2 * time.Minute)
	if deduper.Seen("om_1") {
		t.Fatal("delivery after TTL should pass again")
	}
}

func TestDeduperSweepEvictsExpired(t *testing.T) {
	clock := time.Now()
	deduper := feishu.NewDeduperForTest(time.Minute, 8, func() time.Time { return clock })

	for i := 0; i < 8; i++ {
		deduper.Seen(fmt.Sprintf("om_%d", i))
	}
	clock = clock.Add(2 * time.Minute)
	// Crossing the size bound triggers the sweep; expired entries go away
	// so fresh ones keep being tracked correctly.
	for i := 8; i < 12; i++ {
		if deduper.Seen(fmt.Sprintf("om_%d", i)) {
			t.Fatalf("fresh id om_%d should pass", i)
		}
	}
	if !deduper.Seen("om_11") {
		t.Fatal("recent id should be suppressed after sweep")
	}
}
