package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHubDeliversOnlyToTargetUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	target := uuid.New()
	other := uuid.New()

	targetClient := &Client{ID: "c1", UserID: target, Send: make(chan []byte, 4)}
	otherClient := &Client{ID: "c2", UserID: other, Send: make(chan []byte, 4)}
	hub.RegisterClient(targetClient)
	hub.RegisterClient(otherClient)
	time.Sleep(20 * time.Millisecond) // let Run process the registrations

	hub.SendToUser(target, map[string]string{"type": "application_received"})

	select {
	case raw := <-targetClient.Send:
		var got map[string]string
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decoding delivered payload: %v", err)
		}
		if got["type"] != "application_received" {
			t.Fatalf("unexpected payload: %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("target client never received the event")
	}

	select {
	case raw := <-otherClient.Send:
		t.Fatalf("other user received %s", raw)
	default:
	}
}

func TestNotifierWithoutRedisDeliversInProcess(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	user := uuid.New()
	client := &Client{ID: "c1", UserID: user, Send: make(chan []byte, 4)}
	hub.RegisterClient(client)
	time.Sleep(20 * time.Millisecond)

	n := NewNotifier(hub, nil)
	n.Notify(user, "application_status", map[string]string{"status": "accepted"})

	select {
	case raw := <-client.Send:
		var got struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if got.Type != "application_status" || got.Payload["status"] != "accepted" {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{ID: "c1", UserID: uuid.New(), Send: make(chan []byte, 1)}
	hub.RegisterClient(client)
	hub.UnregisterClient(client)

	select {
	case _, open := <-client.Send:
		if open {
			t.Fatal("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
}
