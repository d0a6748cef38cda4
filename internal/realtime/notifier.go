package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const notifyChannel = "jobportal:notifications"

// Event is a user-addressed notification fanned out over the hub.
type Event struct {
	UserID  uuid.UUID   `json:"userId"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier routes events to websocket clients. With Redis configured,
// events travel through pub/sub so every instance delivers to its own
// connections; without it, delivery is in-process only. Always best-effort:
// a lost notification never fails the request that produced it.
type Notifier struct {
	Hub *Hub
	RDB *redis.Client
}

func NewNotifier(hub *Hub, rdb *redis.Client) *Notifier {
	return &Notifier{Hub: hub, RDB: rdb}
}

func (n *Notifier) Notify(userID uuid.UUID, eventType string, payload interface{}) {
	ev := Event{UserID: userID, Type: eventType, Payload: payload}

	if n.RDB == nil {
		n.deliver(ev)
		return
	}

	b, err := json.Marshal(ev)
	if err != nil {
		log.Errorf("marshaling notification event: %v", err)
		return
	}
	if err := n.RDB.Publish(context.Background(), notifyChannel, b).Err(); err != nil {
		log.Errorf("publishing notification: %v", err)
		n.deliver(ev)
	}
}

// Run subscribes to the notification channel and forwards events to the
// local hub. Blocks; run in a goroutine.
func (n *Notifier) Run(ctx context.Context) {
	if n.RDB == nil {
		return
	}

	sub := n.RDB.Subscribe(ctx, notifyChannel)
	defer sub.Close()

	for msg := range sub.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Errorf("decoding notification event: %v", err)
			continue
		}
		n.deliver(ev)
	}
}

func (n *Notifier) deliver(ev Event) {
	n.Hub.SendToUser(ev.UserID, map[string]interface{}{
		"type":    ev.Type,
		"payload": ev.Payload,
	})
}
