package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// WAMP 1.0 message types used by the local event socket.
const (
	opSubscribe = 5
	opEvent     = 8
)

// AllEvents subscribes to every JSON API change.
const AllEvents = "OnJsonApiEvent"

// Event is one published frame from the event socket.
type Event struct {
	Topic string          `json:"-"`
	URI   string          `json:"uri"`
	Type  string          `json:"eventType"`
	Data  json.RawMessage `json:"data"`
}

// DialEvents opens the local event websocket.
func DialEvents(ctx context.Context, d lockfile.Descriptor) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		TLSClientConfig:  localTLSConfig(),
		Subprotocols:     []string{"wamp"},
	}

	headers := http.Header{}
	headers.Set("Authorization", d.AuthorizationHeader())

	conn, resp, err := dialer.DialContext(ctx, d.WebSocketURL(), headers)
	if err != nil {
		if resp != nil {
			return nil, errors.Errorf("event socket refused (HTTP %d)", resp.StatusCode)
		}
		return nil, errors.Wrap(err, "event socket dial failed")
	}

	conn.SetReadLimit(maxResponseSize)

	return conn, nil
}

// Subscribe asks the client to publish topic on conn.
func Subscribe(conn *websocket.Conn, topic string) error {
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON([]any{opSubscribe, topic}); err != nil {
		return errors.Wrapf(err, "subscribe %s", topic)
	}
	conn.SetWriteDeadline(time.Time{})
	return nil
}

// ReadEvent blocks until the next published event. Frames that are not
// events are skipped.
func ReadEvent(conn *websocket.Conn) (Event, error) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return Event{}, errors.Wrap(err, "read event")
		}

		ev, ok := decodeEvent(data)
		if ok {
			return ev, nil
		}
	}
}

func decodeEvent(data []byte) (Event, bool) {
	var frame []json.RawMessage
	if err := json.Unmarshal(data, &frame); err != nil || len(frame) < 3 {
		return Event{}, false
	}

	var op int
	if err := json.Unmarshal(frame[0], &op); err != nil || op != opEvent {
		return Event{}, false
	}

	var ev Event
	if err := json.Unmarshal(frame[1], &ev.Topic); err != nil {
		return Event{}, false
	}
	if err := json.Unmarshal(frame[2], &ev); err != nil {
		return Event{}, false
	}
	return ev, true
}
