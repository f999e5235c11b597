package websocket

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// queued drains whatever the client has queued without touching the connection
func queued(c *Client) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-c.send:
			out = append(out, data)
		default:
			return out
		}
	}
}

func snapshotSource(version int) SnapshotSource {
	return func() (Event, error) {
		return SnapshotUpdated(map[string]int{"version": version}), nil
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"type":"snapshot.request"}`))
	require.NoError(t, err)
	assert.Equal(t, RequestSnapshot, req.Type)

	_, err = ParseRequest([]byte(`{"type":"expense.delete"}`))
	assert.ErrorIs(t, err, ErrUnknownRequest)

	_, err = ParseRequest([]byte(`not json`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownRequest)
}

func TestClient_SnapshotRequest(t *testing.T) {
	client := NewClient(nil, "user-1", NewHub(), snapshotSource(3))

	client.handleRequest([]byte(`{"type":"snapshot.request"}`))

	messages := queued(client)
	require.Len(t, messages, 1)
	var event struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(messages[0], &event))
	assert.Equal(t, "snapshot.updated", event.Type)
	assert.Equal(t, 3, event.Payload["version"])
}

func TestClient_IgnoresUnknownAndMalformedRequests(t *testing.T) {
	client := NewClient(nil, "user-1", NewHub(), snapshotSource(1))

	client.handleRequest([]byte(`{"type":"budget.set"}`))
	client.handleRequest([]byte(`{`))

	assert.Empty(t, queued(client))
}

func TestClient_SendSnapshot(t *testing.T) {
	noSource := NewClient(nil, "user-1", NewHub(), nil)
	assert.NoError(t, noSource.SendSnapshot())
	assert.Empty(t, queued(noSource))

	noSession := errors.New("no active session")
	failing := NewClient(nil, "user-1", NewHub(), func() (Event, error) {
		return Event{}, noSession
	})
	assert.ErrorIs(t, failing.SendSnapshot(), noSession)
	assert.Empty(t, queued(failing))

	client := NewClient(nil, "user-1", NewHub(), snapshotSource(2))
	require.NoError(t, client.SendSnapshot())
	assert.Len(t, queued(client), 1)
}

func TestClient_SendFullQueue(t *testing.T) {
	client := NewClient(nil, "user-1", NewHub(), nil)

	for i := 0; i < sendBufferSize; i++ {
		require.NoError(t, client.Send([]byte("x")))
	}

	assert.ErrorIs(t, client.Send([]byte("x")), ErrClientClosed)
}
