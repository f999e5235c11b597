package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RequestType names a message a subscriber may send to the server
type RequestType string

// RequestSnapshot asks for the current session snapshot
const RequestSnapshot RequestType = "snapshot.request"

// ErrUnknownRequest is returned for a well-formed request the server does not serve
var ErrUnknownRequest = errors.New("unknown request type")

// Request is one inbound subscriber message
type Request struct {
	Type RequestType `json:"type"`
}

// ParseRequest decodes an inbound text frame
func ParseRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}

	switch req.Type {
	case RequestSnapshot:
		return req, nil
	default:
		return Request{}, fmt.Errorf("%w: %q", ErrUnknownRequest, req.Type)
	}
}
