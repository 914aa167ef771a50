package server

import (
	"encoding/json"

	"github.com/vango-dev/payment-frontend/internal/errors"
)

// Frame types.
const (
	frameEvent  = "event"
	frameRender = "render"
	frameError  = "error"
)

// clientFrame is sent by the thin client.
type clientFrame struct {
	Type  string `json:"type"`
	HID   string `json:"hid"`
	Event string `json:"event"`
}

// serverFrame is sent to the thin client.
type serverFrame struct {
	Type    string `json:"type"`
	HTML    string `json:"html,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func decodeClientFrame(msg []byte) (clientFrame, error) {
	var f clientFrame
	if err := json.Unmarshal(msg, &f); err != nil {
		return f, errors.New("E031").Wrap(err)
	}
	if f.Type != frameEvent {
		return f, errors.New("E031").WithDetailf("unknown frame type %q", f.Type)
	}
	if f.HID == "" || f.Event == "" {
		return f, errors.New("E031").WithDetail("event frames need hid and event")
	}
	return f, nil
}

func renderFrame(html string) serverFrame {
	return serverFrame{Type: frameRender, HTML: html}
}

func errorFrame(err error) serverFrame {
	return serverFrame{Type: frameError, Code: errors.Code(err), Message: err.Error()}
}
