// internal/browser/protocol.go
package browser

import (
	"errors"
	"fmt"

	json "github.com/json-iterator/go"
)

var (
	// ErrBadMessage is returned for payloads that do not decode.
	ErrBadMessage = errors.New("browser: malformed page message")
	// ErrUnknownMessage is returned for message types the host does not handle.
	ErrUnknownMessage = errors.New("browser: unknown page message")
)

// Message types sent by the bridge.
const (
	msgReady      = "ready"
	msgScroll     = "scroll"
	msgResize     = "resize"
	msgLayout     = "layout"
	msgVisibility = "visibility"
	msgAnchor     = "anchor"
)

// allGrids addresses every container in a resize message.
const allGrids = -1

// message is one report from the page. Every message carries a fresh layout
// snapshot.
type message struct {
	Type    string   `json:"type"`
	Grid    int      `json:"grid"`
	Visible bool     `json:"visible"`
	Anchor  string   `json:"anchor"`
	Layout  snapshot `json:"layout"`
}

type snapshot struct {
	ScrollY        float64        `json:"scrollY"`
	ViewportWidth  float64        `json:"viewportWidth"`
	ViewportHeight float64        `json:"viewportHeight"`
	Containers     []containerBox `json:"containers"`
}

type containerBox struct {
	Top   float64 `json:"top"`
	Width float64 `json:"width"`
}

func decodeMessage(payload []byte) (message, error) {
	var m message
	if err := json.Unmarshal(payload, &m); err != nil {
		return message{}, fmt.Errorf("%w: %w", ErrBadMessage, err)
	}
	if m.Type == "" {
		return message{}, fmt.Errorf("%w: missing type", ErrBadMessage)
	}
	return m, nil
}

// call renders a bridge method call with JSON encoded arguments.
func call(method string, args ...any) (string, error) {
	buf := []byte("window.vgrid." + method + "(")
	for i, a := range args {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		raw, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s argument %d: %w", method, i, err)
		}
		buf = append(buf, raw...)
	}
	return string(append(buf, ')')), nil
}
