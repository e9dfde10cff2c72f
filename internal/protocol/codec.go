package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/rally/internal/core"
)

var (
	// ErrMalformed is returned for payloads that are not a valid message object.
	ErrMalformed = errors.New("protocol: malformed message")
	// ErrUnknownType is returned for a well-formed message with an unrecognised type.
	ErrUnknownType = errors.New("protocol: unknown message type")
)

// Envelope is a decoded inbound message plus routing fields.
type Envelope struct {
	Type    Type
	GameID  core.ID // empty when the server did not scope the message
	Message Message
}

type header struct {
	Type   Type    `json:"type"`
	GameID core.ID `json:"game_id"`
}

// Decode parses one inbound frame.
func Decode(data []byte) (Envelope, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if h.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	msg, err := newMessage(h.Type)
	if err != nil {
		return Envelope{Type: h.Type, GameID: h.GameID}, err
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return Envelope{Type: h.Type, GameID: h.GameID}, fmt.Errorf("%w: %s: %v", ErrMalformed, h.Type, err)
	}

	return Envelope{
		Type:    h.Type,
		GameID:  h.GameID,
		Message: deref(msg),
	}, nil
}

// newMessage returns a pointer to a zero value of the variant for t.
func newMessage(t Type) (any, error) {
	switch t {
	case TypeInit:
		return &Init{}, nil
	case TypeMouseMove:
		return &MouseMove{}, nil
	case TypeBallPosition:
		return &BallPosition{}, nil
	case TypeScoreUpdate:
		return &ScoreUpdate{}, nil
	case TypeGameWon:
		return &GameWon{}, nil
	case TypeMatchComplete:
		return &MatchComplete{}, nil
	case TypePlayerInput:
		return &PlayerInput{}, nil
	case TypeGameState:
		return &GameState{}, nil
	case TypePlayerDisconnected:
		return &PlayerDisconnected{}, nil
	case TypePlayerReconnected:
		return &PlayerReconnected{}, nil
	case TypeConnectionWarning:
		return &ConnectionWarning{}, nil
	case TypeGameEndedByForfeit:
		return &GameEndedByForfeit{}, nil
	case TypeGameEnded:
		return &GameEnded{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}

func deref(p any) Message {
	switch m := p.(type) {
	case *Init:
		return *m
	case *MouseMove:
		return *m
	case *BallPosition:
		return *m
	case *ScoreUpdate:
		return *m
	case *GameWon:
		return *m
	case *MatchComplete:
		return *m
	case *PlayerInput:
		return *m
	case *GameState:
		return *m
	case *PlayerDisconnected:
		return *m
	case *PlayerReconnected:
		return *m
	case *ConnectionWarning:
		return *m
	case *GameEndedByForfeit:
		return *m
	case *GameEnded:
		return *m
	default:
		return nil
	}
}

// Encode serializes a message with its "type" discriminator as the first key.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil message", ErrMalformed)
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.MessageType(), err)
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("%w: %s does not encode to an object", ErrMalformed, m.MessageType())
	}

	typ, err := json.Marshal(m.MessageType())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(typ) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if !bytes.Equal(body, []byte("{}")) {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}
