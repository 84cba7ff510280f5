package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Decode failure classes. Sessions treat all three as recoverable: the frame
// is dropped and logged, the connection stays up.
var (
	ErrMalformed      = errors.New("malformed message")
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid message payload")
)

// DecodeError reports why a client frame could not be decoded, keeping the
// type tag when it was readable.
type DecodeError struct {
	Tag string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("decode %q: %v", e.Tag, e.Err)
	}
	return fmt.Sprintf("decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// validator is implemented by commands that check their own payload after
// unmarshaling.
type validator interface {
	validate() error
}

// commandRegistry maps type tags to fresh command values. Decoding always
// allocates so concurrent decodes never share state.
var commandRegistry = map[string]func() Command{
	TypeHeartbeat:            func() Command { return &Heartbeat{} },
	TypeAddTrack:             func() Command { return &AddTrack{} },
	TypeAddTracks:            func() Command { return &AddTracks{} },
	TypeDeleteTracks:         func() Command { return &DeleteTracks{} },
	TypeUpdateRating:         func() Command { return &UpdateRating{} },
	TypeIncPlayCount:         func() Command { return &IncPlayCount{} },
	TypeGetTrackInfo:         func() Command { return &GetTrackInfo{} },
	TypeGetRandomTrack:       func() Command { return &GetRandomTrack{} },
	TypeGetRows:              func() Command { return &GetRows{} },
	TypeCollectionContainsID: func() Command { return &CollectionContainsID{} },
	TypeSetCollection:        func() Command { return &SetCollection{} },
	TypeCreateCollection:     func() Command { return &CreateCollection{} },
	TypeGetPathCompletions:   func() Command { return &GetPathCompletions{} },
	TypeSearch:               func() Command { return &Search{} },
	TypeSearchCancelAll:      func() Command { return &SearchCancelAll{} },
	TypeSearchTrack:          func() Command { return &SearchTrack{} },
	TypeCheckImportFrom:      func() Command { return &CheckImportFrom{} },
	TypeImportFrom:           func() Command { return &ImportFrom{} },
}

// DecodeCommand parses one client frame: probe the "type" discriminant, look
// up the concrete command, unmarshal into it, then run payload validation.
func DecodeCommand(data []byte) (Command, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	if probe.Type == "" {
		return nil, &DecodeError{Err: fmt.Errorf("%w: missing type field", ErrMalformed)}
	}

	build, ok := commandRegistry[probe.Type]
	if !ok {
		return nil, &DecodeError{Tag: probe.Type, Err: ErrUnknownType}
	}

	cmd := build()
	if err := json.Unmarshal(data, cmd); err != nil {
		return nil, &DecodeError{Tag: probe.Type, Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
	}
	if v, ok := cmd.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, &DecodeError{Tag: probe.Type, Err: fmt.Errorf("%w: %v", ErrInvalidPayload, err)}
		}
	}
	return cmd, nil
}

// EncodeEvents serializes a batch as a JSON array. An empty or nil batch
// encodes as "[]" so clients can iterate unconditionally.
func EncodeEvents(events []Event) ([]byte, error) {
	if len(events) == 0 {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event batch: %w", err)
	}
	return data, nil
}
