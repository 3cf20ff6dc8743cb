package gstd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// errNoVariant is returned when a response matches no payload shape.
var errNoVariant = errors.New("response matches no known payload shape")

type rawEnvelope struct {
	Code        *ResponseCode   `json:"code"`
	Description string          `json:"description"`
	Response    json.RawMessage `json:"response"`
}

// decodeResponse turns an HTTP status and body into an envelope, or a
// KindHTTPStatus, KindMalformedBody or KindDomain error. Non-2xx bodies are
// never parsed.
func decodeResponse(status int, body []byte) (*Envelope, error) {
	if status < 200 || status > 299 {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: status}
	}
	env, err := parseEnvelope(body)
	if err != nil {
		return nil, newError(KindMalformedBody, "", err)
	}
	if env.Code != CodeSuccess {
		return env, &Error{Kind: KindDomain, Code: env.Code, Description: env.Description}
	}
	return env, nil
}

func parseEnvelope(body []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if raw.Code == nil {
		return nil, errors.New("decode envelope: missing code")
	}
	payload, err := resolvePayload(raw.Response)
	if err != nil {
		return nil, err
	}
	return &Envelope{Code: *raw.Code, Description: raw.Description, Response: payload}, nil
}

// resolvePayload tries the variants in a fixed order: bus message, then
// properties collection, then single property. The first match wins.
func resolvePayload(raw json.RawMessage) (Payload, error) {
	if bus, ok := resolveBus(raw); ok {
		return Payload{Kind: PayloadBus, Bus: bus}, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{}, errNoVariant
	}
	if _, ok := fields["properties"]; ok {
		var props Properties
		if err := json.Unmarshal(raw, &props); err == nil && props.Properties != nil {
			if props.Nodes == nil {
				props.Nodes = []Node{}
			}
			return Payload{Kind: PayloadProperties, Properties: &props}, nil
		}
	}
	var prop Property
	if err := json.Unmarshal(raw, &prop); err == nil {
		return Payload{Kind: PayloadProperty, Property: &prop}, nil
	}
	return Payload{}, errNoVariant
}

// resolveBus matches an absent or null response, an empty object, or an
// object carrying every bus message field.
func resolveBus(raw json.RawMessage) (*BusMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	if len(fields) == 0 {
		return nil, true
	}
	for _, key := range busFields {
		if _, ok := fields[key]; !ok {
			return nil, false
		}
	}
	var msg BusMessage
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, false
	}
	return &msg, true
}
