package models

import "encoding/json"

// BridgeMessage is the JSON body exchanged between the panel and its host
type BridgeMessage struct {
	Action    string          `json:"action"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Envelope pairs a message with the origin of its sender
type Envelope struct {
	Origin  string
	Message BridgeMessage
}

// ClipboardRequest is the payload of an outbound copy-to-clipboard message
type ClipboardRequest struct {
	Content string `json:"content"`
}

// ClipboardAck is the payload of the host's copy-to-clipboard reply
type ClipboardAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// NewBridgeMessage builds a message, marshalling payload when non-nil
func NewBridgeMessage(action, requestID string, payload any) (BridgeMessage, error) {
	msg := BridgeMessage{Action: action, RequestID: requestID}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return BridgeMessage{}, err
	}
	msg.Payload = raw
	return msg, nil
}

// PayloadString decodes a string payload. Non-string payloads yield "".
func (m BridgeMessage) PayloadString() string {
	var s string
	if len(m.Payload) == 0 {
		return ""
	}
	if err := json.Unmarshal(m.Payload, &s); err != nil {
		return ""
	}
	return s
}

// DecodePayload unmarshals the payload into v
func (m BridgeMessage) DecodePayload(v any) error {
	return json.Unmarshal(m.Payload, v)
}
