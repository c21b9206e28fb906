// Package protocol implements the newline-delimited JSON envelopes spoken
// between MindRoll clients and the server.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame is matched by every ProtocolError
var ErrMalformedFrame = errors.New("malformed frame")

// ProtocolError reports a frame that could not be decoded
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrMalformedFrame, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedFrame, e.Reason)
}

func (e *ProtocolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedFrame, e.Err}
	}
	return []error{ErrMalformedFrame}
}

func malformed(reason string, err error) *ProtocolError {
	return &ProtocolError{Reason: reason, Err: err}
}

const tokenKey = "token"

// Request is a call to a named server method with positional arguments
type Request struct {
	Name     string                     `json:"name"`
	Args     []json.RawMessage          `json:"args"`
	Metadata map[string]json.RawMessage `json:"metadata"`
}

// NewRequest builds a request, marshalling each argument to JSON
func NewRequest(name string, args ...any) (*Request, error) {
	req := &Request{
		Name:     name,
		Args:     make([]json.RawMessage, 0, len(args)),
		Metadata: map[string]json.RawMessage{},
	}
	for i, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("marshal arg %d: %w", i, err)
		}
		req.Args = append(req.Args, raw)
	}
	return req, nil
}

type tokenMetadata struct {
	Token string `json:"token"`
}

// WithToken attaches a bearer token as metadata.token.token
func (r *Request) WithToken(signature string) *Request {
	if r.Metadata == nil {
		r.Metadata = map[string]json.RawMessage{}
	}
	raw, _ := json.Marshal(tokenMetadata{Token: signature})
	r.Metadata[tokenKey] = raw
	return r
}

// Token returns the bearer token carried in metadata.token.token.
// present is false when no token metadata was sent at all; a present but
// badly shaped entry yields an empty signature.
func (r *Request) Token() (signature string, present bool) {
	raw, ok := r.Metadata[tokenKey]
	if !ok || isNull(raw) {
		return "", false
	}
	var meta tokenMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", true
	}
	return meta.Token, true
}

// Response carries either a result or an error message
type Response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// NewResponse wraps a successful result
func NewResponse(result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{Result: raw}, nil
}

// ErrorResponse builds a failed response with the given message
func ErrorResponse(message string) *Response {
	return &Response{Error: &message}
}

// Failed reports whether the response carries an error
func (r *Response) Failed() bool {
	return r.Error != nil
}

// Decode unmarshals the result into v
func (r *Response) Decode(v any) error {
	if len(r.Result) == 0 {
		return json.Unmarshal([]byte("null"), v)
	}
	return json.Unmarshal(r.Result, v)
}

// Message is a decoded frame. Exactly one of Request and Response is set.
type Message struct {
	Request  *Request
	Response *Response
}

// EncodeRequest serialises a request as a single newline-terminated frame
func EncodeRequest(req *Request) ([]byte, error) {
	out := *req
	if out.Args == nil {
		out.Args = []json.RawMessage{}
	}
	if out.Metadata == nil {
		out.Metadata = map[string]json.RawMessage{}
	}
	return encode(out)
}

// EncodeResponse serialises a response as a single newline-terminated frame
func EncodeResponse(resp *Response) ([]byte, error) {
	return encode(resp)
}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses one frame. Objects with a "name" field are requests,
// anything else is a response. Failures are reported as *ProtocolError.
func Decode(data []byte) (Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Message{}, malformed("empty frame", nil)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Message{}, malformed("invalid JSON object", err)
	}
	if fields == nil {
		return Message{}, malformed("invalid JSON object", nil)
	}

	if rawName, ok := fields["name"]; ok {
		req, err := decodeRequest(rawName, fields)
		if err != nil {
			return Message{}, err
		}
		return Message{Request: req}, nil
	}

	resp, err := decodeResponse(fields)
	if err != nil {
		return Message{}, err
	}
	return Message{Response: resp}, nil
}

func decodeRequest(rawName json.RawMessage, fields map[string]json.RawMessage) (*Request, error) {
	req := &Request{
		Args:     []json.RawMessage{},
		Metadata: map[string]json.RawMessage{},
	}
	if err := json.Unmarshal(rawName, &req.Name); err != nil {
		return nil, malformed("name must be a string", err)
	}
	if raw, ok := fields["args"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &req.Args); err != nil {
			return nil, malformed("args must be an array", err)
		}
	}
	if raw, ok := fields["metadata"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &req.Metadata); err != nil {
			return nil, malformed("metadata must be an object", err)
		}
	}
	return req, nil
}

func decodeResponse(fields map[string]json.RawMessage) (*Response, error) {
	resp := &Response{}
	if raw, ok := fields["result"]; ok && !isNull(raw) {
		resp.Result = raw
	}
	if raw, ok := fields["error"]; ok && !isNull(raw) {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, malformed("error must be a string", err)
		}
		resp.Error = &msg
	}
	return resp, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
