package liveapi

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

const typeURLPrefix = "type.googleapis.com/"

// Envelope is the unwrapped outer frame: the inner type name plus its
// still-encoded bytes.
type Envelope struct {
	TypeName string
	Payload  []byte
}

// DecodeEnvelope parses one binary websocket frame.
func (c *Catalog) DecodeEnvelope(frame []byte) (Envelope, error) {
	m := c.message("LiveAPIEvent")
	if err := proto.Unmarshal(frame, m); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	fd := m.Descriptor().Fields().ByName("gameMessage")
	if !m.Has(fd) {
		return Envelope{}, fmt.Errorf("%w: missing gameMessage", ErrMalformedEnvelope)
	}

	typeName, payload, ok := unpackAny(m.Get(fd).Message())
	if !ok {
		return Envelope{}, fmt.Errorf("%w: empty type url", ErrMalformedEnvelope)
	}

	return Envelope{TypeName: typeName, Payload: payload}, nil
}

// EncodeEnvelope wraps an encoded message the way the game does.
func (c *Catalog) EncodeEnvelope(typeName string, payload []byte) ([]byte, error) {
	m := c.message("LiveAPIEvent")
	fields := m.Descriptor().Fields()

	packAny(m.Mutable(fields.ByName("gameMessage")).Message(), typeName, payload)
	m.Set(fields.ByName("event_size"), protoreflect.ValueOfUint32(uint32(len(payload))))

	return proto.Marshal(m)
}

// Frame is EncodeJSON followed by EncodeEnvelope.
func (c *Catalog) Frame(fullName string, payloadJSON []byte) ([]byte, error) {
	payload, err := c.EncodeJSON(fullName, payloadJSON)
	if err != nil {
		return nil, err
	}
	return c.EncodeEnvelope(fullName, payload)
}

func unpackAny(m protoreflect.Message) (string, []byte, bool) {
	fields := m.Descriptor().Fields()
	url := m.Get(fields.ByName("type_url")).String()
	if url == "" {
		return "", nil, false
	}
	return typeNameFromURL(url), m.Get(fields.ByName("value")).Bytes(), true
}

func packAny(m protoreflect.Message, typeName string, payload []byte) {
	fields := m.Descriptor().Fields()
	m.Set(fields.ByName("type_url"), protoreflect.ValueOfString(typeURLPrefix+typeName))
	m.Set(fields.ByName("value"), protoreflect.ValueOfBytes(payload))
}

func typeNameFromURL(url string) string {
	if i := strings.LastIndexByte(url, '/'); i >= 0 {
		return url[i+1:]
	}
	return url
}
