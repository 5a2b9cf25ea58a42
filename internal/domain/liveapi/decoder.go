package liveapi

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// Value is the JSON-like normalized form of a decoded message.
type Value = map[string]any

// Decoded is the outcome of decoding one inner message. It is never nil
// and never carries an error: undecodable payloads are degraded instead.
type Decoded struct {
	Kind     Kind
	TypeName string
	Value    Value
	Degraded bool
	// Nested is the decoded result carried inside a Response wrapper.
	Nested *Decoded
}

// Fallback maps a type-name fragment onto a schema kind for types the
// exact table does not know.
type Fallback struct {
	Match string
	Kind  Kind
}

// DefaultFallbacks is the ordered fallback list. First match wins.
var DefaultFallbacks = []Fallback{
	{Match: "LobbyPlayers", Kind: KindLobbyPlayers},
	{Match: "LegendBanStatus", Kind: KindLegendBanStatus},
	{Match: "Response", Kind: KindResponse},
}

const (
	defaultResolutionCacheSize = 256
	defaultMaxNesting          = 4
)

type resolution struct {
	kind Kind
	md   protoreflect.MessageDescriptor
}

type Decoder struct {
	catalog    *Catalog
	logger     *slog.Logger
	fallbacks  []Fallback
	resolved   *lru.Cache[string, resolution]
	maxNesting int
	now        func() time.Time
	marshal    protojson.MarshalOptions
}

type DecoderOption func(*Decoder)

func WithFallbacks(fallbacks []Fallback) DecoderOption {
	return func(d *Decoder) {
		d.fallbacks = fallbacks
	}
}

func WithMaxNesting(depth int) DecoderOption {
	return func(d *Decoder) {
		if depth > 0 {
			d.maxNesting = depth
		}
	}
}

func WithClock(now func() time.Time) DecoderOption {
	return func(d *Decoder) {
		d.now = now
	}
}

func NewDecoder(catalog *Catalog, logger *slog.Logger, opts ...DecoderOption) *Decoder {
	cache, _ := lru.New[string, resolution](defaultResolutionCacheSize)

	d := &Decoder{
		catalog:    catalog,
		logger:     logger,
		fallbacks:  DefaultFallbacks,
		resolved:   cache,
		maxNesting: defaultMaxNesting,
		now:        time.Now,
		marshal:    protojson.MarshalOptions{Resolver: catalog.Resolver()},
	}
	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Decode turns a type name and payload into a normalized value. It falls
// back to substring matches and finally to a degraded raw record.
func (d *Decoder) Decode(typeName string, payload []byte) *Decoded {
	return d.decode(typeName, payload, 0)
}

func (d *Decoder) decode(typeName string, payload []byte, depth int) *Decoded {
	kind := KindOf(typeName)

	var md protoreflect.MessageDescriptor
	if kind != KindUnknown {
		md, _ = d.catalog.Descriptor(kind)
	} else {
		md, _ = d.catalog.Lookup(typeName)
	}

	if md != nil {
		dec, err := d.decodeAs(kind, md, typeName, payload, depth)
		if err == nil {
			return dec
		}
		d.logger.Warn("LIVEAPI_DECODE_FAILED",
			slog.String("type", typeName),
			slog.Any("err", err),
		)
	}

	return d.fallback(typeName, payload, depth)
}

func (d *Decoder) fallback(typeName string, payload []byte, depth int) *Decoded {
	if res, ok := d.resolved.Get(typeName); ok {
		if res.md != nil {
			if dec, err := d.decodeAs(res.kind, res.md, typeName, payload, depth); err == nil {
				return dec
			}
		}
		return d.degrade(typeName, payload)
	}

	matched := false
	for _, fb := range d.fallbacks {
		if !strings.Contains(typeName, fb.Match) {
			continue
		}
		md, ok := d.catalog.Descriptor(fb.Kind)
		if !ok {
			continue
		}
		matched = true

		dec, err := d.decodeAs(fb.Kind, md, typeName, payload, depth)
		if err != nil {
			continue
		}

		d.resolved.Add(typeName, resolution{kind: fb.Kind, md: md})
		d.logger.Warn("LIVEAPI_TYPE_FALLBACK",
			slog.String("type", typeName),
			slog.String("decoded_as", fb.Kind.FullName()),
		)
		return dec
	}

	// Only cache misses that no fragment matched, so a single malformed
	// payload cannot pin a matching type to the degraded path.
	if !matched {
		d.resolved.Add(typeName, resolution{})
		d.logger.Warn("LIVEAPI_TYPE_UNKNOWN",
			slog.String("type", typeName),
			slog.Int("bytes", len(payload)),
		)
	}

	return d.degrade(typeName, payload)
}

func (d *Decoder) decodeAs(kind Kind, md protoreflect.MessageDescriptor, typeName string, payload []byte, depth int) (*Decoded, error) {
	m := dynamicpb.NewMessage(md)
	if err := proto.Unmarshal(payload, m); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", md.FullName(), err)
	}

	value, err := d.normalize(m)
	if err != nil {
		return nil, err
	}

	dec := &Decoded{Kind: kind, TypeName: typeName, Value: value}
	if kind == KindResponse && depth < d.maxNesting {
		dec.Nested = d.nested(m, depth)
	}

	return dec, nil
}

// normalize renders a message the way protoc's JSON mapping does, with
// original camelCase names and unset fields omitted.
func (d *Decoder) normalize(m *dynamicpb.Message) (Value, error) {
	raw, err := d.marshal.Marshal(m)
	if err != nil {
		// An Any holding a type outside the catalog cannot be rendered.
		// Drop it and keep the rest of the wrapper.
		stripped, ok := stripAny(m)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNormalize, err)
		}
		if raw, err = d.marshal.Marshal(stripped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNormalize, err)
		}
	}

	value := make(Value)
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNormalize, err)
	}

	return value, nil
}

func (d *Decoder) nested(m protoreflect.Message, depth int) *Decoded {
	fd := m.Descriptor().Fields().ByName("result")
	if fd == nil || fd.Message() == nil || !m.Has(fd) {
		return nil
	}

	typeName, payload, ok := unpackAny(m.Get(fd).Message())
	if !ok {
		return nil
	}

	return d.decode(typeName, payload, depth+1)
}

func (d *Decoder) degrade(typeName string, payload []byte) *Decoded {
	return &Decoded{
		Kind:     KindUnknown,
		TypeName: typeName,
		Degraded: true,
		Value: Value{
			"rawDataHex": hex.EncodeToString(payload),
			"type":       typeName,
			"timestamp":  d.now().UTC().Format(time.RFC3339Nano),
		},
	}
}

func stripAny(m *dynamicpb.Message) (proto.Message, bool) {
	clone := proto.Clone(m)
	r := clone.ProtoReflect()

	stripped := false
	fields := r.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if fd.Message() != nil && fd.Message().FullName() == anyTypeName && r.Has(fd) {
			r.Clear(fd)
			stripped = true
		}
	}

	return clone, stripped
}
