package liveapi

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"

	// Registers google/protobuf/any.proto in the global file registry.
	_ "google.golang.org/protobuf/types/known/anypb"
)

// Catalog is the immutable, process-wide view of the LiveAPI schema.
type Catalog struct {
	file  protoreflect.FileDescriptor
	types *protoregistry.Types
}

// NewCatalog materialises the schema. It only fails if the embedded
// schema definition itself is inconsistent.
func NewCatalog() (*Catalog, error) {
	file, err := protodesc.NewFile(schemaFile(), protoregistry.GlobalFiles)
	if err != nil {
		return nil, fmt.Errorf("liveapi: build schema: %w", err)
	}

	types := new(protoregistry.Types)

	enums := file.Enums()
	for i := 0; i < enums.Len(); i++ {
		if err := types.RegisterEnum(dynamicpb.NewEnumType(enums.Get(i))); err != nil {
			return nil, fmt.Errorf("liveapi: register enum %s: %w", enums.Get(i).FullName(), err)
		}
	}

	msgs := file.Messages()
	for i := 0; i < msgs.Len(); i++ {
		if err := types.RegisterMessage(dynamicpb.NewMessageType(msgs.Get(i))); err != nil {
			return nil, fmt.Errorf("liveapi: register message %s: %w", msgs.Get(i).FullName(), err)
		}
	}

	return &Catalog{file: file, types: types}, nil
}

// Default returns the shared catalog, built once on first use.
var Default = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
})

// Resolver resolves Any payloads against the catalog.
func (c *Catalog) Resolver() *protoregistry.Types {
	return c.types
}

// Lookup finds a message descriptor by its fully-qualified name.
func (c *Catalog) Lookup(fullName string) (protoreflect.MessageDescriptor, bool) {
	if !strings.HasPrefix(fullName, Package+".") {
		return nil, false
	}
	md := c.file.Messages().ByName(protoreflect.Name(strings.TrimPrefix(fullName, Package+".")))
	return md, md != nil
}

// Descriptor returns the message descriptor of a known kind.
func (c *Catalog) Descriptor(kind Kind) (protoreflect.MessageDescriptor, bool) {
	if kind == KindUnknown {
		return nil, false
	}
	return c.Lookup(kind.FullName())
}

// message allocates an empty message of a schema type. Names are static,
// so a miss is a programming error.
func (c *Catalog) message(name protoreflect.Name) *dynamicpb.Message {
	md := c.file.Messages().ByName(name)
	if md == nil {
		panic("liveapi: schema has no message " + string(name))
	}
	return dynamicpb.NewMessage(md)
}

func (c *Catalog) enumValue(enum protoreflect.Name, value string) (protoreflect.EnumNumber, bool) {
	ed := c.file.Enums().ByName(enum)
	if ed == nil {
		return 0, false
	}
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		v := ed.Values().ByNumber(protoreflect.EnumNumber(n))
		return protoreflect.EnumNumber(n), v != nil
	}
	v := ed.Values().ByName(protoreflect.Name(strings.ToUpper(value)))
	if v == nil {
		return 0, false
	}
	return v.Number(), true
}

// EncodeJSON builds the binary form of a schema message from its JSON
// mapping. Used by tooling and tests to fabricate game traffic.
func (c *Catalog) EncodeJSON(fullName string, payload []byte) ([]byte, error) {
	md, ok := c.Lookup(fullName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, fullName)
	}

	m := dynamicpb.NewMessage(md)
	if len(payload) > 0 {
		if err := (protojson.UnmarshalOptions{Resolver: c.types}).Unmarshal(payload, m); err != nil {
			return nil, fmt.Errorf("liveapi: decode %s json: %w", fullName, err)
		}
	}

	return proto.Marshal(m)
}
