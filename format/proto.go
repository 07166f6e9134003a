package format

import (
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	reseg "github.com/jamesainslie/go-reseg"
)

// ProtoEncoder writes documents as binary-serialized google.protobuf.Struct
// messages, the schema-free interchange form consumers decode with any
// protobuf runtime.
type ProtoEncoder struct {
	w io.Writer
}

// NewProtoEncoder creates a protobuf encoder writing to w.
func NewProtoEncoder(w io.Writer) *ProtoEncoder {
	return &ProtoEncoder{w: w}
}

// Encode renders the document.
func (e *ProtoEncoder) Encode(doc *reseg.Document) error {
	// Struct values admit only JSON types; a round trip through
	// encoding/json produces exactly those.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	st, err := structpb.NewStruct(payload)
	if err != nil {
		return fmt.Errorf("building struct: %w", err)
	}
	out, err := proto.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling struct: %w", err)
	}

	_, err = e.w.Write(out)
	return err
}
