package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-lst-sync/models"
)

const (
	FieldToken     = "token"
	FieldDocID     = "doc_id"
	FieldPushID    = "push_id"
	FieldChanges   = "changes"
	FieldSnapshot  = "snapshot"
	FieldSeq       = "seq"
	FieldAfter     = "after"
	FieldCoversSeq = "covers_seq"
)

// frameFields lists the fields checked for each frame type when Validate is
// called without explicit fields. Frame types missing here are rejected.
var frameFields = map[models.MessageType][]string{
	// client to relay
	models.MsgAuthenticate:        {FieldToken},
	models.MsgRequestDocumentList: {},
	models.MsgRequestSnapshot:     {FieldDocID},
	models.MsgRequestChanges:      {FieldDocID, FieldAfter},
	models.MsgPushChanges:         {FieldDocID, FieldPushID, FieldChanges},
	models.MsgPushSnapshot:        {FieldDocID, FieldPushID, FieldSnapshot, FieldCoversSeq},

	// relay to client
	models.MsgAuthenticated:     {},
	models.MsgAuthFailed:        {},
	models.MsgDocumentList:      {},
	models.MsgSnapshot:          {FieldDocID, FieldSeq},
	models.MsgNewChanges:        {FieldDocID, FieldChanges, FieldSeq},
	models.MsgRequestCompaction: {FieldDocID},
	models.MsgAck:               {FieldPushID, FieldSeq},
	models.MsgError:             {},
}

var clientFrames = map[models.MessageType]bool{
	models.MsgAuthenticate:        true,
	models.MsgRequestDocumentList: true,
	models.MsgRequestSnapshot:     true,
	models.MsgRequestChanges:      true,
	models.MsgPushChanges:         true,
	models.MsgPushSnapshot:        true,
}

// MessageValidator checks relay protocol frames. A validator built for one
// direction rejects frames that only travel the other way.
type MessageValidator struct {
	fromClient bool
}

// NewClientFrameValidator validates frames a device sends to the relay.
func NewClientFrameValidator() Validator {
	return &MessageValidator{fromClient: true}
}

// NewRelayFrameValidator validates frames the relay sends to a device.
func NewRelayFrameValidator() Validator {
	return &MessageValidator{fromClient: false}
}

func (v *MessageValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Message:
		return v.validateMessage(ctx, value, fields...)
	case *models.Message:
		return v.validateMessage(ctx, *value, fields...)
	default:
		return ErrUnsupportedType
	}
}

func (v *MessageValidator) validateMessage(_ context.Context, msg models.Message, fields ...string) error {
	defaults, known := frameFields[msg.Type]
	if !known || clientFrames[msg.Type] != v.fromClient {
		return fmt.Errorf("%w: %q", ErrUnexpectedFrame, msg.Type)
	}
	if len(fields) == 0 {
		fields = defaults
	}

	for _, f := range fields {
		switch f {
		case FieldToken:
			if msg.Token == "" {
				return ErrNoToken
			}
		case FieldDocID:
			if msg.DocID == "" {
				return ErrNoDocID
			}
		case FieldPushID:
			if msg.PushID == "" {
				return ErrNoPushID
			}
		case FieldChanges:
			if len(msg.Changes) == 0 {
				return ErrNoChanges
			}
		case FieldSnapshot:
			if len(msg.Snapshot) == 0 {
				return ErrNoSnapshot
			}
		case FieldSeq:
			if msg.Seq < 0 {
				return ErrNegativeSeq
			}
		case FieldAfter:
			if msg.After < 0 {
				return ErrNegativeSeq
			}
		case FieldCoversSeq:
			if msg.CoversSeq < 0 {
				return ErrNegativeSeq
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
