package stores

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

const flowRecordVersionV1 = 1

var (
	ErrFlowNotFound         = errors.New("flow record not found")
	ErrFlowBusy             = errors.New("flow submission already in flight")
	ErrFlowSuperseded       = errors.New("flow attempt superseded")
	ErrFlowRedisUnavailable = errors.New("flow redis unavailable")
)

// FlowRecord is the persisted state of one authentication flow. Step and
// Purpose are opaque identifiers owned by the controller.
type FlowRecord struct {
	Step      uint8
	Purpose   uint8
	Email     string
	Otp       string
	Notice    string
	Attempt   uint32
	InFlight  bool
	UpdatedAt int64
}

// FlowStore persists flow records keyed by flow ID.
//
// BeginAttempt moves the record to transitionStep, marks it in-flight, and
// returns it with a freshly incremented Attempt sequence; it fails with
// ErrFlowBusy while a prior submission is outstanding and with
// ErrFlowSuperseded when the flow is no longer on expectedStep.
// CompleteAttempt replaces the record only while the stored Attempt still
// equals attempt and the record is still in-flight; otherwise the result is
// discarded with ErrFlowSuperseded.
type FlowStore interface {
	Load(ctx context.Context, flowID string) (*FlowRecord, error)
	Save(ctx context.Context, flowID string, record *FlowRecord, ttl time.Duration) error
	BeginAttempt(ctx context.Context, flowID string, expectedStep, transitionStep uint8, ttl time.Duration) (*FlowRecord, error)
	CompleteAttempt(ctx context.Context, flowID string, attempt uint32, next *FlowRecord, ttl time.Duration) error
	Delete(ctx context.Context, flowID string) error
}

func encodeFlowRecord(record *FlowRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(flowRecordVersionV1)
	buf.WriteByte(record.Step)
	buf.WriteByte(record.Purpose)
	if record.InFlight {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	if err := binary.Write(&buf, binary.BigEndian, record.Attempt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.UpdatedAt); err != nil {
		return nil, err
	}

	for _, field := range []string{record.Email, record.Otp, record.Notice} {
		if len(field) > 65535 {
			return nil, errors.New("flow record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeFlowRecord(data []byte) (*FlowRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != flowRecordVersionV1 {
		return nil, errors.New("invalid flow record version")
	}

	record := &FlowRecord{}

	if record.Step, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	if record.Purpose, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	inFlight, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	record.InFlight = inFlight == 1

	if err := binary.Read(reader, binary.BigEndian, &record.Attempt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.UpdatedAt); err != nil {
		return nil, err
	}

	for _, target := range []*string{&record.Email, &record.Otp, &record.Notice} {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		field := make([]byte, length)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		*target = string(field)
	}

	return record, nil
}

func cloneFlowRecord(record *FlowRecord) *FlowRecord {
	if record == nil {
		return nil
	}
	clone := *record
	return &clone
}
