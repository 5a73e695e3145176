package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

const entryFormatVersionCurrent = 1

var errEntryCorrupt = errors.New("storage: corrupt entry")

// entry is a stored value with an optional absolute expiry in Unix milliseconds.
// ExpiresAt == 0 means the value never expires.
type entry struct {
	Value     string
	ExpiresAt int64
}

func (e entry) expired(nowMilli int64) bool {
	return e.ExpiresAt != 0 && e.ExpiresAt <= nowMilli
}

func encodeEntry(e entry) ([]byte, error) {
	if len(e.Value) > math.MaxUint16 {
		return nil, errors.New("storage: value too long")
	}

	var buf bytes.Buffer
	buf.WriteByte(entryFormatVersionCurrent)
	if err := binary.Write(&buf, binary.BigEndian, e.ExpiresAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(e.Value))); err != nil {
		return nil, err
	}
	buf.WriteString(e.Value)
	return buf.Bytes(), nil
}

func decodeEntry(data []byte) (entry, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return entry{}, errEntryCorrupt
	}
	if version != entryFormatVersionCurrent {
		return entry{}, errors.New("storage: unsupported entry version")
	}

	var e entry
	if err := binary.Read(reader, binary.BigEndian, &e.ExpiresAt); err != nil {
		return entry{}, errEntryCorrupt
	}
	var size uint16
	if err := binary.Read(reader, binary.BigEndian, &size); err != nil {
		return entry{}, errEntryCorrupt
	}
	value := make([]byte, size)
	if _, err := io.ReadFull(reader, value); err != nil {
		return entry{}, errEntryCorrupt
	}
	if reader.Len() != 0 {
		return entry{}, errEntryCorrupt
	}
	e.Value = string(value)
	return e, nil
}
