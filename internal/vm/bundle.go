package vm

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

const (
	tapeVersionV1 byte = 0x01
)

var tapeMagic = [4]byte{'T', 'A', 'P', 'E'}

// Serialize encodes the program as magic, version byte and a gob payload.
func (p *Program) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)

	buf.Write(tapeMagic[:])
	buf.WriteByte(tapeVersionV1)

	enc := gob.NewEncoder(buf)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("tape gob encoding failed: %w", err)
	}

	return buf.Bytes(), nil
}

// Deserialize decodes a serialized tape. Decoded tapes come from outside the
// compiler, so they are verified before being returned, and the depth
// statistics are taken from the verifier rather than from the payload.
func Deserialize(data []byte) (*Program, error) {
	if len(data) < len(tapeMagic)+1 {
		return nil, fmt.Errorf("tape data too short")
	}
	if !bytes.Equal(data[:len(tapeMagic)], tapeMagic[:]) {
		return nil, fmt.Errorf("invalid magic number, expected TAPE")
	}

	version := data[len(tapeMagic)]
	payload := data[len(tapeMagic)+1:]

	switch version {
	case tapeVersionV1:
		var p Program
		if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&p); err != nil {
			return nil, fmt.Errorf("v1 gob decoding failed: %w", err)
		}
		info, err := Verify(&p)
		if err != nil {
			return nil, fmt.Errorf("v1 tape validation failed: %w", err)
		}
		p.MaxStack = info.MaxStack
		p.MaxLocals = info.MaxLocals
		p.MaxArgument = info.MaxArgument
		return &p, nil

	default:
		return nil, fmt.Errorf("unsupported tape version: %d (this binary supports version %d)",
			version, tapeVersionV1)
	}
}
