package cache

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

var (
	// magicBytes is the 4-byte prefix for framed cache entry files.
	magicBytes = []byte("TSC1")

	// ErrInvalidMagic is returned when an entry doesn't start with the
	// expected magic bytes.
	ErrInvalidMagic = errors.New("invalid magic bytes: expected TSC1")

	// ErrHeaderTooLarge is returned when the header exceeds maxHeaderSize.
	ErrHeaderTooLarge = errors.New("header exceeds maximum size")
)

// maxHeaderSize bounds the JSON header (4 KiB is ample for entry metadata).
const maxHeaderSize = 4 * 1024

// EntryHeader carries the metadata needed to age a cache entry.
type EntryHeader struct {
	Op        string    `json:"op"`
	CreatedAt time.Time `json:"created_at"`
	BodySize  int64     `json:"body_size"`
}

// WriteFramed writes a framed cache entry.
// Format: MAGIC (4 bytes) | HDRLEN (uint32 big-endian) | HDRBYTES (JSON) | BODY
func WriteFramed(w io.Writer, header *EntryHeader, body []byte) error {
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling header: %w", err)
	}
	if len(headerBytes) > maxHeaderSize {
		return ErrHeaderTooLarge
	}

	if _, err := w.Write(magicBytes); err != nil {
		return fmt.Errorf("writing magic bytes: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(headerBytes))); err != nil {
		return fmt.Errorf("writing header length: %w", err)
	}
	if _, err := w.Write(headerBytes); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing body: %w", err)
	}
	return nil
}

// ReadFramed reads a framed cache entry, returning the header and the raw
// (still compressed) body bytes.
func ReadFramed(r io.Reader) (*EntryHeader, []byte, error) {
	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, fmt.Errorf("reading magic bytes: %w", err)
	}
	if string(magic) != string(magicBytes) {
		return nil, nil, ErrInvalidMagic
	}

	var headerLen uint32
	if err := binary.Read(r, binary.BigEndian, &headerLen); err != nil {
		return nil, nil, fmt.Errorf("reading header length: %w", err)
	}
	if headerLen > maxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	var header EntryHeader
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, nil, fmt.Errorf("unmarshaling header: %w", err)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading body: %w", err)
	}

	return &header, body, nil
}
