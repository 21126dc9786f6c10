package db

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Cursor marks the last record of a page for keyset continuation. Listing
// orders by (posted_at DESC, id DESC); the cursor carries that sort key and
// continuation resumes strictly after it.
type Cursor struct {
	PostedAt time.Time `msgpack:"p"`
	ID       uuid.UUID `msgpack:"i"`
}

// Encode serializes the cursor into an opaque URL-safe token.
func (c Cursor) Encode() (string, error) {
	raw, err := msgpack.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor parses an opaque token produced by Encode. An empty token
// yields a nil cursor (first page).
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}

	var c Cursor
	if err := msgpack.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	return &c, nil
}
