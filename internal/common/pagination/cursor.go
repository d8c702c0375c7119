package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidCursor is returned by DecodeCursor for malformed tokens.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the position of the last raw document consumed by a range scan.
// Scans resume strictly after it in the canonical order:
// CreatedAt desc, ID desc, ParentID desc.
//
// ParentID only matters for collection-group scans where two documents
// under different parents may share an id.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
	ParentID  string    `json:"p,omitempty"`
}

// NewCursor returns the cursor positioned at the given document key.
func NewCursor(createdAt time.Time, id, parentID string) Cursor {
	return Cursor{CreatedAt: createdAt.UTC(), ID: id, ParentID: parentID}
}

// Compare orders two cursor keys ascending: it returns -1 when a sorts
// before b, 0 when equal and +1 otherwise. The canonical scan order is the
// reverse of this.
func Compare(a, b Cursor) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	if c := strings.Compare(a.ID, b.ID); c != 0 {
		return c
	}
	return strings.Compare(a.ParentID, b.ParentID)
}

// Follows reports whether key comes strictly after c in scan order.
func (c Cursor) Follows(key Cursor) bool {
	return Compare(key, c) < 0
}

// Encode returns an opaque URL-safe token for the cursor.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// String implements fmt.Stringer for log output.
func (c Cursor) String() string {
	if c.ParentID == "" {
		return fmt.Sprintf("%d::%s", c.CreatedAt.UnixMilli(), c.ID)
	}
	return fmt.Sprintf("%d::%s::%s", c.CreatedAt.UnixMilli(), c.ParentID, c.ID)
}

// DecodeCursor parses a token produced by Encode.
func DecodeCursor(token string) (Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if c.ID == "" {
		return Cursor{}, fmt.Errorf("%w: missing id", ErrInvalidCursor)
	}
	return c, nil
}
