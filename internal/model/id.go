package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrInvalidID is returned when a JSON id is neither a string nor a number.
var ErrInvalidID = errors.New("invalid id")

// PendingPrefix marks ids generated locally before the remote catalog acknowledged a create.
const PendingPrefix = "tmp-"

// ID identifies a product. Server ids are assigned by the remote catalog; pending ids are local.
type ID string

// IsPending reports whether the id is a local placeholder.
func (id ID) IsPending() bool {
	return strings.HasPrefix(string(id), PendingPrefix)
}

func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both numeric and string ids.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidID, err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as numbers, everything else as strings.
// "007" and "+5" parse as integers but are not JSON numbers, so they stay quoted.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// PendingIDSource hands out pending ids stamped with a strictly increasing unix-nano time.
type PendingIDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewPendingIDSource creates a source reading the wall clock.
func NewPendingIDSource() *PendingIDSource {
	return &PendingIDSource{now: time.Now}
}

// Next returns a pending id never handed out before by this source.
func (s *PendingIDSource) Next() ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp := s.now().UnixNano()
	if stamp <= s.last {
		stamp = s.last + 1
	}
	s.last = stamp
	return ID(PendingPrefix + strconv.FormatInt(stamp, 10))
}
