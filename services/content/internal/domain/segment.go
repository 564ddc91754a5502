package domain

import (
	"encoding/json"
	"regexp"
	"time"
)

// Segment is one named JSON document in the content store. The value is
// opaque to this service and replaced wholesale on every write.
type Segment struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedBy string          `json:"updatedBy,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CredentialsKey is reserved: admin credentials live in their own table and
// are never readable or writable through the segment API.
const CredentialsKey = "credentials"

var keyPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// ValidKey reports whether key is a well-formed segment name.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// IsReserved reports whether key is withheld from the segment API.
func IsReserved(key string) bool {
	return key == CredentialsKey || key == "credential"
}
