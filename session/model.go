package session

import (
	"encoding/json"
	"errors"
)

// Record defines a public type used by authsessions APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

// Encode serializes a [Record] to its stored JSON form.
func Encode(rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, errors.New("nil session record")
	}
	return json.Marshal(rec)
}

// Decode parses a stored JSON blob back into a [Record]. Blobs that parse but
// carry no refresh token are rejected as corrupt.
func Decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrRecordCorrupt, err)
	}
	if rec.RefreshToken == "" {
		return nil, ErrRecordCorrupt
	}
	return &rec, nil
}
