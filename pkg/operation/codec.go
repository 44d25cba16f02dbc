package operation

import (
	"bytes"
	"encoding/json"
)

// MarshalCanonical renders v as compact UTF-8 JSON with map keys sorted,
// matching the canonicalisation the crypto core encrypts over.
// encoding/json already sorts map[string]any keys; this wrapper exists so
// every caller goes through one choke point instead of calling
// json.Marshal directly, in case the canonical form needs to change later.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// json.Encoder.Encode appends a trailing newline; strip it so the
	// encoded bytes are exactly the JSON document.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// BatchEnvelope is the plaintext document batch encryption operates
// over: the same primitive as single-operation encryption, applied to
// a JSON document of {operations, timestamp, userId}.
type BatchEnvelope struct {
	Operations []EncodableFields `json:"operations"`
	Timestamp  int64             `json:"timestamp"`
	UserID     string            `json:"userId"`
}

// SimilarityInput renders a payload to the same canonical JSON used for
// similarity scoring in the conflict resolver, so both sides of a
// comparison are produced identically.
func SimilarityInput(data map[string]any) ([]byte, error) {
	return MarshalCanonical(data)
}
