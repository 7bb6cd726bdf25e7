package sensor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/tactile/internal/domain/motion"
)

// Decode parses one JSON motion sample. Unknown fields are ignored so
// producers may attach their own metadata.
func Decode(payload []byte) (motion.Sample, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return motion.Sample{}, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}

	var s motion.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return motion.Sample{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return s, nil
}
