package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// StateBytes is the number of random bytes behind every state value.
const StateBytes = 16

var randReader io.Reader = rand.Reader

// GenerateState returns an unpredictable hex string (2*[StateBytes] characters) used as the
// OAuth2 state parameter.
//
// The only failure is an unreadable entropy source, reported as [ErrEntropy].
func GenerateState() (string, error) {
	buf := make([]byte, StateBytes)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return hex.EncodeToString(buf), nil
}

