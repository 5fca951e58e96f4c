package auth

import (
	"fmt"

	"github.com/dmitrijs2005/scorekeeper/internal/common"
)

// NewSalt returns a fresh base64-encoded salt of common.SaltSize random
// bytes.
func NewSalt() (string, error) {
	s, err := common.MakeRandBase64String(common.SaltSize)
	if err != nil {
		return "", fmt.Errorf("error generating salt: %w", err)
	}
	return s, nil
}
