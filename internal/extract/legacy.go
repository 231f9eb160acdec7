package extract

import (
	"fmt"

	"github.com/lu4p/cat"
)

// extractLegacy handles RTF, ODT and non-OOXML .doc uploads.
func extractLegacy(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("decode document: %w", err)
	}
	return text, nil
}
