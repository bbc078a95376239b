package artifact

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/agentstation/converge/pkg/constants"
)

// Digest returns the hex blake3 digest of data, shortened for reports.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])[:constants.DigestLength]
}
