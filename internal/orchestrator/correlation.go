package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/synapse-labs/lead-intake/internal/model"
)

// CorrelationID derives the deterministic run key for an inquiry: a
// hash of the text, the channel, and the receive time truncated to the
// dedup window. Identical payloads delivered twice inside one window
// (webhook retries, double submits) collapse to the same run; the same
// text arriving in a later window is a fresh run.
func CorrelationID(inq model.Inquiry, window time.Duration) string {
	if window <= 0 {
		window = time.Hour
	}
	bucket := inq.ReceivedAt.UTC().Truncate(window).Unix()

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d", inq.Text, inq.Channel, bucket)
	return hex.EncodeToString(h.Sum(nil))
}
