package parcel

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/landwho/landwho/internal/domain/geometry"
	"github.com/landwho/landwho/pkg/types/geo"
)

// coordPrecision fixes the decimal places used when serializing coordinates
// into the fingerprint.  Nine decimals is about 0.1 mm of longitude, well
// past any realistic input precision, so numerically equal boundaries hash
// identically regardless of float formatting noise upstream.
const coordPrecision = 9

// Fingerprint computes the canonical identity of a parcel boundary within a
// land: a SHA-256 over the land id and the closed ring's coordinates at
// fixed precision.  The record store's unique index on this value is the
// durable duplicate-mint backstop.
func Fingerprint(landID string, ring geo.Ring) string {
	closed := geometry.CloseRing(ring)

	var b strings.Builder
	b.WriteString(landID)
	for _, p := range closed {
		fmt.Fprintf(&b, "|%.*f,%.*f", coordPrecision, p.Lng, coordPrecision, p.Lat)
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
