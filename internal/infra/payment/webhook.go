package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"classroom-subscription/internal/domain"
)

// signatureTolerance bounds the accepted age of a signed payload, limiting
// replay of captured webhook deliveries.
const signatureTolerance = 5 * time.Minute

// verifySignature checks a "t=<unix>,v1=<hex>" signature header. The signed
// message is "<t>.<payload>" and the MAC is HMAC-SHA256 under the endpoint
// secret. Any parse, timestamp, or MAC failure maps to domain.ErrSignature
// so callers cannot accidentally act on an unauthenticated payload.
func verifySignature(payload []byte, header, secret string, tolerance time.Duration) error {
	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			v, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return fmt.Errorf("bad timestamp %q: %w", kv[1], domain.ErrSignature)
			}
			ts = v
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return fmt.Errorf("missing timestamp or signature: %w", domain.ErrSignature)
	}

	age := time.Since(time.Unix(ts, 0))
	if age > tolerance || age < -tolerance {
		return fmt.Errorf("timestamp outside tolerance: %w", domain.ErrSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return fmt.Errorf("no matching signature: %w", domain.ErrSignature)
}

// SignPayload produces a signature header for payload at ts. The inverse of
// verifySignature, used to exercise webhook handling without the processor.
func SignPayload(payload []byte, secret string, ts time.Time) string {
	unix := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(unix))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", unix, hex.EncodeToString(mac.Sum(nil)))
}
