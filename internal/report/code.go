// Package report implements C7: the paginated, bilingual PDF bound to a
// verdict, including the report code it alone mints (§9 open question 2).
package report

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const maxCodeAttempts = 10

// ExistsFunc reports whether a candidate report code is already in use.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// GenerateReportCode mints a GG-<YYYYMMDDhhmmss>-<4 alnum> code, retrying
// up to 10 times on collision (§4.6). The code is stable and never reused.
func GenerateReportCode(ctx context.Context, now time.Time, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		suffix, err := randomAlnum(4)
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("GG-%s-%s", now.Format("20060102150405"), suffix)

		if exists == nil {
			return code, nil
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique report code after %d attempts", maxCodeAttempts)
}

func randomAlnum(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[idx.Int64()]
	}
	return string(out), nil
}
