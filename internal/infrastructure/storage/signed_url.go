// Package storage issues time-limited signed URLs for letterhead assets.
// Documents never embed a durable asset link; every view gets a fresh one.
package storage

import (
	"crypto/hmac"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/motordesk/dealer-api/internal/application/invoicing"
)

var _ invoicing.LogoURLSigner = (*URLSigner)(nil)

// URLSigner signs asset URLs with an HMAC over the object key and expiry.
type URLSigner struct {
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewURLSigner builds the signer. baseURL is the public asset origin, e.g.
// https://assets.example.com.
func NewURLSigner(baseURL, secret string) *URLSigner {
	return &URLSigner{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		now:     time.Now,
	}
}

// SignedURL returns a URL for the object key that stops verifying after ttl.
func (s *URLSigner) SignedURL(key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("sign url: empty object key")
	}
	expires := s.now().Add(ttl).Unix()
	sig := s.sign(key, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/%s?%s", s.baseURL, key, q.Encode()), nil
}

// Verify checks a presented key/expiry/signature triple, as the asset
// endpoint does before serving the object.
func (s *URLSigner) Verify(key string, expires int64, sig string) bool {
	if s.now().Unix() > expires {
		return false
	}
	expected := s.sign(key, expires)
	return hmac.Equal([]byte(expected), []byte(sig))
}

func (s *URLSigner) sign(key string, expires int64) string {
	mac := hmac.New(sha3.New256, s.secret)
	fmt.Fprintf(mac, "%s\n%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
