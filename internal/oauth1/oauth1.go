// Package oauth1 signs requests with OAuth 1.0a (HMAC-SHA1) by hand.
//
// The X API v2 accepts OAuth 1.0a user context but signs only the OAuth
// protocol parameters and the query string — never the JSON body. Everything
// here is a pure function of its inputs so signatures can be tested without
// a network.
package oauth1

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Credentials holds the four long-lived secrets for one account. Immutable
// for the process lifetime; callers must never log or persist the values.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Nonce returns a fresh request nonce. Each signed request needs its own
// nonce and timestamp or the server may reject it as a replay.
func Nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// PercentEncode applies RFC 5849 percent-encoding: everything except
// unreserved characters (A-Z a-z 0-9 - . _ ~) is %XX-escaped.
func PercentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

// protocolParams returns the oauth_* parameter set, without the signature.
func protocolParams(c Credentials, nonce string, timestamp int64) map[string]string {
	return map[string]string{
		"oauth_consumer_key":     c.ConsumerKey,
		"oauth_nonce":            nonce,
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprintf("%d", timestamp),
		"oauth_token":            c.AccessToken,
		"oauth_version":          "1.0",
	}
}

// normalizeParams percent-encodes keys and values, sorts by encoded key then
// encoded value, and joins the pairs into the normalized parameter string.
func normalizeParams(params map[string]string) string {
	pairs := make([][2]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, [2]string{PercentEncode(k), PercentEncode(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	joined := make([]string, len(pairs))
	for i, p := range pairs {
		joined[i] = p[0] + "=" + p[1]
	}
	return strings.Join(joined, "&")
}

// signatureBase builds METHOD&enc(url)&enc(normalized-params).
func signatureBase(method, rawurl string, params map[string]string) string {
	return strings.ToUpper(method) + "&" + PercentEncode(rawurl) + "&" + PercentEncode(normalizeParams(params))
}

// sign computes the base64 HMAC-SHA1 signature over the base string, keyed
// by enc(consumerSecret)&enc(tokenSecret).
func sign(base, consumerSecret, tokenSecret string) string {
	key := PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)
	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// AuthorizationHeader produces the Authorization header value for one
// request. query holds the signable request parameters (the URL query
// string); JSON bodies are excluded from signing on purpose — including
// them produces a signature the server rejects.
func AuthorizationHeader(method, rawurl string, query map[string]string, c Credentials, nonce string, timestamp int64) string {
	oauth := protocolParams(c, nonce, timestamp)

	all := make(map[string]string, len(oauth)+len(query))
	for k, v := range oauth {
		all[k] = v
	}
	for k, v := range query {
		all[k] = v
	}
	oauth["oauth_signature"] = sign(signatureBase(method, rawurl, all), c.ConsumerSecret, c.AccessSecret)

	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", PercentEncode(k), PercentEncode(oauth[k])))
	}
	return "OAuth " + strings.Join(parts, ", ")
}
