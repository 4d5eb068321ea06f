// Package signer implements the AWS4-HMAC-SHA256 canonical-request signing
// scheme used by the product-metadata API.
//
// Signing runs in four steps:
//
//  1. Build the canonical request (method, URI, query, headers, payload hash).
//  2. Build the string to sign from the timestamp, the credential scope and
//     the canonical request hash.
//  3. Derive the signing key through an HMAC chain seeded by the secret and
//     scoped to date, region and service.
//  4. HMAC the string to sign with the signing key.
//
// A Signature is bound to the timestamp it was built for. Callers sign each
// request freshly and never reuse a Signature.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// Algorithm is the signing algorithm identifier.
	Algorithm = "AWS4-HMAC-SHA256"

	// AmzDateFormat is the X-Amz-Date timestamp layout.
	AmzDateFormat = "20060102T150405Z"

	// DateFormat is the credential scope date layout.
	DateFormat = "20060102"

	terminator = "aws4_request"
)

var (
	// ErrMissingAccessKey is returned by New when the access key is empty.
	ErrMissingAccessKey = errors.New("access key is required")

	// ErrMissingSecret is returned by New when the secret key is empty.
	ErrMissingSecret = errors.New("secret key is required")

	// ErrMissingScope is returned by New when region or service is empty.
	ErrMissingScope = errors.New("region and service are required")
)

// Credentials identify the signing party.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Scope restricts a derived signing key to one region and service.
type Scope struct {
	Region  string
	Service string
}

// Input is the request material covered by a signature.
type Input struct {
	Method string

	// URI is the absolute request path, e.g. "/paapi5/getitems".
	URI string

	// Query is the raw query string, "" when absent.
	Query string

	// Headers to sign. Names are lower-cased and values trimmed during
	// canonicalization; the signed header list is derived from these keys.
	// Keys equal after lower-casing are signed once with joined values.
	Headers map[string]string

	Payload []byte
}

// Signature is the point-in-time result of signing one request.
type Signature struct {
	AmzDate              string
	CredentialScope      string
	CanonicalRequestHash string
	SignedHeaders        string
	Signature            string
	Authorization        string
}

// Signer signs requests for one set of credentials and scope.
type Signer struct {
	creds Credentials
	scope Scope
}

// New creates a signer. Empty credentials are rejected so that nothing is
// ever signed with an empty key.
func New(creds Credentials, scope Scope) (*Signer, error) {
	if creds.AccessKey == "" {
		return nil, ErrMissingAccessKey
	}
	if creds.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	if scope.Region == "" || scope.Service == "" {
		return nil, ErrMissingScope
	}
	return &Signer{creds: creds, scope: scope}, nil
}

// Sign signs in at time t.
func (s *Signer) Sign(in Input, t time.Time) Signature {
	t = t.UTC()
	amzDate := t.Format(AmzDateFormat)
	date := t.Format(DateFormat)

	canonical, signedHeaders := CanonicalRequest(in)
	canonicalHash := hashHex([]byte(canonical))

	credentialScope := strings.Join([]string{date, s.scope.Region, s.scope.Service, terminator}, "/")
	stringToSign := strings.Join([]string{Algorithm, amzDate, credentialScope, canonicalHash}, "\n")

	key := DeriveSigningKey(s.creds.SecretKey, date, s.scope.Region, s.scope.Service)
	signature := hex.EncodeToString(hmacSHA256(key, []byte(stringToSign)))

	return Signature{
		AmzDate:              amzDate,
		CredentialScope:      credentialScope,
		CanonicalRequestHash: canonicalHash,
		SignedHeaders:        signedHeaders,
		Signature:            signature,
		Authorization: fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
			Algorithm, s.creds.AccessKey, credentialScope, signedHeaders, signature),
	}
}

// CanonicalRequest serializes in and returns it together with the signed
// header list.
func CanonicalRequest(in Input) (string, string) {
	raw := make([]string, 0, len(in.Headers))
	for name := range in.Headers {
		raw = append(raw, name)
	}
	sort.Strings(raw)

	// Names differing only in case are one header; their values are
	// comma-joined in sorted key order.
	names := make([]string, 0, len(raw))
	values := make(map[string]string, len(raw))
	for _, name := range raw {
		lower := strings.ToLower(strings.TrimSpace(name))
		value := strings.Join(strings.Fields(in.Headers[name]), " ")
		if prev, ok := values[lower]; ok {
			values[lower] = prev + "," + value
			continue
		}
		names = append(names, lower)
		values[lower] = value
	}
	sort.Strings(names)

	var headers strings.Builder
	for _, name := range names {
		headers.WriteString(name)
		headers.WriteByte(':')
		headers.WriteString(values[name])
		headers.WriteByte('\n')
	}
	signedHeaders := strings.Join(names, ";")

	uri := in.URI
	if uri == "" {
		uri = "/"
	}

	canonical := strings.Join([]string{
		in.Method,
		uri,
		in.Query,
		headers.String(),
		signedHeaders,
		hashHex(in.Payload),
	}, "\n")

	return canonical, signedHeaders
}

// DeriveSigningKey runs the keyed-hash chain secret -> date -> region ->
// service -> "aws4_request".
func DeriveSigningKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), []byte(date))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte(terminator))
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
