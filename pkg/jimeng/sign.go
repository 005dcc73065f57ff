package jimeng

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	serviceName = "cv"
	signPrefix  = "HMAC-SHA256"
)

// now is swappable in tests for deterministic signatures.
var now = time.Now

func hmacSha256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// signRequest builds the volcengine auth headers for one request: canonical
// request, string-to-sign and the date/region/service/request signing key
// chain, all hashed with SHA-256.
func signRequest(accessKeyId, secretAccessKey, region, host, method, uri string, query map[string]string, body []byte) map[string]string {
	timestamp := now().UTC().Format("20060102T150405Z")
	date := timestamp[:8]
	payloadHash := sha256Hex(body)

	headers := map[string]string{
		"Content-Type":     "application/json",
		"Host":             host,
		"X-Date":           timestamp,
		"X-Content-Sha256": payloadHash,
	}

	headerNames := make([]string, 0, len(headers))
	for name := range headers {
		headerNames = append(headerNames, name)
	}
	sort.Strings(headerNames)

	canonicalHeaders := make([]string, 0, len(headerNames))
	signedNames := make([]string, 0, len(headerNames))
	for _, name := range headerNames {
		canonicalHeaders = append(canonicalHeaders, strings.ToLower(name)+":"+headers[name])
		signedNames = append(signedNames, strings.ToLower(name))
	}
	signedHeaders := strings.Join(signedNames, ";")

	queryKeys := make([]string, 0, len(query))
	for k := range query {
		queryKeys = append(queryKeys, k)
	}
	sort.Strings(queryKeys)
	queryParts := make([]string, 0, len(queryKeys))
	for _, k := range queryKeys {
		queryParts = append(queryParts, url.QueryEscape(k)+"="+url.QueryEscape(query[k]))
	}
	canonicalQuery := strings.Join(queryParts, "&")

	canonicalRequest := strings.Join([]string{
		method,
		uri,
		canonicalQuery,
		strings.Join(canonicalHeaders, "\n"),
		"",
		signedHeaders,
		payloadHash,
	}, "\n")

	credentialScope := fmt.Sprintf("%s/%s/%s/request", date, region, serviceName)
	stringToSign := strings.Join([]string{
		signPrefix,
		timestamp,
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	kDate := hmacSha256([]byte(secretAccessKey), []byte(date))
	kRegion := hmacSha256(kDate, []byte(region))
	kService := hmacSha256(kRegion, []byte(serviceName))
	kSigning := hmacSha256(kService, []byte("request"))
	signature := hex.EncodeToString(hmacSha256(kSigning, []byte(stringToSign)))

	headers["Authorization"] = fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signPrefix, accessKeyId, credentialScope, signedHeaders, signature)
	return headers
}
