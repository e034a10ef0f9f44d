package rakumart

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignFunc computes the request signature from the app key, app secret and
// Unix timestamp string.
type SignFunc func(appKey, appSecret, timestamp string) string

// MD5Sign is the scheme the API verifies by default: the lowercase hex MD5
// of appKey+appSecret+timestamp.
func MD5Sign(appKey, appSecret, timestamp string) string {
	sum := md5.Sum([]byte(appKey + appSecret + timestamp))
	return hex.EncodeToString(sum[:])
}

// HMACSHA256Sign keys an HMAC-SHA256 of appKey+timestamp with the secret.
func HMACSHA256Sign(appKey, appSecret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(appKey + timestamp))
	return hex.EncodeToString(mac.Sum(nil))
}

// SignerFor returns the signer registered under method.
func SignerFor(method string) (SignFunc, error) {
	switch method {
	case "", "md5":
		return MD5Sign, nil
	case "hmac-sha256":
		return HMACSHA256Sign, nil
	}
	return nil, fmt.Errorf("unknown sign method %q", method)
}
