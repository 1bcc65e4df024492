package qiyu

import (
	"crypto/md5" //nolint:gosec // vendor checksum scheme, not a security primitive
	"crypto/sha1" //nolint:gosec // vendor checksum scheme, not a security primitive
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// listRequest is the listing body. Field order is part of the checksum: {"mid":..,"size":..}.
type listRequest struct {
	Mid  int64 `json:"mid"`
	Size int   `json:"size"`
}

// Signature is the set of query parameters that authenticate one call.
type Signature struct {
	ContentHash string // md5 of the body, lowercase hex
	Time        int64  // unix seconds
	Checksum    string // sha1(secret + ContentHash + Time), lowercase hex
}

// Sign computes the checksum for body at the given instant.
func Sign(secret string, body []byte, now time.Time) Signature {
	md5sum := md5.Sum(body) //nolint:gosec // see import
	contentHash := hex.EncodeToString(md5sum[:])
	ts := now.Unix()
	return Signature{
		ContentHash: contentHash,
		Time:        ts,
		Checksum:    Checksum(secret, contentHash, ts),
	}
}

// Checksum is sha1(secret + contentHash + unixSeconds) as lowercase hex.
func Checksum(secret, contentHash string, unixSeconds int64) string {
	sum := sha1.Sum([]byte(secret + contentHash + strconv.FormatInt(unixSeconds, 10))) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

func encodeListRequest(mid int64, size int) ([]byte, error) {
	body, err := json.Marshal(listRequest{Mid: mid, Size: size})
	if err != nil {
		return nil, fmt.Errorf("encode list request: %w", err)
	}
	return body, nil
}
