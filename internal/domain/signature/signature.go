// Package signature holds the JS-SDK signing request model.
package signature

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FlexString is a JSON scalar accepted as either a string or a number.
// It re-encodes in the same JSON kind it was decoded from.
type FlexString struct {
	value   string
	numeric bool
}

// NewFlexString creates a string-kind FlexString.
func NewFlexString(s string) FlexString { return FlexString{value: s} }

// String returns the textual value.
func (f FlexString) String() string { return f.value }

// IsEmpty reports whether the value is missing: absent, null, "" or numeric zero.
func (f FlexString) IsEmpty() bool { return f.value == "" || (f.numeric && f.value == "0") }

// UnmarshalJSON accepts a JSON string, number or null.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = FlexString{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode string: %w", err)
		}
		*f = FlexString{value: s}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number: %w", err)
		}
		v, err := n.Float64()
		if err != nil {
			return fmt.Errorf("expected string or number: %w", err)
		}
		*f = FlexString{value: formatNumber(v), numeric: true}
	}
	return nil
}

// formatNumber renders a number as plain decimal text, so 1.7e9 signs as 1700000000.
func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// MarshalJSON writes the value back as a number when it arrived as one.
func (f FlexString) MarshalJSON() ([]byte, error) {
	if f.numeric {
		return []byte(f.value), nil
	}
	return json.Marshal(f.value)
}

// Request is a caller's signing request.
type Request struct {
	URL       string     `json:"url"`
	NonceStr  string     `json:"noncestr"`
	Timestamp FlexString `json:"timestamp"`
}

// Validate checks that url, noncestr and timestamp are all present.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r, //nolint:wrapcheck // ozzo errors carry field names
		validation.Field(&r.URL, validation.Required),
		validation.Field(&r.NonceStr, validation.Required),
		validation.Field(&r.Timestamp, validation.By(requiredFlex)),
	)
}

func requiredFlex(v any) error {
	f, _ := v.(FlexString)
	if f.IsEmpty() {
		return validation.ErrRequired
	}
	return nil
}

// Payload builds the string that is hashed into the signature.
// Field order and the & separator are fixed by the JS-SDK contract.
func Payload(ticket, nonceStr, timestamp, url string) string {
	return "jsapi_ticket=" + ticket +
		"&noncestr=" + nonceStr +
		"&timestamp=" + timestamp +
		"&url=" + url
}

// Result is a computed signature echoed with the signed parameters.
type Result struct {
	Signature string     `json:"signature"`
	NonceStr  string     `json:"noncestr"`
	Timestamp FlexString `json:"timestamp"`
	AppID     string     `json:"appId"`
}
