package knowledge

import "encoding/json"

// ProbeReport is the outcome of a single diagnostic listing call.
// It describes the call even when the call failed; Err is set instead of returned.
type ProbeReport struct {
	OK        bool  // upstream answered with a 2xx status
	Status    int   // upstream HTTP status, 0 when no response arrived
	Timestamp int64 // unix seconds used in the checksum
	Checksum  string
	URL       string
	Mid       int64
	Size      int
	Body      json.RawMessage // upstream body when it is valid JSON, nil otherwise
	Raw       string          // upstream body as text
	Err       error
}
