package scorer

import (
	"encoding/json"
	"strings"
)

// FormatMessage is returned to callers whose request does not parse.
const FormatMessage = "Incorrect request format. Please use q_sr_id= & m_sr_id="

const (
	queryKey = "q_sr_id="
	matchKey = "m_sr_id="
)

// Pair names the query record and the match candidate.
type Pair struct {
	QueryID string `json:"q_sr_id"`
	MatchID string `json:"m_sr_id"`
}

// FormatError reports a malformed request body.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string { return FormatMessage }

// ErrorKind classifies the error for response mapping.
func (e *FormatError) ErrorKind() string { return "format" }

// ParseQuery accepts exactly q_sr_id=<id>&m_sr_id=<id>, in that order, with
// non-empty values. Values are returned verbatim.
func ParseQuery(raw string) (Pair, error) {
	parts := strings.Split(raw, "&")
	if len(parts) != 2 {
		return Pair{}, &FormatError{Input: raw}
	}
	query, ok := strings.CutPrefix(parts[0], queryKey)
	if !ok || query == "" {
		return Pair{}, &FormatError{Input: raw}
	}
	match, ok := strings.CutPrefix(parts[1], matchKey)
	if !ok || match == "" {
		return Pair{}, &FormatError{Input: raw}
	}
	return Pair{QueryID: query, MatchID: match}, nil
}

// DecodeBody unwraps a request body. Clients may send the query string as is
// or as a JSON string literal; surrounding whitespace is dropped either way.
func DecodeBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	}
	return trimmed
}
