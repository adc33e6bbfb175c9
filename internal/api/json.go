package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/alexanderramin/staffplan/internal/staffing"
)

// Problem represents an RFC7807 problem details response body.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

const maxBodyBytes = 1 << 16

var errMissingValue = errors.New(`body must be {"value": ...}`)

type valueBody struct {
	Value json.RawMessage `json:"value"`
}

func readValue(r *http.Request) (json.RawMessage, error) {
	var body valueBody
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	if len(body.Value) == 0 || string(body.Value) == "null" {
		return nil, errMissingValue
	}
	return body.Value, nil
}

// readCount accepts a JSON number or string. Strings go through the same
// lenient parsing as keyboard input, so "abc" becomes 0.
func readCount(r *http.Request) (int, error) {
	raw, err := readValue(r)
	if err != nil {
		return 0, err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return staffing.ParseCount(text), nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, errMissingValue
	}
	return int(math.Round(n)), nil
}

// readText accepts a JSON string, or a number rendered as text.
func readText(r *http.Request) (string, error) {
	raw, err := readValue(r)
	if err != nil {
		return "", err
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errMissingValue
	}
	return n.String(), nil
}
