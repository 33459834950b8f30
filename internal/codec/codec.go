// Package codec converts cycle state to and from its portable forms: a
// compact URL token and a JSON export file.
package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/verte-zerg/cleanse369/internal/catalog"
	"github.com/verte-zerg/cleanse369/internal/cycle"
)

// Required top-level fields of both forms.
var requiredFields = []string{"program_key", "start_iso", "id", "checks"}

// ValidationError rejects an import.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("not a saved cycle: missing %s", strings.Join(e.Missing, ", "))
	}
	return "not a saved cycle: " + e.Reason
}

type wireState struct {
	ProgramKey string          `json:"program_key"`
	StartISO   string          `json:"start_iso"`
	ID         string          `json:"id"`
	Checks     map[string]bool `json:"checks"`
}

func toWire(s *cycle.State) wireState {
	checks := make(map[string]bool, len(s.Completed))
	for id := range s.Completed {
		checks[id] = true
	}
	return wireState{
		ProgramKey: s.ProgramKey,
		StartISO:   s.StartISO(),
		ID:         s.ID,
		Checks:     checks,
	}
}

// EncodeToken produces the URL token: compact JSON, zlib, unpadded URL-safe base64.
func EncodeToken(s *cycle.State) (string, error) {
	raw, err := json.Marshal(toWire(s))
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("failed to compress state: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeToken reverses EncodeToken. Any failure yields nil: a bad token
// just means there is no prior state.
func DecodeToken(token string) *cycle.State {
	token = strings.TrimRight(strings.TrimSpace(token), "=")
	if token == "" {
		return nil
	}
	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil
	}
	defer func() {
		_ = zr.Close()
	}()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil
	}
	s, err := parse(raw)
	if err != nil {
		return nil
	}
	return s
}

// MarshalFile renders the export file. Only checked identities are written.
func MarshalFile(s *cycle.State) ([]byte, error) {
	raw, err := json.Marshal(toWire(s))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return pretty.PrettyOptions(raw, &pretty.Options{Indent: "  ", SortKeys: true}), nil
}

// UnmarshalFile parses an export file. Unchecked entries are dropped.
func UnmarshalFile(data []byte) (*cycle.State, error) {
	return parse(data)
}

func parse(data []byte) (*cycle.State, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ValidationError{Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ValidationError{Reason: "expected a JSON object"}
	}
	var missing []string
	for _, field := range requiredFields {
		if !root.Get(field).Exists() {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}
	if !root.Get("checks").IsObject() {
		return nil, &ValidationError{Reason: "checks must be an object"}
	}

	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	start, err := cycle.ParseDate(w.StartISO)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("invalid start_iso %q", w.StartISO)}
	}
	if _, ok := catalog.Lookup(w.ProgramKey); !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown program_key %q", w.ProgramKey)}
	}

	s := &cycle.State{
		ProgramKey: w.ProgramKey,
		StartDate:  start,
		ID:         w.ID,
		Completed:  make(map[string]struct{}, len(w.Checks)),
	}
	for id, done := range w.Checks {
		if done {
			s.Completed[id] = struct{}{}
		}
	}
	return s, nil
}
