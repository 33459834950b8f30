package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/verte-zerg/cleanse369/internal/cycle"
)

func sampleState(t *testing.T, key string, checked int) *cycle.State {
	t.Helper()
	s, err := cycle.New(key, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	p, err := s.Program()
	require.NoError(t, err)
	n := 0
	for _, ph := range p.Phases {
		for _, day := range ph.Days() {
			for si, section := range ph.Sections {
				for ii := range section.Items {
					if n >= checked {
						return s
					}
					s.Set(cycle.Identity(s.ID, day, si, ii), true)
					n++
				}
			}
		}
	}
	return s
}

func TestTokenRoundTrip(t *testing.T) {
	for _, key := range []string{"original", "simplified", "advanced"} {
		for _, checked := range []int{0, 1, 40, 200} {
			s := sampleState(t, key, checked)
			token, err := EncodeToken(s)
			require.NoError(t, err)
			got := DecodeToken(token)
			require.NotNil(t, got)
			if diff := cmp.Diff(s, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		}
	}
}

func TestTokenIsURLSafe(t *testing.T) {
	token, err := EncodeToken(sampleState(t, "advanced", 200))
	require.NoError(t, err)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")
	// every task checked still fits comfortably in a URL
	assert.Less(t, len(token), 2000)
}

func TestDecodeTokenAcceptsPadding(t *testing.T) {
	s := sampleState(t, "original", 3)
	token, err := EncodeToken(s)
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	padded := base64.URLEncoding.EncodeToString(raw)
	got := DecodeToken(padded)
	require.NotNil(t, got)
	assert.Equal(t, s.Checks(), got.Checks())
}

func TestDecodeTokenFailuresReturnNil(t *testing.T) {
	valid, err := EncodeToken(sampleState(t, "original", 2))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":         "",
		"bad base64":    "!!!not-base64!!!",
		"not zlib":      base64.RawURLEncoding.EncodeToString([]byte("plain text")),
		"truncated":     valid[:len(valid)/2],
		"missing field": mustToken(t, `{"program_key":"original","start_iso":"2024-01-01","id":"x"}`),
		"bad date":      mustToken(t, `{"program_key":"original","start_iso":"Jan 1","id":"x","checks":{}}`),
		"bad program":   mustToken(t, `{"program_key":"keto","start_iso":"2024-01-01","id":"x","checks":{}}`),
		"not json":      mustToken(t, `{{{`),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Nil(t, DecodeToken(token))
			})
		})
	}
}

func mustToken(t *testing.T, payload string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write([]byte(payload))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return base64.RawURLEncoding.EncodeToString(buf.Bytes())
}

func TestFileRoundTrip(t *testing.T) {
	s := sampleState(t, "simplified", 17)
	data, err := MarshalFile(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"checks\"")
	for _, field := range requiredFields {
		assert.True(t, gjson.GetBytes(data, field).Exists(), field)
	}

	got, err := UnmarshalFile(data)
	require.NoError(t, err)
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("file round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalFileDropsFalseEntries(t *testing.T) {
	data := []byte(`{
  "program_key": "original",
  "start_iso": "2024-01-01",
  "id": "original|2024-01-01",
  "checks": {"original|2024-01-01|d1|s0|i0": true, "original|2024-01-01|d1|s1|i0": false}
}`)
	s, err := UnmarshalFile(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"original|2024-01-01|d1|s0|i0"}, s.Checks())
}

func TestUnmarshalFileValidation(t *testing.T) {
	cases := map[string]string{
		"missing checks": `{"program_key":"original","start_iso":"2024-01-01","id":"original|2024-01-01"}`,
		"missing all":    `{}`,
		"array":          `[1,2]`,
		"garbage":        `not json`,
		"checks list":    `{"program_key":"original","start_iso":"2024-01-01","id":"x","checks":[]}`,
		"checks strings": `{"program_key":"original","start_iso":"2024-01-01","id":"x","checks":{"a":"yes"}}`,
		"bad date":       `{"program_key":"original","start_iso":"2024-13-01","id":"x","checks":{}}`,
		"bad program":    `{"program_key":"keto","start_iso":"2024-01-01","id":"x","checks":{}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := UnmarshalFile([]byte(payload))
			assert.Nil(t, s)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
		})
	}
}

func TestValidationErrorListsMissingFields(t *testing.T) {
	_, err := UnmarshalFile([]byte(`{"program_key":"original","id":"x"}`))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"start_iso", "checks"}, verr.Missing)
	assert.Contains(t, err.Error(), "start_iso, checks")
}
