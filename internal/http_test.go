package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderTransport(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer token123")
	headers.Add("X-Trace", "a")
	headers.Add("X-Trace", "b")

	client := &http.Client{Transport: &HeaderTransport{Headers: headers}}

	req, err := http.NewRequest(http.MethodPost, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer token123", got.Get("Authorization"))
	assert.Equal(t, []string{"a", "b"}, got.Values("X-Trace"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request should not be modified")
}

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    http.Header
		wantErr bool
	}{
		{
			name:  "none",
			input: nil,
			want:  http.Header{},
		},
		{
			name:  "single",
			input: []string{"Authorization: Bearer abc"},
			want:  http.Header{"Authorization": {"Bearer abc"}},
		},
		{
			name:  "canonicalized and repeated",
			input: []string{"x-api-key:one", "X-Api-Key: two"},
			want:  http.Header{"X-Api-Key": {"one", "two"}},
		},
		{
			name:  "value with colon",
			input: []string{"Authorization: Basic dXNlcjpwYXNz:"},
			want:  http.Header{"Authorization": {"Basic dXNlcjpwYXNz:"}},
		},
		{
			name:  "secret reference kept verbatim",
			input: []string{"Authorization: op://vault/item/field"},
			want:  http.Header{"Authorization": {"op://vault/item/field"}},
		},
		{name: "missing colon", input: []string{"Authorization"}, wantErr: true},
		{name: "empty name", input: []string{": value"}, wantErr: true},
		{name: "space in name", input: []string{"Bad Name: value"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeaders(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
