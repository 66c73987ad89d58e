package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/matzehuels/newarch/pkg/errors"
	"github.com/matzehuels/newarch/pkg/integrations"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Entry
	}{
		{
			name: "new architecture flag",
			body: `{"libraries":[{"npmPkg":"react-navigation","newArchitecture":true}]}`,
			want: Entry{Found: true, Supported: true, Package: "react-navigation"},
		},
		{
			name: "expo go flag",
			body: `{"libraries":[{"expoGo":true,"newArchitecture":false}]}`,
			want: Entry{Found: true, Supported: true},
		},
		{
			name: "github flag",
			body: `{"libraries":[{"github":{"newArchitecture":true}}]}`,
			want: Entry{Found: true, Supported: true},
		},
		{
			name: "explicit false",
			body: `{"libraries":[{"newArchitecture":false,"github":{"newArchitecture":false}}]}`,
			want: Entry{Found: true, Supported: false},
		},
		{
			name: "first record wins",
			body: `{"libraries":[{"newArchitecture":false},{"newArchitecture":true}]}`,
			want: Entry{Found: true, Supported: false},
		},
		{
			name: "record without signals",
			body: `{"libraries":[{"npmPkg":"x","github":{}}]}`,
			want: Entry{Found: false, Package: "x"},
		},
		{
			name: "empty array",
			body: `{"libraries":[]}`,
			want: Entry{},
		},
		{
			name: "absent array",
			body: `{}`,
			want: Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("search"); got != "react-navigation" {
					t.Errorf("search = %q, want %q", got, "react-navigation")
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(integrations.NewClient(nil, integrations.WithHTTPClient(server.Client())), server.URL)
			got, err := c.Lookup(context.Background(), "react-navigation")
			if err != nil {
				t.Fatalf("Lookup() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Lookup() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLookupScopedNameIsEscaped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "@react-native-community/slider" {
			t.Errorf("search = %q", got)
		}
		w.Write([]byte(`{"libraries":[]}`))
	}))
	defer server.Close()

	c := NewClient(integrations.NewClient(nil, integrations.WithHTTPClient(server.Client())), server.URL)
	if _, err := c.Lookup(context.Background(), "@react-native-community/slider"); err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.Code
	}{
		{"server error", http.StatusInternalServerError, "", apperrors.ErrCodeNetwork},
		{"malformed json", http.StatusOK, `{"libraries":`, apperrors.ErrCodeParse},
		{"wrong shape", http.StatusOK, `{"libraries":{"a":1}}`, apperrors.ErrCodeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := NewClient(integrations.NewClient(nil, integrations.WithHTTPClient(server.Client())), server.URL)
			_, err := c.Lookup(context.Background(), "lib")
			if got := apperrors.GetCode(err); got != tt.wantCode {
				t.Errorf("Lookup() code = %q, want %q (err = %v)", got, tt.wantCode, err)
			}
		})
	}
}
