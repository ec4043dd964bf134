package volume

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebAPI_SetVolume(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	api := NewWebAPI(server.URL+"/", 0)
	require.NoError(t, api.SetVolume(context.Background(), "A1", 35))

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/v1/me/player/volume", gotPath)
	assert.Equal(t, "volume_percent=35", gotQuery)
	assert.Equal(t, "Bearer A1", gotAuth)
}

func TestWebAPI_SetVolume_Responses(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantErr      bool
		unauthorized bool
		wantMessage  string
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "accepted", status: http.StatusAccepted},
		{
			name:         "expired token",
			status:       http.StatusUnauthorized,
			body:         `{"error":{"status":401,"message":"The access token expired"}}`,
			wantErr:      true,
			unauthorized: true,
			wantMessage:  "API error 401: The access token expired",
		},
		{
			name:        "no active device",
			status:      http.StatusNotFound,
			body:        `{"error":{"status":404,"message":"Player command failed: No active device found"}}`,
			wantErr:     true,
			wantMessage: "API error 404: Player command failed: No active device found",
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "upstream unavailable",
			wantErr:     true,
			wantMessage: "API error 502: upstream unavailable",
		},
		{
			name:        "string error",
			status:      http.StatusBadRequest,
			body:        `{"error":"invalid_request"}`,
			wantErr:     true,
			wantMessage: "API error 400: invalid_request",
		},
		{
			name:        "ok is not success",
			status:      http.StatusOK,
			body:        `{}`,
			wantErr:     true,
			wantMessage: "API error 200: {}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewWebAPI(server.URL, 0).SetVolume(context.Background(), "token", 50)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMessage, err.Error())
			assert.Equal(t, tt.unauthorized, errors.Is(err, ErrUnauthorized))
		})
	}
}

func TestWebAPI_SetVolume_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	err := NewWebAPI(server.URL, 0).SetVolume(context.Background(), "token", 50)
	require.Error(t, err)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Contains(t, err.Error(), "Request error")
	assert.False(t, errors.Is(err, ErrUnauthorized))
}
