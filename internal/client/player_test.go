package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerAuthenticate_Success(t *testing.T) {
	playerID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/authn", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"` + playerID.String() + `"}`))
	}))
	defer srv.Close()

	c := NewPlayerClient(srv.URL, time.Second)

	id, err := c.Authenticate(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, playerID, id)
}

func TestPlayerAuthenticate_BadToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewPlayerClient(srv.URL, time.Second)

	_, err := c.Authenticate(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPlayerAuthenticate_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewPlayerClient(srv.URL, time.Second)

	_, err := c.Authenticate(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestPlayerAuthenticate_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewPlayerClient(srv.URL, time.Second)

	_, err := c.Authenticate(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestPlayerAuthenticate_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewPlayerClient(srv.URL, time.Second)

	_, err := c.Authenticate(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInternal)
}
