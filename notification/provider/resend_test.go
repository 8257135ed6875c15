package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chilisites/postsapi/notification/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessage = domain.Message{
	From:    "ChiliSites <contacto@chilisites.com>",
	To:      []string{"ana@example.com"},
	Subject: "Hola",
	HTML:    "<p>Hola</p>",
}

func TestResendSender_Send(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	sender, err := NewResendSender("re_test", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	res, err := sender.Send(context.Background(), testMessage)
	require.NoError(t, err)

	assert.Equal(t, "49a3999c-0ce1-4ea6-ab68-afcd6dc2e794", res.ID)
	assert.Equal(t, "ChiliSites <contacto@chilisites.com>", got["from"])
	assert.Equal(t, []any{"ana@example.com"}, got["to"])
	assert.Equal(t, "Hola", got["subject"])
	assert.Equal(t, "<p>Hola</p>", got["html"])
}

func TestResendSender_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	sender, err := NewResendSender("re_test", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	res, err := sender.Send(context.Background(), testMessage)
	assert.Nil(t, res)
	assert.Error(t, err)
}

func TestResendSender_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	sender, err := NewResendSender("re_test", WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = sender.Send(ctx, testMessage)
	assert.Error(t, err)
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)
}

func TestWithBaseURL_Invalid(t *testing.T) {
	_, err := NewResendSender("re_test", WithBaseURL("://bad"))
	assert.Error(t, err)
}
