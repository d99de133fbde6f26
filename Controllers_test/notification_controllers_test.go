package Controllers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/catering-app/hub"
)

func TestNotificationsStreamDeliversOwnerEvents(t *testing.T) {
	env := newTestEnv(t)
	owner, ownerToken := env.user(t, "owner")
	_, clientToken := env.user(t, "client")
	id := env.createEstablishment(t, ownerToken, "Pelmennaya")

	server := httptest.NewServer(env.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/notifications?token=" + ownerToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.app.Hub.Connected(owner.ID) == 1 }, time.Second, 10*time.Millisecond)

	env.book(t, clientToken, env.tables(t, id)[0].ID)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg hub.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "booking_created", msg.Event)
}

func TestNotificationsStreamRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	server := httptest.NewServer(env.router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/notifications"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
