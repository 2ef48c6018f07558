package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/corey888773/notification-scheduler/internal/api"
	"github.com/corey888773/notification-scheduler/internal/bus"
	"github.com/corey888773/notification-scheduler/internal/dispatch"
	"github.com/corey888773/notification-scheduler/internal/domain"
	"github.com/corey888773/notification-scheduler/internal/store"
)

func newRouter() http.Handler {
	s := store.NewMockStore()
	p := bus.NewMockPublisher()
	svc := dispatch.NewService(s, p, zap.NewNop(), dispatch.Hooks{})
	return api.NewRouter(svc, zap.NewNop(), nil)
}

func TestCreate_Returns201AndID(t *testing.T) {
	r := newRouter()

	body, _ := json.Marshal(domain.CreateRequest{
		Content: "hello",
		Channel: domain.ChannelEmail,
		Recipient: domain.Recipient{
			ID:             "u1",
			TimezoneOffset: "+00:00",
		},
		ScheduledTime: time.Now().UTC(),
		Priority:      domain.PriorityLow,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["id"])
}

func TestCreate_InvalidChannelReturns400(t *testing.T) {
	r := newRouter()

	body, _ := json.Marshal(domain.CreateRequest{
		Content:       "hello",
		Channel:       "fax",
		Recipient:     domain.Recipient{ID: "u1", TimezoneOffset: "+00:00"},
		ScheduledTime: time.Now().UTC(),
		Priority:      domain.PriorityLow,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestList_ReturnsCreatedNotification(t *testing.T) {
	r := newRouter()

	body, _ := json.Marshal(domain.CreateRequest{
		Content:       "hello",
		Channel:       domain.ChannelPush,
		Recipient:     domain.Recipient{ID: "u1", TimezoneOffset: "+00:00"},
		ScheduledTime: time.Now().UTC(),
		Priority:      domain.PriorityHigh,
	})
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", bytes.NewReader(body))
	createW := httptest.NewRecorder()
	r.ServeHTTP(createW, createReq)
	require.Equal(t, http.StatusCreated, createW.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	listW := httptest.NewRecorder()
	r.ServeHTTP(listW, listReq)
	require.Equal(t, http.StatusOK, listW.Code)

	var notifications []domain.Notification
	require.NoError(t, json.Unmarshal(listW.Body.Bytes(), &notifications))
	require.Len(t, notifications, 1)
	require.Equal(t, "hello", notifications[0].Content)
}

func TestCancel_ReturnsOK(t *testing.T) {
	r := newRouter()

	body, _ := json.Marshal(domain.CreateRequest{
		Content:       "hello",
		Channel:       domain.ChannelPush,
		Recipient:     domain.Recipient{ID: "u1", TimezoneOffset: "+00:00"},
		ScheduledTime: time.Now().UTC().Add(time.Hour),
		Priority:      domain.PriorityHigh,
	})
	createReq := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", bytes.NewReader(body))
	createW := httptest.NewRecorder()
	r.ServeHTTP(createW, createReq)

	var created map[string]string
	require.NoError(t, json.Unmarshal(createW.Body.Bytes(), &created))

	cancelReq := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/"+created["id"], nil)
	cancelW := httptest.NewRecorder()
	r.ServeHTTP(cancelW, cancelReq)

	require.Equal(t, http.StatusOK, cancelW.Code)
}

func TestHealth_ReturnsOK(t *testing.T) {
	r := newRouter()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
