package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/dispatcher"
	"github.com/nontawat/roombot/internal/repository"
	"github.com/nontawat/roombot/internal/service/booking"
	"github.com/nontawat/roombot/internal/service/session"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryBookingRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryBookingRepository()
	rooms := catalog.New(nil)
	svc := booking.NewBookingService(repo, rooms, time.Minute)
	disp := dispatcher.New(session.NewEngine(svc, rooms), svc, rooms)

	router := gin.New()
	root := router.Group("/")
	NewWebhookHandler(disp).Register(root)
	NewRoomHandler(rooms, svc).Register(root)
	return router, repo
}

type replyEnvelope struct {
	Replies []struct {
		UserID string           `json:"user_id"`
		Reply  dispatcher.Reply `json:"reply"`
	} `json:"replies"`
}

func postEvent(t *testing.T, router *gin.Engine, body string) replyEnvelope {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var env replyEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func messageEvent(userID, text string) string {
	return fmt.Sprintf(`{"events":[{"type":"message","source":{"userId":%q},"message":{"text":%q}}]}`, userID, text)
}

func postbackEvent(userID, data string) string {
	return fmt.Sprintf(`{"events":[{"type":"postback","source":{"userId":%q},"postback":{"data":%q}}]}`, userID, data)
}

func TestWebhook_BadJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("not json"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_HelpFallback(t *testing.T) {
	router, _ := newTestRouter(t)

	env := postEvent(t, router, messageEvent("U", "hello there"))
	assert.Len(t, env.Replies, 1)
	assert.Contains(t, env.Replies[0].Reply.Text, "book")
}

func TestWebhook_MalformedPostbackGetsHelp(t *testing.T) {
	router, _ := newTestRouter(t)

	env := postEvent(t, router, postbackEvent("U", "bogus_payload"))
	assert.Len(t, env.Replies, 1)
	assert.Contains(t, env.Replies[0].Reply.Text, "book")
}

func TestWebhook_IgnoresEventsWithoutUser(t *testing.T) {
	router, _ := newTestRouter(t)

	env := postEvent(t, router, `{"events":[{"type":"message","message":{"text":"book"}},{"type":"follow"}]}`)
	assert.Empty(t, env.Replies)
}

func TestWebhook_FullBookingConversation(t *testing.T) {
	router, repo := newTestRouter(t)

	env := postEvent(t, router, messageEvent("U", "book"))
	assert.Len(t, env.Replies[0].Reply.Options, 3)

	env = postEvent(t, router, postbackEvent("U", "room_1"))
	assert.Contains(t, env.Replies[0].Reply.Text, "Main Conference Room")

	env = postEvent(t, router, messageEvent("U", "today"))
	assert.NotEmpty(t, env.Replies[0].Reply.Options)

	env = postEvent(t, router, postbackEvent("U", "time_09:00_10:00"))
	assert.Contains(t, env.Replies[0].Reply.Text, "title")

	postEvent(t, router, messageEvent("U", "Standup"))
	env = postEvent(t, router, messageEvent("U", "Alice"))
	assert.Contains(t, env.Replies[0].Reply.Text, "Booked!")

	bookings, err := repo.ListConfirmedByUser(context.Background(), "U")
	assert.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, "09:00", bookings[0].StartTime)

	// A second user is refused the same slot at finalize.
	postEvent(t, router, postbackEvent("V", "room_1"))
	postEvent(t, router, messageEvent("V", "today"))
	env = postEvent(t, router, postbackEvent("V", "time_09:00_10:00"))
	assert.Contains(t, env.Replies[0].Reply.Text, "no longer available")
}

func TestListRooms(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var rooms []map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &rooms))
	assert.Len(t, rooms, 3)
}

func TestAvailableSlotsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms/1/slots?date=2024-09-25", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Date  string `json:"date"`
		Slots []struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"slots"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2024-09-25", resp.Date)
	assert.Len(t, resp.Slots, 8)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/rooms/1/slots?date=garbage", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/rooms/99/slots?date=2024-09-25", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDayScheduleEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schedule?date=2024-09-25", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Date  string `json:"date"`
		Rooms []struct {
			Room struct {
				ID int64 `json:"id"`
			} `json:"room"`
		} `json:"rooms"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Rooms, 3)
}
