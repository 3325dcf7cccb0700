package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nontawat/roombot/internal/catalog"
	"github.com/nontawat/roombot/internal/schedule"
	"github.com/nontawat/roombot/internal/service/booking"
)

// RoomHandler serves the read-only views: the room catalog, a day's
// schedule, and a user's bookings.
type RoomHandler struct {
	rooms    *catalog.Catalog
	bookings booking.BookingUseCase
}

func NewRoomHandler(rooms *catalog.Catalog, bookings booking.BookingUseCase) *RoomHandler {
	return &RoomHandler{rooms: rooms, bookings: bookings}
}

func (h *RoomHandler) Register(router *gin.RouterGroup) {
	router.GET("/rooms", h.listRooms)
	router.GET("/rooms/:id/slots", h.availableSlots)
	router.GET("/schedule", h.daySchedule)
	router.GET("/users/:userId/bookings", h.userBookings)
}

func (h *RoomHandler) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.rooms.List())
}

func (h *RoomHandler) availableSlots(c *gin.Context) {
	roomID, ok := parseRoomID(c)
	if !ok {
		return
	}
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	slots, err := h.bookings.AvailableSlots(c.Request.Context(), roomID, date)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (h *RoomHandler) daySchedule(c *gin.Context) {
	date, ok := parseDateParam(c)
	if !ok {
		return
	}

	summaries, err := h.bookings.DaySchedule(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "rooms": summaries})
}

func (h *RoomHandler) userBookings(c *gin.Context) {
	bookings, err := h.bookings.MyBookings(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func parseRoomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return 0, false
	}
	return id, true
}

// parseDateParam reads ?date=; empty means today.
func parseDateParam(c *gin.Context) (string, bool) {
	raw := c.Query("date")
	if raw == "" {
		return schedule.Today(time.Now()), true
	}
	date, err := schedule.ParseDate(time.Now(), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return "", false
	}
	return date, true
}
