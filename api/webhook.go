package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nontawat/roombot/internal/dispatcher"
)

// WebhookHandler receives the messaging channel's event batches and feeds
// them through the dispatcher. Signature verification sits in front of this
// handler at the proxy; the payload shape mirrors the channel's webhook.
type WebhookHandler struct {
	dispatcher *dispatcher.Dispatcher
}

type webhookEvent struct {
	Type   string `json:"type"`
	Source struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
	Postback struct {
		Data string `json:"data"`
	} `json:"postback"`
}

type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

type webhookReply struct {
	UserID string           `json:"user_id"`
	Reply  dispatcher.Reply `json:"reply"`
}

func NewWebhookHandler(d *dispatcher.Dispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: d}
}

func (h *WebhookHandler) Register(router *gin.RouterGroup) {
	router.POST("/webhook", h.handle)
}

func (h *WebhookHandler) handle(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replies := make([]webhookReply, 0, len(req.Events))
	for _, ev := range req.Events {
		userID := ev.Source.UserID
		if userID == "" {
			continue
		}

		var reply dispatcher.Reply
		switch ev.Type {
		case "message":
			reply = h.dispatcher.HandleText(c.Request.Context(), userID, ev.Message.Text)
		case "postback":
			action, err := dispatcher.ParsePostback(ev.Postback.Data)
			if err != nil {
				// A malformed postback gets the help fallback, same as
				// unrecognized text.
				reply = h.dispatcher.HandleText(c.Request.Context(), userID, "help")
			} else {
				reply = h.dispatcher.HandleAction(c.Request.Context(), userID, action)
			}
		default:
			continue
		}
		replies = append(replies, webhookReply{UserID: userID, Reply: reply})
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}
