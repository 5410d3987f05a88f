package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidhub/internal/domain"
)

type createChannelRequest struct {
	ChannelName   string `json:"channelName"`
	Description   string `json:"description"`
	ChannelBanner string `json:"channelBanner"`
}

type updateChannelRequest struct {
	ChannelName   *string `json:"channelName"`
	Description   *string `json:"description"`
	ChannelBanner *string `json:"channelBanner"`
}

func (h *Handler) createChannel(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	identity := currentIdentity(c)
	channel, err := h.channels.Create(c.Request.Context(), identity.ID, req.ChannelName, req.Description, req.ChannelBanner)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondChannel(c, http.StatusCreated, channel)
}

func (h *Handler) myChannel(c *gin.Context) {
	channel, err := h.channels.GetByOwner(c.Request.Context(), currentIdentity(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondChannel(c, http.StatusOK, channel)
}

func (h *Handler) getChannel(c *gin.Context) {
	channel, err := h.channels.GetByChannelID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondChannel(c, http.StatusOK, channel)
}

func (h *Handler) updateChannel(c *gin.Context) {
	var req updateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	channel, err := h.channels.Update(c.Request.Context(), c.Param("id"), currentIdentity(c).ID, domain.ChannelUpdate{
		Name:        req.ChannelName,
		Description: req.Description,
		Banner:      req.ChannelBanner,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.respondChannel(c, http.StatusOK, channel)
}
