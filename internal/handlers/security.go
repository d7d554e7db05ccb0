package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"primex/api/internal/repository"
	"primex/api/internal/response"
)

func (h HandlerSet) SecurityEvents(c *gin.Context) {
	limit := 20
	offset := 0

	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}

	events, err := h.events.ListRecent(c.Request.Context(), c.Query("severity"), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list security events failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to fetch recent events")
		return
	}

	items := make([]gin.H, 0, len(events))
	for _, event := range events {
		items = append(items, gin.H{
			"id":          event.ID,
			"event_type":  event.EventType,
			"severity":    event.Severity,
			"ip_address":  event.IPAddress,
			"endpoint":    event.Endpoint,
			"username":    event.Username,
			"description": event.Description,
			"created_at":  event.CreatedAt,
		})
	}

	response.OK(c, gin.H{
		"events": items,
		"limit":  limit,
		"offset": offset,
	})
}

func (h HandlerSet) BlockedAddresses(c *gin.Context) {
	blocked, err := h.blocks.ListActive(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list blocked addresses failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to fetch blocked addresses")
		return
	}

	items := make([]gin.H, 0, len(blocked))
	for _, b := range blocked {
		items = append(items, gin.H{
			"ip_address": b.IPAddress,
			"reason":     b.Reason,
			"expires_at": b.ExpiresAt,
			"blocked_at": b.BlockedAt,
			"permanent":  b.ExpiresAt == nil,
		})
	}

	response.OK(c, gin.H{"blocked": items})
}

type blockRequest struct {
	IPAddress       string `json:"ip_address" binding:"required"`
	Reason          string `json:"reason"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (h HandlerSet) BlockAddress(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "IP address is required")
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "Manually blocked"
	}

	ttl := time.Duration(req.DurationSeconds) * time.Second
	if err := h.monitor.Block(c.Request.Context(), req.IPAddress, reason, ttl); err != nil {
		h.log.Error().Err(err).Str("ip", req.IPAddress).Msg("block address failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to block address")
		return
	}

	response.Message(c, http.StatusOK, "Address blocked")
}

func (h HandlerSet) UnblockAddress(c *gin.Context) {
	ip := c.Param("ip")

	if err := h.monitor.Unblock(c.Request.Context(), ip); err != nil {
		if errors.Is(err, repository.ErrAddressNotBlocked) {
			response.Fail(c, http.StatusNotFound, "Address is not blocked")
			return
		}
		h.log.Error().Err(err).Str("ip", ip).Msg("unblock address failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to unblock address")
		return
	}

	response.Message(c, http.StatusOK, "Address unblocked")
}
