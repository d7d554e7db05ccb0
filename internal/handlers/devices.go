package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"primex/api/internal/middleware"
	"primex/api/internal/repository"
	"primex/api/internal/response"
)

func (h HandlerSet) ListDevices(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	devices, err := h.devices.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("list devices failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to fetch devices")
		return
	}

	items := make([]gin.H, 0, len(devices))
	for _, device := range devices {
		items = append(items, gin.H{
			"device_id":   device.DeviceID,
			"mac_address": device.MACAddress,
			"device_name": device.DeviceName,
			"status":      device.Status,
			"last_seen":   device.LastSeen,
		})
	}

	response.OK(c, gin.H{
		"devices":     items,
		"max_devices": user.MaxDevices,
	})
}

// RevokeDevice logically deletes a device binding, freeing a slot under
// the user's device cap.
func (h HandlerSet) RevokeDevice(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	deviceID := c.Param("deviceId")

	if err := h.devices.Revoke(c.Request.Context(), userID, deviceID); err != nil {
		if errors.Is(err, repository.ErrDeviceNotFound) {
			response.Fail(c, http.StatusNotFound, "Device not found")
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Str("device_id", deviceID).Msg("revoke device failed")
		response.Fail(c, http.StatusInternalServerError, "Failed to revoke device")
		return
	}

	response.Message(c, http.StatusOK, "Device revoked")
}
