package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"primex/api/internal/config"
	"primex/api/internal/models"
	"primex/api/internal/repository"
	"primex/api/internal/response"
)

// DeviceRegistry is the device-binding view of the data layer.
type DeviceRegistry interface {
	FindActive(ctx context.Context, userID int64, deviceID string) (models.Device, error)
	CountActive(ctx context.Context, userID int64) (int, error)
	Insert(ctx context.Context, device models.Device) error
	Touch(ctx context.Context, id int64) error
}

func deviceIdentity(c *gin.Context) (deviceID string, macAddress string) {
	deviceID = c.GetHeader("x-device-id")
	if deviceID == "" {
		deviceID = c.Query("device_id")
	}
	macAddress = c.GetHeader("x-mac-address")
	if macAddress == "" {
		macAddress = c.Query("mac_address")
	}
	return deviceID, macAddress
}

// DeviceLimit enforces the per-user active-device cap. Requests without
// a device identifier skip binding; known devices are refreshed; an
// unseen device is admitted only while the user is under the cap.
//
// The count check and the insert are not serialized across concurrent
// requests from the same user, so the cap is a soft limit: a race
// between two unseen devices can overshoot by one, correctable by admin
// revocation.
func DeviceLimit(cfg *config.AppConfig, devices DeviceRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			if _, isAdmin := CurrentAdmin(c); isAdmin {
				c.Next()
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		deviceID, macAddress := deviceIdentity(c)
		if deviceID == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		existing, err := devices.FindActive(ctx, user.ID, deviceID)
		switch {
		case err == nil:
			if err := devices.Touch(ctx, existing.ID); err != nil {
				response.AbortInternal(c, cfg.IsProduction(), "Device validation failed", err)
				return
			}

		case errors.Is(err, repository.ErrDeviceNotFound):
			count, err := devices.CountActive(ctx, user.ID)
			if err != nil {
				response.AbortInternal(c, cfg.IsProduction(), "Device validation failed", err)
				return
			}
			if count >= user.MaxDevices {
				response.AbortFail(c, http.StatusForbidden, "Maximum device limit reached")
				return
			}

			device := models.Device{
				UserID:     user.ID,
				DeviceID:   deviceID,
				DeviceName: c.GetHeader("User-Agent"),
				Status:     models.DeviceStatusActive,
			}
			if macAddress != "" {
				device.MACAddress = &macAddress
			}
			if err := devices.Insert(ctx, device); err != nil {
				response.AbortInternal(c, cfg.IsProduction(), "Device validation failed", err)
				return
			}

		default:
			response.AbortInternal(c, cfg.IsProduction(), "Device validation failed", err)
			return
		}

		c.Next()
	}
}
