package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
)

type kioskSessionRequest struct {
	KioskToken string `json:"kiosk_token" binding:"required"`
	ProfileId  int    `json:"profile_id" binding:"required"`
	Pin        string `json:"pin" binding:"required"`
}

type managerSessionRequest struct {
	ProfileId int    `json:"profile_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// kioskSessionHandler exchanges a kiosk token + profile PIN for an
// employee session scoped to the kiosk's store.
func kioskSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req kioskSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		profile, store, err := models.AuthenticateKiosk(c.Request.Context(), req.KioskToken, req.ProfileId, req.Pin)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := utils.JwtGenerateEmployee(profile.ID, store.ID)
		if err != nil {
			config.LogError(config.GetLogger(), "sessionHandlers.go", "kioskSessionHandler", "JwtGenerateEmployee", profile.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"token":    token,
			"profile":  profile,
			"store_id": store.ID,
		}})
	}
}

// managerSessionHandler exchanges a password for a manager session covering
// all managed stores.
func managerSessionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req managerSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		profile, storeIds, err := models.AuthenticateManager(c.Request.Context(), req.ProfileId, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := utils.JwtGenerateManager(profile.ID, storeIds)
		if err != nil {
			config.LogError(config.GetLogger(), "sessionHandlers.go", "managerSessionHandler", "JwtGenerateManager", profile.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"token":     token,
			"profile":   profile,
			"store_ids": storeIds,
		}})
	}
}

// respondError maps domain errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorAlreadyActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorReadOnly):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}
