package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
)

// Admin surface: the minimal manager-only CRUD needed to operate the core.

func requireManager(c *gin.Context) bool {
	if isManager, ok := utils.GetIsManagerFromContext(c.Request.Context()); !ok || !isManager {
		c.JSON(http.StatusForbidden, gin.H{"error": "manager role required"})
		return false
	}
	return true
}

func createStoreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireManager(c) {
			return
		}
		var input models.NewStore
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		store, err := models.CreateStore(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": store})
	}
}

func createProfileHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireManager(c) {
			return
		}
		var input models.NewProfile
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		profile, err := models.CreateProfile(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": profile})
	}
}

func createScheduleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireManager(c) {
			return
		}
		var input models.NewSchedule
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		schedule, err := models.CreateSchedule(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": schedule})
	}
}

func publishScheduleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requireManager(c) {
			return
		}
		scheduleId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
			return
		}

		if err := models.PublishSchedule(c.Request.Context(), scheduleId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": scheduleId, "status": "published"}})
	}
}
