package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
)

func clockInHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewClockIn
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		result, err := models.ClockIn(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		if result.Unscheduled {
			// Structured rejection: retry with force=true after approval.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result, "code": "UNSCHEDULED"})
			return
		}
		if result.DrawerRequiresConfirm {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result, "code": "REQUIRES_CONFIRM"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": result})
	}
}

func clockOutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
			return
		}
		var input models.NewClockOut
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		result, err := models.ClockOut(c.Request.Context(), shiftId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		if result.DrawerRequiresConfirm {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result, "code": "REQUIRES_CONFIRM"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

// manualCloseHandler ends a shift on the employee's behalf when the kiosk
// flow was missed. The close is flagged for manager review.
func manualCloseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
			return
		}
		var input models.NewClockOut
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		input.Manual = true

		result, err := models.ClockOut(c.Request.Context(), shiftId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		if result.DrawerRequiresConfirm {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result, "code": "REQUIRES_CONFIRM"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

type overrideRequest struct {
	Note string `json:"note" binding:"required"`
}

func approveOverrideHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
			return
		}
		var req overrideRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "note is required"})
			return
		}

		shift, err := models.ApproveOverride(c.Request.Context(), shiftId, req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": shift})
	}
}

type manualCloseReviewRequest struct {
	Disposition string `json:"disposition" binding:"required"`
}

func reviewManualCloseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
			return
		}
		var req manualCloseReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "disposition is required"})
			return
		}

		shift, err := models.ReviewManualClose(c.Request.Context(), shiftId, req.Disposition)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": shift})
	}
}

func openShiftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		profileId, ok := utils.GetProfileIdFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		shift, err := models.GetOpenShift(c.Request.Context(), profileId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": shift})
	}
}

func drawerCountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		shiftId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shift id"})
			return
		}
		var input models.NewDrawerCount
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		result, err := models.RecordShiftDrawerCount(c.Request.Context(), shiftId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		if result.RequiresConfirm {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result, "code": "REQUIRES_CONFIRM"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}

func salesCheckpointHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSalesCheckpoint
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		result, err := models.SubmitSalesCheckpoint(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		if result.RequiresSalesConfirm {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"data": result, "code": "REQUIRES_CONFIRM"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}
