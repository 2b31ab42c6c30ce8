package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
)

func saveCloseoutDraftHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCloseoutDraft
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		closeout, err := models.SaveCloseoutDraft(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": closeout})
	}
}

func submitCloseoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		closeoutId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid closeout id"})
			return
		}

		closeout, err := models.SubmitCloseout(c.Request.Context(), closeoutId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": closeout})
	}
}

type closeoutReviewRequest struct {
	Note string `json:"note"`
}

func reviewCloseoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		closeoutId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid closeout id"})
			return
		}
		var req closeoutReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		closeout, err := models.ReviewCloseout(c.Request.Context(), closeoutId, req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": closeout})
	}
}

func getCloseoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		closeoutId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid closeout id"})
			return
		}

		closeout, err := models.GetCloseout(c.Request.Context(), closeoutId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": closeout})
	}
}

func getCloseoutByDateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		storeId, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		date, err := time.Parse("2006-01-02", c.Param("date"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}

		closeout, err := models.GetCloseoutByDate(c.Request.Context(), storeId, date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": closeout})
	}
}

func backfillCloseoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCloseoutBackfill
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
			return
		}

		closeout, err := models.BackfillCloseout(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": closeout})
	}
}
