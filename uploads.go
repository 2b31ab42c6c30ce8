package main

import (
	"bytes"
	"context"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
)

type uploadSignRequest struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

type uploadCompleteRequest struct {
	ObjectKey  string `json:"objectKey"`
	MimeType   string `json:"mimeType"`
	CloseoutId int    `json:"closeoutId"`
	Kind       string `json:"kind"`
}

type uploadCompleteResponse struct {
	ImageURL           string `json:"imageUrl"`
	ThumbnailURL       string `json:"thumbnailUrl,omitempty"`
	ObjectKey          string `json:"objectKey"`
	ThumbnailObjectKey string `json:"thumbnailObjectKey,omitempty"`
	PhotoId            int    `json:"photoId"`
}

const maxUploadSizeBytes int64 = 5 * 1024 * 1024

var imageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// signUploadHandler issues a short-lived signed PUT URL for closeout photo
// evidence. The client uploads directly to the bucket; the API never
// proxies the bytes.
func signUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		storeId, ok := utils.GetStoreIdFromContext(c.Request.Context())
		if !ok || storeId == 0 {
			if ids, mok := utils.GetManagedStoreIdsFromContext(c.Request.Context()); mok && len(ids) > 0 {
				storeId = ids[0]
			}
		}
		if storeId == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req uploadSignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.FileName == "" || req.MimeType == "" || req.Size <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fileName, mimeType and size are required"})
			return
		}
		if req.Size > maxUploadSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 5MB limit"})
			return
		}
		if !imageMimeTypes[req.MimeType] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
			return
		}

		ext := strings.ToLower(filepath.Ext(req.FileName))
		if ext == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file extension is required"})
			return
		}

		objectKey := path.Join("stores", strconv.Itoa(storeId), "closeouts", uuid.New().String()+ext)

		signed, err := utils.SignUpload(c.Request.Context(), objectKey, req.MimeType, 15*time.Minute)
		if err != nil {
			config.LogError(logger, "uploads.go", "signUploadHandler", "SignUpload", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign upload"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": signed})
	}
}

// completeUploadHandler verifies the uploaded object, generates a
// thumbnail, and records the photo against its closeout.
func completeUploadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req uploadCompleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if req.ObjectKey == "" || req.CloseoutId == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "objectKey and closeoutId are required"})
			return
		}
		if strings.Contains(req.ObjectKey, "..") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid object key"})
			return
		}
		kind := models.PhotoKind(req.Kind)
		if kind != models.PhotoKindDepositSlip && kind != models.PhotoKindPos {
			c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be deposit_slip or pos"})
			return
		}

		ctx := c.Request.Context()
		thumbnailKey, err := createThumbnail(ctx, req.ObjectKey)
		if err != nil {
			config.LogError(logger, "uploads.go", "completeUploadHandler", "createThumbnail", req.ObjectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate thumbnail"})
			return
		}

		url := utils.BuildObjectAccessURL(req.ObjectKey)
		thumbnailUrl := utils.BuildObjectAccessURL(thumbnailKey)

		photo, err := models.AddCloseoutPhoto(ctx, req.CloseoutId, kind, req.ObjectKey, url, thumbnailUrl)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": uploadCompleteResponse{
			ImageURL:           url,
			ThumbnailURL:       thumbnailUrl,
			ObjectKey:          req.ObjectKey,
			ThumbnailObjectKey: thumbnailKey,
			PhotoId:            photo.ID,
		}})
	}
}

func createThumbnail(ctx context.Context, objectKey string) (string, error) {
	data, err := utils.ReadObject(ctx, objectKey)
	if err != nil {
		return "", err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return "", err
	}

	thumbnailKey := thumbnailObjectKey(objectKey)
	if err := utils.WriteObject(ctx, thumbnailKey, "image/jpeg", buf.Bytes()); err != nil {
		return "", err
	}
	return thumbnailKey, nil
}

func thumbnailObjectKey(objectKey string) string {
	ext := filepath.Ext(objectKey)
	return strings.TrimSuffix(objectKey, ext) + "_thumb.jpg"
}
