// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"maplecms/internal/models"
	"maplecms/internal/storage"
	"maplecms/internal/store"
)

// allowedMediaTypes defines MIME types accepted for upload.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// Media groups the media upload and management handlers. The storage
// client may be nil, in which case uploads are rejected with 503.
type Media struct {
	media     *store.MediaStore
	storage   *storage.Client
	maxUpload int64
}

// NewMedia creates the media handler group.
func NewMedia(media *store.MediaStore, storageClient *storage.Client, maxUpload int64) *Media {
	return &Media{media: media, storage: storageClient, maxUpload: maxUpload}
}

// List returns uploaded media metadata, newest first.
func (h *Media) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pagination(r)
	items, err := h.media.List(skip, limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if items == nil {
		items = []models.Media{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Get returns a single media row by id.
func (h *Media) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid media id")
		return
	}
	m, err := h.media.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if m == nil {
		respondError(w, http.StatusNotFound, "media not found")
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// Upload handles a multipart file upload. The content type is sniffed
// from the file bytes, never trusted from the client, and checked
// against the allow-list before anything touches object storage.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	userID, ok := currentUserID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1024)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if header.Size > h.maxUpload {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	// Sniff the content type from the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	// DetectContentType reports SVGs as XML or plain text.
	if strings.HasSuffix(strings.ToLower(header.Filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		contentType = "image/svg+xml"
	}

	if !allowedMediaTypes[contentType] {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", contentType))
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to process file")
		return
	}
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read file")
		return
	}

	// Generate a unique storage key partitioned by year/month.
	now := time.Now()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New().String()
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	ctx := r.Context()
	if err := h.storage.Upload(ctx, key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		respondError(w, http.StatusInternalServerError, "failed to upload file")
		return
	}

	created, err := h.media.Create(&models.Media{
		Filename:         fileID + ext,
		OriginalFilename: header.Filename,
		MimeType:         contentType,
		SizeBytes:        int64(len(fileBytes)),
		StorageKey:       key,
		URL:              h.storage.FileURL(key),
		UploaderID:       &userID,
	})
	if err != nil {
		// Best-effort cleanup of the orphaned object.
		if derr := h.storage.Delete(ctx, key); derr != nil {
			slog.Warn("orphan cleanup failed", "error", derr, "key", key)
		}
		respondStoreError(w, err)
		return
	}

	slog.Info("media uploaded", "media_id", created.ID, "key", key, "uploader_id", userID)
	respondJSON(w, http.StatusCreated, created)
}

// Delete removes a media row and its stored object. The object delete is
// best-effort; the metadata row is authoritative.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUUID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	m, err := h.media.FindByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if m == nil {
		respondError(w, http.StatusNotFound, "media not found")
		return
	}

	if err := h.media.Delete(id); err != nil {
		respondStoreError(w, err)
		return
	}
	if h.storage != nil {
		if err := h.storage.Delete(r.Context(), m.StorageKey); err != nil {
			slog.Warn("s3 delete failed", "error", err, "key", m.StorageKey)
		}
	}

	slog.Info("media deleted", "media_id", id)
	respondJSON(w, http.StatusNoContent, nil)
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
