// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"campuscms/internal/imaging"
	"campuscms/internal/imghost"
	"campuscms/internal/middleware"
)

// maxUploadSize caps uploaded image files at 10 MB.
const maxUploadSize = 10 << 20

// UploadHandler handles dashboard image uploads: files are normalized
// locally, pushed to the external image host, and the public URL comes
// back as JSON for the editor to drop into the form.
type UploadHandler struct {
	processor *imaging.Processor
	client    *imghost.Client
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(processor *imaging.Processor, client *imghost.Client) *UploadHandler {
	return &UploadHandler{
		processor: processor,
		client:    client,
	}
}

// UploadImage handles POST /dashboard/upload-image.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if !h.client.Enabled() {
		writeJSONError(w, http.StatusServiceUnavailable, "Image hosting is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "File too large or invalid form data")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing image file")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.processor.Process(file)
	if err != nil {
		slog.Warn("image processing failed",
			"error", err,
			"filename", header.Filename,
			"user_id", middleware.GetUserID(r),
		)
		writeJSONError(w, http.StatusUnprocessableEntity, "Unsupported or corrupt image file")
		return
	}

	url, err := h.client.Upload(r.Context(), result.Data, imaging.FilenameForMime(result.MimeType))
	if err != nil {
		slog.Error("image upload failed", "error", err, "user_id", middleware.GetUserID(r))
		writeJSONError(w, http.StatusBadGateway, "Image host upload failed")
		return
	}

	slog.Info("image uploaded",
		"url", url,
		"width", result.Width,
		"height", result.Height,
		"user_id", middleware.GetUserID(r),
	)

	writeJSONSuccess(w, map[string]any{
		"url":    url,
		"width":  result.Width,
		"height": result.Height,
	})
}
