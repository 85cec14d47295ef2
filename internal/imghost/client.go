// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imghost uploads images to an imgbb-compatible hosting API.
package imghost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	// uploadTimeout bounds a single upload request.
	uploadTimeout = 30 * time.Second
)

// Client talks to an imgbb-compatible upload endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// uploadResponse is the subset of the imgbb API response we care about.
type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Status int `json:"status"`
}

// New creates a new image host client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: uploadTimeout,
		},
	}
}

// Enabled reports whether the client has an API key configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Upload sends image data to the hosting API as a multipart form and
// returns the public URL the host assigned. The filename is only a hint
// for the host; content type is derived from the bytes server-side.
func (c *Client) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("image hosting is not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload form: %w", err)
	}

	// The API key travels as a query parameter, per the imgbb API
	endpoint := c.baseURL + "?key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Cap the response read; a well-behaved host returns a small JSON body
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}

	var result uploadResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("failed to parse upload response (HTTP %d): %w", resp.StatusCode, err)
	}

	if !result.Success || result.Data.URL == "" {
		msg := result.Error.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		slog.Warn("image upload rejected",
			"request_id", requestID,
			"status", resp.StatusCode,
			"message", msg,
		)
		return "", fmt.Errorf("image host rejected upload: %s", msg)
	}

	slog.Info("image uploaded",
		"request_id", requestID,
		"size", len(data),
		"duration", time.Since(start),
	)

	return result.Data.URL, nil
}
