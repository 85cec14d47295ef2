// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imghost

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEnabled(t *testing.T) {
	if New("https://api.example.com/upload", "").Enabled() {
		t.Error("client without an API key must report disabled")
	}
	if !New("https://api.example.com/upload", "key").Enabled() {
		t.Error("client with an API key must report enabled")
	}
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	payload := []byte("fake image bytes")

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("key"); got != "secret-key" {
				t.Errorf("key = %q, want secret-key", got)
			}
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Errorf("ParseMultipartForm: %v", err)
			}
			_, header, err := r.FormFile("image")
			if err != nil {
				t.Fatalf("FormFile: %v", err)
			}
			if header.Filename != "upload.jpg" {
				t.Errorf("filename = %q, want upload.jpg", header.Filename)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"data":{"url":"https://i.example.com/x.jpg"},"status":200}`))
		}))
		defer server.Close()

		url, err := New(server.URL, "secret-key").Upload(ctx, payload, "upload.jpg")
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if url != "https://i.example.com/x.jpg" {
			t.Errorf("url = %q", url)
		}
	})

	t.Run("RejectionCarriesHostMessage", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":{"message":"Invalid API v1 key"},"status":400}`))
		}))
		defer server.Close()

		_, err := New(server.URL, "bad").Upload(ctx, payload, "upload.jpg")
		if err == nil || !strings.Contains(err.Error(), "Invalid API v1 key") {
			t.Errorf("err = %v, want the host's message", err)
		}
	})

	t.Run("NonJSONResponse", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>upstream error</html>"))
		}))
		defer server.Close()

		_, err := New(server.URL, "key").Upload(ctx, payload, "upload.jpg")
		if err == nil || !strings.Contains(err.Error(), "parse upload response") {
			t.Errorf("err = %v, want a parse error", err)
		}
	})

	t.Run("SuccessFlagWithoutURL", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"data":{},"status":200}`))
		}))
		defer server.Close()

		if _, err := New(server.URL, "key").Upload(ctx, payload, "upload.jpg"); err == nil {
			t.Error("a success response without a URL must be an error")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		if _, err := New("https://api.example.com/upload", "").Upload(ctx, payload, "upload.jpg"); err == nil {
			t.Error("upload on a disabled client must fail")
		}
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := New(server.URL, "key").Upload(canceled, payload, "upload.jpg"); err == nil {
			t.Error("upload with a canceled context must fail")
		}
	})
}
