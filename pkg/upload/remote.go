package upload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Remote submits uploads to a hosted image service and returns the
// URL it allocates
type Remote struct {
	Endpoint string
	Folder   string
	APIKey   string
	Client   *http.Client
}

type remoteUploadRequest struct {
	File   string `json:"file"`
	Folder string `json:"folder"`
}

type remoteUploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload base64-encodes the payload and posts it under the configured
// folder namespace
func (r *Remote) Upload(filename string, data []byte) (string, error) {
	body, err := json.Marshal(remoteUploadRequest{
		File:   base64.StdEncoding.EncodeToString(data),
		Folder: r.Folder,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode upload request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("image host request failed: %w", err)
	}
	defer resp.Body.Close()

	var result remoteUploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode image host response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := result.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("image host rejected upload: %s", msg)
	}

	if result.SecureURL == "" {
		return "", fmt.Errorf("image host returned no URL")
	}

	return result.SecureURL, nil
}
