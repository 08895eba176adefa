package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"classroom-subscription/internal/domain/ports/adapter"
)

// Ensure interface compliance
var _ adapter.VideoStore = (*RemoteVideoStore)(nil)

// RemoteVideoStore talks to the video platform's management API using direct
// HTTP calls. Only deletion is needed here; uploads happen out of band.
type RemoteVideoStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteVideoStore(baseURL, apiKey string) *RemoteVideoStore {
	return &RemoteVideoStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{},
	}
}

type videoAPIError struct {
	Message string `json:"message"`
}

func (v *RemoteVideoStore) DeleteVideo(ctx context.Context, videoID string) error {
	url := fmt.Sprintf("%s/videos/%s", v.baseURL, videoID)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// 404 counts as deleted: the goal is absence, not a fresh delete.
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	var apiErr videoAPIError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("video platform error deleting %s: %s", videoID, apiErr.Message)
	}
	return fmt.Errorf("video platform returned %d deleting %s", resp.StatusCode, videoID)
}
