package post

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dghubble/oauth1"
)

// Credentials are the four OAuth1 user-context secrets the X API needs.
// Token acquisition is out of scope; they arrive ready-made from config.
type Credentials struct {
	AppKey           string
	AppKeySecret     string
	OAuthToken       string
	OAuthTokenSecret string
}

// XClient posts via the X API: tweet creation on v2, media upload on
// the v1.1 endpoint (v2 has no media upload). One client is built per
// process; attempts reuse it.
type XClient struct {
	httpClient *http.Client
	tweetURL   string
	uploadURL  string
}

// NewXClient builds an OAuth1-signing client from the credentials.
func NewXClient(creds Credentials) *XClient {
	cfg := oauth1.NewConfig(creds.AppKey, creds.AppKeySecret)
	token := oauth1.NewToken(creds.OAuthToken, creds.OAuthTokenSecret)

	httpClient := cfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = 60 * time.Second

	return &XClient{
		httpClient: httpClient,
		tweetURL:   "https://api.twitter.com/2/tweets",
		uploadURL:  "https://upload.twitter.com/1.1/media/upload.json",
	}
}

// Post publishes text (and any media IDs) and returns the new post ID.
// A 429 comes back as ErrRateLimited; other non-2xx as *PostError.
func (c *XClient) Post(ctx context.Context, text string, mediaIDs []string) (string, error) {
	body := map[string]any{"text": text}
	if len(mediaIDs) > 0 {
		body["media"] = map[string]any{"media_ids": mediaIDs}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding tweet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tweetURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting tweet: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding tweet response: %w", err)
	}
	return result.Data.ID, nil
}

// Upload sends a local media file and returns its media identifier.
func (c *XClient) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening media file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("reading media file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading media: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var result struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	return result.MediaIDString, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &PostError{StatusCode: resp.StatusCode, Body: string(body)}
}
