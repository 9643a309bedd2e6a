package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/postpilot/composer/internal/rules"
)

// Store uploads local files and hands back hosted media references. The
// engine only consumes the resulting URL and type; transport and storage
// belong to the collaborator behind this interface.
type Store interface {
	Upload(ctx context.Context, path string) (rules.MediaItem, error)
}

const uploadPath = "/v1/media"

// HTTPStore uploads media over the publishing API's media endpoint using a
// retrying HTTP client. Upload failures abort only the upload; they never
// touch composition state.
type HTTPStore struct {
	BaseURL string
	Token   string
	Client  *retryablehttp.Client
}

func NewHTTPStore(baseURL string, token string) *HTTPStore {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil
	return &HTTPStore{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		Client:  client,
	}
}

func (s *HTTPStore) Upload(ctx context.Context, path string) (rules.MediaItem, error) {
	if s == nil || s.Client == nil {
		return rules.MediaItem{}, errors.New("media store client is required")
	}
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return rules.MediaItem{}, errors.New("media file path is required")
	}

	file, err := os.Open(trimmed)
	if err != nil {
		return rules.MediaItem{}, fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(trimmed))
	if err != nil {
		return rules.MediaItem{}, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return rules.MediaItem{}, fmt.Errorf("read media file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return rules.MediaItem{}, fmt.Errorf("finish upload form: %w", err)
	}

	request, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+uploadPath, body.Bytes())
	if err != nil {
		return rules.MediaItem{}, fmt.Errorf("build upload request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	if s.Token != "" {
		request.Header.Set("Authorization", "Bearer "+s.Token)
	}

	response, err := s.Client.Do(request)
	if err != nil {
		return rules.MediaItem{}, fmt.Errorf("upload media: %w", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return rules.MediaItem{}, fmt.Errorf("read upload response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return rules.MediaItem{}, fmt.Errorf("upload rejected with status %d: %s", response.StatusCode, strings.TrimSpace(string(raw)))
	}

	url := gjson.GetBytes(raw, "url").String()
	if strings.TrimSpace(url) == "" {
		return rules.MediaItem{}, errors.New("upload response did not include a url")
	}

	mediaType := strings.ToLower(gjson.GetBytes(raw, "type").String())
	if mediaType != rules.MediaTypeImage && mediaType != rules.MediaTypeVideo {
		mediaType = rules.InferMediaType(url)
	}
	return rules.MediaItem{URL: url, Type: mediaType}, nil
}
