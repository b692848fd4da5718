package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/util"
)

// DocParseService calls the external document-parsing API that turns an
// uploaded document into plain text or markdown.
type DocParseService struct {
	config config.ParserConfig
	client *http.Client
}

func NewDocParseService(cfg config.ParserConfig) *DocParseService {
	if cfg.ResultType == "" {
		cfg.ResultType = "text"
	}
	return &DocParseService{
		config: cfg,
		client: &http.Client{},
	}
}

type parseResponse struct {
	Sections []struct {
		Text string `json:"text"`
	} `json:"sections"`
}

// Parse submits the document and returns the extracted sections joined in
// source order. Failures talking to the service surface as
// ErrPipelineUnavailable so callers know a retry may help.
func (s *DocParseService) Parse(ctx context.Context, filename string, doc io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, doc); err != nil {
		return "", err
	}
	if err := writer.WriteField("result_type", s.config.ResultType); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/parse", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrPipelineUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: parser API status %d: %s", util.ErrPipelineUnavailable, resp.StatusCode, string(body))
	}

	var parsed parseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", util.ErrPipelineUnavailable, err)
	}

	texts := make([]string, 0, len(parsed.Sections))
	for _, section := range parsed.Sections {
		texts = append(texts, section.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}
