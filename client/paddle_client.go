package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultPaddleURL = "http://paddleocr:8866/predict/ocr_system"

// PaddleClient calls a PaddleOCR serving endpoint over HTTP
type PaddleClient struct {
	apiURL     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPaddleClient creates a PaddleOCR client. An empty apiURL uses the
// default serving endpoint.
func NewPaddleClient(apiURL string, logger *slog.Logger) *PaddleClient {
	if apiURL == "" {
		apiURL = defaultPaddleURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PaddleClient{
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type paddleRequest struct {
	Images []string `json:"images"`
}

type paddleResponse struct {
	Results [][]struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
}

// ExtractText sends the encoded image to PaddleOCR and returns the recognised lines
func (p *PaddleClient) ExtractText(ctx context.Context, img []byte) (string, error) {
	payload, err := json.Marshal(paddleRequest{
		Images: []string{base64.StdEncoding.EncodeToString(img)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build PaddleOCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call PaddleOCR API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("PaddleOCR API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result paddleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode PaddleOCR response: %w", err)
	}

	var lines []string
	for _, page := range result.Results {
		for _, line := range page {
			lines = append(lines, line.Text)
		}
	}

	text := dedupeLines(lines)
	if text == "" {
		return "", fmt.Errorf("PaddleOCR extracted no text from image")
	}

	p.logger.Debug("paddleocr extracted text", "chars", len(text), "lines", len(lines))
	return text, nil
}

// Name identifies the recognizer in logs and capture results
func (p *PaddleClient) Name() string {
	return "paddle"
}

// dedupeLines drops blank and repeated lines (case-insensitive), keeping first occurrences
func dedupeLines(lines []string) string {
	seen := make(map[string]bool)
	var result []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		normalized := strings.ToLower(line)
		if !seen[normalized] {
			seen[normalized] = true
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
