package content

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
)

const llamaParseBaseURL = "https://api.cloud.llamaindex.ai/api/v1/parsing"

// LlamaParseExtractor extracts document text via the LlamaParse API: upload
// the file, poll the parsing job, fetch the text result.
type LlamaParseExtractor struct {
	BaseURL      string
	APIKey       string
	Client       *http.Client
	PollInterval time.Duration
}

var _ DocumentExtractor = &LlamaParseExtractor{}

func NewLlamaParseExtractor(apiKey string) *LlamaParseExtractor {
	return &LlamaParseExtractor{
		BaseURL:      llamaParseBaseURL,
		APIKey:       apiKey,
		Client:       &http.Client{Timeout: 120 * time.Second},
		PollInterval: 2 * time.Second,
	}
}

type parseJobResponse struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type parseTextResult struct {
	Text string `json:"text"`
}

func (e *LlamaParseExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("document %s: %w", filePath, err)
	}

	jobId, err := e.upload(ctx, filePath)
	if err != nil {
		return "", err
	}
	if err := e.waitForJob(ctx, jobId); err != nil {
		return "", err
	}
	return e.fetchText(ctx, jobId)
}

func (e *LlamaParseExtractor) upload(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llamaparse error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var job parseJobResponse
	if err := json.Unmarshal(bodyBytes, &job); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if job.Id == "" {
		return "", fmt.Errorf("llamaparse returned no job id: %s", string(bodyBytes))
	}
	return job.Id, nil
}

func (e *LlamaParseExtractor) waitForJob(ctx context.Context, jobId string) error {
	ticker := time.NewTicker(e.PollInterval)
	defer ticker.Stop()

	for {
		job, err := e.jobStatus(ctx, jobId)
		if err != nil {
			return err
		}

		switch job.Status {
		case "SUCCESS":
			return nil
		case "ERROR", "CANCELED":
			return fmt.Errorf("parse job %s finished with status %s", jobId, job.Status)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("parse job %s: %w", jobId, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (e *LlamaParseExtractor) jobStatus(ctx context.Context, jobId string) (*parseJobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"/job/"+jobId, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll parse job: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llamaparse error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var job parseJobResponse
	if err := json.Unmarshal(bodyBytes, &job); err != nil {
		return nil, fmt.Errorf("decode job response: %w", err)
	}
	return &job, nil
}

func (e *LlamaParseExtractor) fetchText(ctx context.Context, jobId string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"/job/"+jobId+"/result/text", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch parse result: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llamaparse error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result parseTextResult
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return "", fmt.Errorf("decode text result: %w", err)
	}
	return result.Text, nil
}
