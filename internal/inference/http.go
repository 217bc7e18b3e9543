package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tabqa/internal/model"
)

// Config holds the inference endpoint settings.
type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration

	// Transport overrides the base HTTP transport; it is still wrapped by otelhttp.
	Transport http.RoundTripper
}

// HTTPEngine calls a Hugging Face style question-answering endpoint.
type HTTPEngine struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

var _ Engine = (*HTTPEngine)(nil)

// NewHTTPEngine creates the client. It does not contact the endpoint.
func NewHTTPEngine(cfg Config) (*HTTPEngine, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("inference endpoint is required")
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	return &HTTPEngine{
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(base),
			Timeout:   cfg.Timeout,
		},
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
	}, nil
}

type answerRequest struct {
	Inputs struct {
		Question string `json:"question"`
		Context  string `json:"context"`
	} `json:"inputs"`
}

type answerResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Error  string  `json:"error,omitempty"`
}

// Answer posts the question and context and decodes the best span.
func (e *HTTPEngine) Answer(ctx context.Context, question, passage string) (*model.Answer, error) {
	var req answerRequest
	req.Inputs.Question = question
	req.Inputs.Context = passage

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if e.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	ar, err := decodeAnswer(respBody)
	if err != nil {
		return nil, err
	}
	if ar.Error != "" {
		return nil, fmt.Errorf("API error: %s", ar.Error)
	}

	return &model.Answer{
		Answer: ar.Answer,
		Score:  ar.Score,
		Start:  ar.Start,
		End:    ar.End,
	}, nil
}

// decodeAnswer accepts either a single object or an array whose first element
// is the top-scoring answer.
func decodeAnswer(data []byte) (*answerResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []answerResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if len(list) == 0 {
			return nil, errors.New("no answer returned")
		}
		return &list[0], nil
	}

	var ar answerResponse
	if err := json.Unmarshal(trimmed, &ar); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &ar, nil
}

// Close releases idle connections held by the client.
func (e *HTTPEngine) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}
