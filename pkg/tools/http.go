package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/suqilabs/suqi/pkg/errors"
)

// Endpoints holds the URL of each tool backend.
type Endpoints struct {
	SemanticQuery string
	GeoExport     string
	ParityCheck   string
	AutoSyncFlat  string
	CatalogQA     string
}

// HTTPToolSet dispatches tool calls as JSON POSTs to configured
// endpoints.
type HTTPToolSet struct {
	endpoints Endpoints
	client    *http.Client
}

// NewHTTPToolSet creates an HTTP-backed tool set. A zero timeout
// defaults to 60 seconds.
func NewHTTPToolSet(endpoints Endpoints, timeout time.Duration) *HTTPToolSet {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &HTTPToolSet{
		endpoints: endpoints,
		client:    &http.Client{Timeout: timeout},
	}
}

func (t *HTTPToolSet) SemanticQuery(ctx context.Context, params QueryParams) (*QueryResult, error) {
	var out QueryResult
	if err := t.post(ctx, t.endpoints.SemanticQuery, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *HTTPToolSet) GeoExport(ctx context.Context, params GeoParams) (*GeoResult, error) {
	var out GeoResult
	if err := t.post(ctx, t.endpoints.GeoExport, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *HTTPToolSet) ParityCheck(ctx context.Context, params ParityParams) (*ParityResult, error) {
	var out ParityResult
	if err := t.post(ctx, t.endpoints.ParityCheck, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *HTTPToolSet) AutoSyncFlat(ctx context.Context) (*SyncResult, error) {
	var out SyncResult
	if err := t.post(ctx, t.endpoints.AutoSyncFlat, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *HTTPToolSet) CatalogQA(ctx context.Context, question string) (*CatalogAnswer, error) {
	var out CatalogAnswer
	payload := struct {
		Question string `json:"question"`
	}{Question: question}
	if err := t.post(ctx, t.endpoints.CatalogQA, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (t *HTTPToolSet) post(ctx context.Context, url string, payload, out any) error {
	if url == "" {
		return errors.New(errors.CodeToolFailure, "tool endpoint not configured", nil)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.New(errors.CodeToolFailure, "failed to marshal tool request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return errors.New(errors.CodeToolFailure, "failed to create http request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.New(errors.CodeToolFailure, "tool call failed", err).WithRecoverable(true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.New(errors.CodeToolFailure,
			fmt.Sprintf("tool returned status %d: %s", resp.StatusCode, snippet), nil).
			WithContext("url", url).
			WithRecoverable(resp.StatusCode >= 500)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.New(errors.CodeToolFailure, "failed to decode tool response", err)
	}
	return nil
}

var _ ToolSet = (*HTTPToolSet)(nil)
