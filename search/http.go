// SPDX-License-Identifier: EPL-2.0

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPProvider queries a JSON search endpoint:
//
//	GET <endpoint>?q=<term>&page=<cursor>
//	{"items":[{"id","name","url","duration","uploader","uploader_url"}],"next":"..."}
//
// duration is in seconds.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPProvider(endpoint string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type response struct {
	Items []struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		URL         string  `json:"url"`
		Duration    float64 `json:"duration"`
		Uploader    string  `json:"uploader"`
		UploaderURL string  `json:"uploader_url"`
	} `json:"items"`
	Next string `json:"next"`
}

func (p *HTTPProvider) Query(ctx context.Context, term, cursor string) ([]Hit, string, error) {
	if p.endpoint == "" {
		return nil, "", errors.New("no search endpoint configured")
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, "", fmt.Errorf("parsing search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", term)
	if cursor != "" {
		q.Set("page", cursor)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("building search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("search request: unexpected status %s", resp.Status)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", fmt.Errorf("decoding search response: %w", err)
	}

	hits := make([]Hit, 0, len(body.Items))
	for _, it := range body.Items {
		hits = append(hits, Hit{
			ID:          it.ID,
			Name:        it.Name,
			URL:         it.URL,
			Duration:    time.Duration(it.Duration * float64(time.Second)),
			Uploader:    it.Uploader,
			UploaderURL: it.UploaderURL,
		})
	}
	return hits, body.Next, nil
}
