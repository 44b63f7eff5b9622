package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"insight-orchestrator/internal/domain"
)

// Client calls the third-party statistics provider. The shared pooled
// http.Client enforces the timeout; any failure is reported to the resolver,
// which treats it as "source produced nothing".
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, client *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type statsResponse struct {
	Followers             int     `json:"followers"`
	AvgLikes              float64 `json:"avg_likes"`
	AvgComments           float64 `json:"avg_comments"`
	EngagementRatePercent float64 `json:"engagement_rate_percent"`
}

func (c *Client) Get(ctx context.Context, accountID string) (*domain.AccountStats, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s/stats", c.baseURL, url.PathEscape(domain.NormalizeAccountID(accountID)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call stats provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("stats provider returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode stats response: %w", err)
	}

	return &domain.AccountStats{
		Followers:             parsed.Followers,
		AvgLikes:              parsed.AvgLikes,
		AvgComments:           parsed.AvgComments,
		EngagementRatePercent: parsed.EngagementRatePercent,
	}, nil
}

var _ domain.StatsProvider = (*Client)(nil)
