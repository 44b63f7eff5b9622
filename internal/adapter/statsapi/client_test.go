package statsapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"insight-orchestrator/internal/adapter/statsapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/accounts/coffee_shop/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"followers":5000,"avg_likes":132.4,"avg_comments":8.1,"engagement_rate_percent":2.81}`))
	}))
	defer server.Close()

	client := statsapi.NewClient(server.URL, server.Client())

	stats, err := client.Get(context.Background(), "@Coffee_Shop")

	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 5000, stats.Followers)
	assert.Equal(t, 132.4, stats.AvgLikes)
	assert.Equal(t, 8.1, stats.AvgComments)
	assert.Equal(t, 2.81, stats.EngagementRatePercent)
}

func TestClient_Get_NotFoundIsAMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := statsapi.NewClient(server.URL, server.Client())

	stats, err := client.Get(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Nil(t, stats)
}

func TestClient_Get_ServerErrorIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer server.Close()

	client := statsapi.NewClient(server.URL, server.Client())

	stats, err := client.Get(context.Background(), "coffee_shop")

	require.Error(t, err)
	assert.Nil(t, stats)
	assert.Contains(t, err.Error(), "502")
}
