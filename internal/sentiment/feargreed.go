package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"DrawdownSentinel/internal/model"
)

// DefaultURL is the CNN Fear & Greed graph data endpoint.
const DefaultURL = "https://production.dataviz.cnn.io/index/fearandgreed/graphdata"

// Provider fetches the current market sentiment. Failures are reported
// through MarketSentiment.Error, never as a Go error.
type Provider interface {
	Fetch(ctx context.Context) model.MarketSentiment
}

// Client reads the CNN Fear & Greed index.
type Client struct {
	URL    string
	Client *http.Client
}

// NewClient creates a Fear & Greed client with optional proxy support.
func NewClient(proxyURL string) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Client{
		URL: DefaultURL,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

type graphData struct {
	FearAndGreed *struct {
		Score         *float64 `json:"score"`
		Rating        string   `json:"rating"`
		PreviousClose *float64 `json:"previous_close"`
		Previous1Week *float64 `json:"previous_1_week"`
	} `json:"fear_and_greed"`
}

// Fetch returns the latest index value.
func (c *Client) Fetch(ctx context.Context) model.MarketSentiment {
	s, err := c.fetch(ctx)
	if err != nil {
		log.Warnf("fear & greed fetch failed: %v", err)
		return model.MarketSentiment{Rating: model.RatingUnknown, Error: err.Error()}
	}
	return s
}

func (c *Client) fetch(ctx context.Context) (model.MarketSentiment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return model.MarketSentiment{}, err
	}
	// The endpoint rejects requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := c.Client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) && ue.Timeout() {
			return model.MarketSentiment{}, errors.New("request timed out")
		}
		return model.MarketSentiment{}, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.MarketSentiment{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.MarketSentiment{}, fmt.Errorf("read body: %w", err)
	}
	var data graphData
	if err := json.Unmarshal(body, &data); err != nil {
		return model.MarketSentiment{}, fmt.Errorf("decode: %w", err)
	}
	if data.FearAndGreed == nil || data.FearAndGreed.Score == nil {
		return model.MarketSentiment{}, errors.New("decode: missing fear_and_greed.score")
	}

	fg := data.FearAndGreed
	rating := model.SentimentRating(fg.Rating)
	if fg.Rating == "" {
		rating = model.RatingForScore(*fg.Score)
	}
	return model.MarketSentiment{
		Score:         fg.Score,
		Rating:        rating,
		PreviousClose: fg.PreviousClose,
		PreviousWeek:  fg.Previous1Week,
	}, nil
}
