package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DrawdownSentinel/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient("")
	c.URL = srv.URL
	return c
}

func TestFetch_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		w.Write([]byte(`{"fear_and_greed":{"score":24.4,"rating":"extreme fear","previous_close":24.3,"previous_1_week":18.7}}`))
	})

	s := c.Fetch(context.Background())
	require.True(t, s.Available())
	assert.InDelta(t, 24.4, *s.Score, 1e-9)
	assert.Equal(t, model.RatingExtremeFear, s.Rating)
	require.NotNil(t, s.PreviousClose)
	assert.InDelta(t, 24.3, *s.PreviousClose, 1e-9)
	require.NotNil(t, s.PreviousWeek)
	assert.Empty(t, s.Error)
}

func TestFetch_MissingOptionalFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fear_and_greed":{"score":60}}`))
	})

	s := c.Fetch(context.Background())
	require.True(t, s.Available())
	assert.Equal(t, model.RatingGreed, s.Rating)
	assert.Nil(t, s.PreviousClose)
	assert.Nil(t, s.PreviousWeek)
}

func TestFetch_BadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	s := c.Fetch(context.Background())
	assert.False(t, s.Available())
	assert.Equal(t, model.RatingUnknown, s.Rating)
	assert.Contains(t, s.Error, "418")
}

func TestFetch_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>`},
		{"missing section", `{"other":{}}`},
		{"missing score", `{"fear_and_greed":{"rating":"fear"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})
			s := c.Fetch(context.Background())
			assert.False(t, s.Available())
			assert.Contains(t, s.Error, "decode")
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	c.Client.Timeout = 20 * time.Millisecond

	s := c.Fetch(context.Background())
	assert.False(t, s.Available())
	assert.Equal(t, "request timed out", s.Error)
}

func TestRatingForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  model.SentimentRating
	}{
		{0, model.RatingExtremeFear},
		{24.9, model.RatingExtremeFear},
		{25, model.RatingFear},
		{44, model.RatingFear},
		{50, model.RatingNeutral},
		{55, model.RatingNeutral},
		{56, model.RatingGreed},
		{75, model.RatingGreed},
		{76, model.RatingExtremeGreed},
		{100, model.RatingExtremeGreed},
		{120, model.RatingUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, model.RatingForScore(tt.score), "score %.1f", tt.score)
	}
}
