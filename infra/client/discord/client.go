// Package discord posts chat messages through the Discord REST API.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var ErrRejected = errors.New("discord: message rejected")

type Client struct {
	http    *http.Client
	baseURL string
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}

	// [RESILIENCE] stop hammering the API after repeated failures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "discord",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("DISCORD_BREAKER_STATE_CHANGED",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageBody struct {
	Content string `json:"content"`
}

// SendMessage posts content to a channel as the bot identified by token.
func (c *Client) SendMessage(ctx context.Context, channelID, token, content string) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.post(ctx, channelID, token, content)
	})
	return err
}

func (c *Client) post(ctx context.Context, channelID, token, content string) error {
	body, err := json.Marshal(messageBody{Content: content})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, url.PathEscape(channelID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("discord: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	c.logger.Info("DISCORD_MESSAGE_SENT", slog.String("channel_id", channelID))
	return nil
}
