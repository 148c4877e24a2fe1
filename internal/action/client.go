// Package action calls the game server's HTTP endpoints for things a player
// does outside the socket: rolling and property decisions.
package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const maxBody = 64 << 10

var tracer = otel.Tracer("github.com/DoyleJ11/monopoly-client/internal/action")

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Status     int
	StatusText string
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%d %s", e.Status, e.StatusText)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.StatusText, e.Detail)
}

type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log.Named("action"),
	}
}

type RollRequest struct {
	PlayerID string `json:"playerId"`
	Room     string `json:"room"`
	Name     string `json:"name"`
}

type RollResult struct {
	Dice  []int `json:"dice"`
	Total *int  `json:"total"`
}

// Summary is the log line for a successful roll.
func (r RollResult) Summary() string {
	if len(r.Dice) != 2 {
		return "Roll requested."
	}
	total := r.Dice[0] + r.Dice[1]
	if r.Total != nil {
		total = *r.Total
	}
	return fmt.Sprintf("Roll requested. Server dice: %d & %d (total %d).", r.Dice[0], r.Dice[1], total)
}

type PropertyRequest struct {
	Room     string `json:"room"`
	PlayerID string `json:"playerId"`
	Index    int    `json:"index"`
	Bid      *int   `json:"bid,omitempty"`
}

type PropertyInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Price int    `json:"price"`
	Owner string `json:"owner"`
}

// Roll asks the server to roll for the player. A body that is not the
// expected JSON still counts as success.
func (c *Client) Roll(ctx context.Context, req RollRequest) (RollResult, error) {
	body, err := c.post(ctx, "/roll", req)
	if err != nil {
		return RollResult{}, err
	}
	var res RollResult
	if err := json.Unmarshal(body, &res); err != nil {
		c.log.Debug("roll response not json", zap.Error(err))
		return RollResult{}, nil
	}
	return res, nil
}

func (c *Client) PropertyInfo(ctx context.Context, req PropertyRequest) (PropertyInfo, error) {
	body, err := c.post(ctx, "/property/info", req)
	if err != nil {
		return PropertyInfo{}, err
	}
	info := PropertyInfo{Index: req.Index}
	if err := json.Unmarshal(body, &info); err != nil {
		return PropertyInfo{}, fmt.Errorf("decode property info: %w", err)
	}
	return info, nil
}

func (c *Client) Buy(ctx context.Context, req PropertyRequest) error {
	_, err := c.post(ctx, "/property/buy", req)
	return err
}

func (c *Client) Auction(ctx context.Context, req PropertyRequest) error {
	_, err := c.post(ctx, "/property/auction", req)
	return err
}

func (c *Client) post(ctx context.Context, path string, in any) (_ []byte, err error) {
	ctx, span := tracer.Start(ctx, "POST "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.log.Debug("action",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Detail:     detailOf(body),
		}
	}
	return body, nil
}

// detailOf prefers a JSON "error" field and falls back to a plain-text body.
func detailOf(body []byte) string {
	if gjson.ValidBytes(body) {
		return gjson.GetBytes(body, "error").String()
	}
	return strings.TrimSpace(string(body))
}
