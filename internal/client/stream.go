package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const eventSnapshot = "snapshot"

// Watch opens the server's event stream and emits one notification per
// snapshot event. Notifications that are not consumed in time collapse into
// one. The channel closes when the stream ends or ctx is done.
//
// A rejected access token is refreshed once. If the refresh fails the stream
// is opened anonymously, since the post stream is public.
func (c *Client) Watch(ctx context.Context) (<-chan struct{}, error) {
	token := c.accessToken()
	resp, err := c.openStream(ctx, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		drain(resp)
		if err := c.refresh(ctx, token); err != nil {
			c.logger.Warn(ctx, "opening event stream without a session", "error", err)
			token = ""
		} else {
			token = c.accessToken()
		}
		if resp, err = c.openStream(ctx, token); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode != http.StatusOK {
		defer drain(resp)
		var body errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return nil, statusError(resp.StatusCode, body.Error)
	}

	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 16<<20)

		event := ""
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				event = ""
			case strings.HasPrefix(line, ":"):
				// heartbeat
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && event == eventSnapshot:
				// The payload is not decoded. Consumers re-read through List,
				// the same as watchers of the server hub, so connecting costs
				// one extra read.
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			c.logger.Warn(ctx, "event stream closed", "error", err)
		}
	}()

	return out, nil
}

func (c *Client) openStream(ctx context.Context, token string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/posts/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("open stream: %w: %v", ErrUnavailable, err)
	}
	return resp, nil
}
