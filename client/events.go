package client

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// SubscribeOnlineCount opens the server's event stream and delivers every
// online-count value on the returned channel. The channel closes when the
// stream ends or the context is cancelled. Subscribing also registers this
// browser as a connected viewer on the server.
func (c *Client) SubscribeOnlineCount(ctx context.Context) (<-chan int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/events", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	// The regular client enforces a request timeout, which would cut the
	// long-lived stream short. Cancellation comes from the context instead.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("event stream request failed: status %d", resp.StatusCode)
	}

	counts := make(chan int, 8)
	go func() {
		defer close(counts)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		event := ""
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				if event != "online-count" {
					continue
				}
				count, convErr := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
				if convErr != nil {
					continue
				}
				select {
				case counts <- count:
				case <-ctx.Done():
					return
				}
			case line == "":
				event = ""
			}
		}
	}()
	return counts, nil
}
