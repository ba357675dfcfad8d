package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"postfeed/internal/feed"
)

const (
	// EventSnapshot carries the whole filtered feed as a JSON array.
	EventSnapshot = "snapshot"

	heartbeatInterval = 25 * time.Second
)

// StreamPosts serves the live feed as Server-Sent Events. A snapshot is sent
// on connect and after every change of the posts collection.
func (h *Handlers) StreamPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	tag := r.URL.Query().Get("tag")

	sub, err := feed.Subscribe(ctx, h.Feed, tag, h.logger())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case posts, ok := <-sub.Updates():
			if !ok {
				return
			}
			payload, err := json.Marshal(NewPostsResponse(posts))
			if err != nil {
				h.logger().Error(ctx, "encode snapshot", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventSnapshot, payload); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
