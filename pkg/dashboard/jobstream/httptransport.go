package jobstream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// HTTPTransport reads NDJSON streams over chunked HTTP responses.
//
// Each opened stream runs in its own goroutine; events are delivered from
// there. Closing a stream cancels its request.
type HTTPTransport struct {
	mu      sync.Mutex
	client  *http.Client
	cancels map[string]context.CancelFunc
}

func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{
		client:  client,
		cancels: map[string]context.CancelFunc{},
	}
}

var _ Transport = &HTTPTransport{}

func (t *HTTPTransport) Open(id string, url string, h Handlers) error {
	ctx, cancel := context.WithCancel(context.Background())

	t.mu.Lock()
	if old, ok := t.cancels[id]; ok {
		old()
	}
	t.cancels[id] = cancel
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		t.Close(id)
		return err
	}

	go func() {
		defer t.Close(id)

		resp, err := t.client.Do(req)
		if err != nil {
			if !errors.Is(err, context.Canceled) && h.OnError != nil {
				h.OnError(err)
			}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if h.OnError != nil {
				h.OnError(fmt.Errorf("unexpected status: %s", resp.Status))
			}
			return
		}

		if h.OnOpen != nil {
			h.OnOpen()
		}

		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			if h.OnMessage != nil {
				h.OnMessage(line)
			}
		}
		if err := scanner.Err(); err != nil {
			if !errors.Is(err, context.Canceled) && h.OnError != nil {
				h.OnError(err)
			}
			return
		}
		if h.OnClose != nil {
			h.OnClose()
		}
	}()

	return nil
}

func (t *HTTPTransport) Close(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cancel, ok := t.cancels[id]; ok {
		cancel()
		delete(t.cancels, id)
	}
}

func (t *HTTPTransport) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, cancel := range t.cancels {
		cancel()
		delete(t.cancels, id)
	}
}
