package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendSSEEventFormat(t *testing.T) {
	resp := httptest.NewRecorder()

	SendSSEEvent(resp, resp, "delta", map[string]string{"content": "hello"})

	body := resp.Body.String()
	if !strings.HasPrefix(body, "event: delta\ndata: ") {
		t.Fatalf("unexpected frame prefix: %q", body)
	}
	if !strings.HasSuffix(body, "\n\n") {
		t.Fatalf("frame must end with a blank line: %q", body)
	}
	if !strings.Contains(body, `"content":"hello"`) {
		t.Fatalf("payload missing from frame: %q", body)
	}
	if !resp.Flushed {
		t.Fatal("frame must be flushed")
	}
}

func TestSetupSSEHeaders(t *testing.T) {
	resp := httptest.NewRecorder()

	SetupSSEHeaders(resp)

	if got := resp.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := resp.Header().Get("Cache-Control"); got != "no-cache" {
		t.Fatalf("unexpected cache control %q", got)
	}
}
