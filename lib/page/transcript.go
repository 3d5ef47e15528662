package page

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// TranscriptRecorder dumps every fetched exchange to numbered files so a
// failing selector can be debugged against the exact HTML the probe saw.
type TranscriptRecorder struct {
	dir     string
	counter uint64
}

func NewTranscriptRecorder(dir string) (*TranscriptRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}
	return &TranscriptRecorder{dir: dir}, nil
}

// Attach hooks the recorder into a client built by NewClient.
func (r *TranscriptRecorder) Attach(client *resty.Client) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&r.counter, 1)
		name := fmt.Sprintf("%04d.txt", id)
		err := os.WriteFile(filepath.Join(r.dir, name), []byte(formatExchange(res)), 0o600)
		if err != nil {
			slog.Warn("failed to write transcript", "file", name, "err", err)
		}
		return nil
	})
}

// 1: request method and url
// 2: request headers
// 3: response status and final url
// 4: response headers
// 5: response body
const exchangeTemplate = `---- REQUEST ----

%s

%s

---- RESPONSE ----

%s

%s

%s`

func formatExchange(res *resty.Response) string {
	finalURL := res.Request.URL
	if redirected, err := res.RawResponse.Location(); err == nil {
		finalURL = redirected.String()
	}

	var requestHeaders string
	if res.Request.RawRequest != nil {
		requestHeaders = formatHeaders(res.Request.RawRequest.Header)
	}

	return fmt.Sprintf(
		exchangeTemplate,
		fmt.Sprintf("%s %s", res.Request.Method, res.Request.URL),
		requestHeaders,
		fmt.Sprintf("%s %s", strconv.Itoa(res.StatusCode()), finalURL),
		formatHeaders(res.Header()),
		res.String(),
	)
}

func formatHeaders(headers http.Header) string {
	var out strings.Builder
	for k, vals := range headers {
		for _, v := range vals {
			fmt.Fprintf(&out, "%s: %s\n", k, v)
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}
