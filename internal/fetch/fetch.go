package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"unicode/utf8"
)

// ChunkSize is the read size used while streaming a download.
const ChunkSize = 64 * 1024

// Fetcher retrieves payloads by locator.
type Fetcher struct {
	httpClient *http.Client
	progress   io.Writer
	maxBytes   int64
	columns    func() int
	userAgent  string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithProgress sets where the progress bar is drawn. Nil disables it.
func WithProgress(w io.Writer) Option {
	return func(f *Fetcher) {
		f.progress = w
	}
}

// WithMaxBytes caps the payload size. Zero or less means no cap.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// WithColumns sets the terminal width source used to size the bar.
func WithColumns(columns func() int) Option {
	return func(f *Fetcher) {
		f.columns = columns
	}
}

// WithUserAgent sets the User-Agent header sent with HTTP requests.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		columns:    TerminalColumns,
		userAgent:  "flame-pkm",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the payload behind locator. http and https locators are
// downloaded; file locators are read from the local disk.
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Locator: locator, Err: err}
	}
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, locator)
	case "file":
		return f.fetchFile(locator, u.Path)
	default:
		return nil, &Error{Kind: KindTransport, Locator: locator, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Locator: locator, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, &Error{Kind: KindNotFound, Locator: locator, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Kind: KindTransport, Locator: locator, Status: resp.StatusCode}
	}

	return f.stream(locator, resp.Body, resp.ContentLength)
}

// stream reads body chunk by chunk, redrawing the progress bar after each.
func (f *Fetcher) stream(locator string, body io.Reader, total int64) ([]byte, error) {
	var data []byte
	var received int64

	buf := make([]byte, ChunkSize)
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
			received += int64(n)
			if f.maxBytes > 0 && received > f.maxBytes {
				f.endProgress()
				return nil, &Error{Kind: KindTooLarge, Locator: locator, Err: fmt.Errorf("payload exceeds %d bytes", f.maxBytes)}
			}
			f.drawProgress(received, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.endProgress()
			return nil, &Error{Kind: KindTransport, Locator: locator, Err: fmt.Errorf("reading download stream: %w", readErr)}
		}
	}
	if total > 0 {
		f.drawProgress(total, total)
	}
	f.endProgress()
	return data, nil
}

func (f *Fetcher) fetchFile(locator, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &Error{Kind: KindNotFound, Locator: locator, Err: err}
	}
	if err != nil {
		return nil, &Error{Kind: KindTransport, Locator: locator, Err: err}
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, &Error{Kind: KindTooLarge, Locator: locator, Err: fmt.Errorf("payload exceeds %d bytes", f.maxBytes)}
	}
	return data, nil
}

func (f *Fetcher) drawProgress(current, total int64) {
	if f.progress == nil {
		return
	}
	fmt.Fprintf(f.progress, "\r%s", RenderProgress(current, total, BarWidth(f.columns())))
}

func (f *Fetcher) endProgress() {
	if f.progress == nil {
		return
	}
	fmt.Fprintln(f.progress)
}

// Text checks that a fetched payload is UTF-8 and returns it as a string.
func Text(locator string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", &Error{Kind: KindDecode, Locator: locator}
	}
	return string(data), nil
}
