package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// Source opening defaults.
const (
	DefaultFetchTimeout = 2 * time.Minute
	DefaultFetchRetries = 3
)

// isRemote reports whether source should be fetched over HTTP.
func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// openSource returns the raw byte stream for a local path or URL along with
// its size when known (0 otherwise).
func openSource(ctx context.Context, source string, opts Options) (io.ReadCloser, int64, error) {
	if isRemote(source) {
		return fetch(ctx, source, opts)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrSource, err)
	}
	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	if opts.MaxSize > 0 && size > opts.MaxSize {
		f.Close()
		return nil, 0, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrTooLarge, source, size, opts.MaxSize)
	}
	return f, size, nil
}

// statusError is returned for non-2xx responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.code)
}

// fetch downloads source with exponential backoff. Transport errors and 5xx
// responses are retried up to opts.FetchRetries times; 4xx is permanent.
// The timeout covers connecting and reading the whole body.
func fetch(ctx context.Context, source string, opts Options) (io.ReadCloser, int64, error) {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second

	var policy backoff.BackOff = bo
	if opts.FetchRetries >= 0 {
		policy = backoff.WithMaxRetries(bo, uint64(opts.FetchRetries))
	}

	logger := opts.logger()
	var resp *http.Response
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		if r.StatusCode >= 300 {
			io.Copy(io.Discard, r.Body)
			r.Body.Close()
			serr := &statusError{code: r.StatusCode}
			if r.StatusCode >= 500 {
				return serr
			}
			return backoff.Permanent(serr)
		}
		resp = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("dataset fetch failed, retrying", "error", err, "wait", wait)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify); err != nil {
		cancel()
		return nil, 0, fmt.Errorf("%w: GET %s: %w", ErrSource, redactURL(source), err)
	}

	if opts.MaxSize > 0 && resp.ContentLength > opts.MaxSize {
		resp.Body.Close()
		cancel()
		return nil, 0, fmt.Errorf("%w: response is %d bytes, limit %d", ErrTooLarge, resp.ContentLength, opts.MaxSize)
	}

	size := resp.ContentLength
	if size < 0 {
		size = 0
	}
	return &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, size, nil
}

// cancelOnClose releases the fetch context when the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// redactURL drops the query string, which for shared-file links carries access keys.
func redactURL(source string) string {
	if i := strings.IndexByte(source, '?'); i >= 0 {
		return source[:i]
	}
	return source
}
