package soundcloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/valyala/fasthttp"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.3"

const (
	connectTimeout = 15 * time.Second
	readTimeout    = 30 * time.Second
	maxAttempts    = 3
	maxRedirects   = 10
)

var httpc = &fasthttp.Client{
	Name:                userAgent,
	DialDualStack:       true,
	ReadTimeout:         readTimeout,
	WriteTimeout:        connectTimeout,
	MaxIdleConnDuration: 90 * time.Second,
}

// isTransient reports whether a fasthttp error is worth retrying.
func isTransient(err error) bool {
	return errors.Is(err, fasthttp.ErrTimeout) ||
		errors.Is(err, fasthttp.ErrDialTimeout) ||
		errors.Is(err, fasthttp.ErrTLSHandshakeTimeout) ||
		errors.Is(err, fasthttp.ErrConnectionClosed) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		os.IsTimeout(err)
}

// doWithRetry performs one request with bounded retries on transient errors,
// honoring ctx between attempts.
func doWithRetry(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	var err error
	backoff := time.Second
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err = httpc.DoTimeout(req, resp, readTimeout)
		if err == nil {
			if resp.StatusCode() < 500 {
				return nil
			}
			err = fmt.Errorf("unexpected status code: %d", resp.StatusCode())
			continue
		}
		if !isTransient(err) {
			return err
		}
	}
	return err
}

// fetch performs a GET with retries and manual redirect following.
// It returns the final status code and a copy of the body.
func fetch(ctx context.Context, url string, headers map[string]string) (int, []byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for redirects := 0; ; redirects++ {
		if err := doWithRetry(ctx, req, resp); err != nil {
			return 0, nil, err
		}

		code := resp.StatusCode()
		if code < 300 || code >= 400 {
			body, err := resp.BodyUncompressed()
			if err != nil {
				body = resp.Body()
			}
			out := make([]byte, len(body))
			copy(out, body)
			return code, out, nil
		}

		loc := resp.Header.Peek("Location")
		if len(loc) == 0 || redirects >= maxRedirects {
			return code, nil, fmt.Errorf("redirect with no destination (status %d)", code)
		}
		req.SetRequestURIBytes(loc)
		resp.Reset()
	}
}

// head performs a HEAD request and returns the status code, Content-Length
// and whether the server advertises byte-range support.
func head(ctx context.Context, url string) (int, int64, bool, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodHead)
	req.SetRequestURI(url)
	req.Header.Set("User-Agent", userAgent)

	if err := doWithRetry(ctx, req, resp); err != nil {
		return 0, 0, false, err
	}
	ranges := bytes.EqualFold(resp.Header.Peek("Accept-Ranges"), []byte("bytes"))
	return resp.StatusCode(), int64(resp.Header.ContentLength()), ranges, nil
}

// streamc is the client used for whole-file GETs; it hands the body over as
// a stream instead of buffering it.
var streamc = &fasthttp.Client{
	Name:               userAgent,
	DialDualStack:      true,
	WriteTimeout:       connectTimeout,
	StreamResponseBody: true,
}

// fetchToFile streams a GET response into path, following redirects manually.
// Only a 200 answer writes the file; any other final status is an error.
func fetchToFile(ctx context.Context, url, path string) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.Set("User-Agent", userAgent)

	for redirects := 0; ; redirects++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := streamc.Do(req, resp); err != nil {
			return err
		}

		code := resp.StatusCode()
		if code >= 300 && code < 400 {
			loc := resp.Header.Peek("Location")
			if len(loc) == 0 || redirects >= maxRedirects {
				return fmt.Errorf("redirect with no destination (status %d)", code)
			}
			_ = resp.CloseBodyStream()
			req.SetRequestURIBytes(loc)
			resp.Reset()
			continue
		}
		if code != 200 {
			_ = resp.CloseBodyStream()
			return fmt.Errorf("download: status %d", code)
		}

		fd, err := os.Create(path)
		if err != nil {
			_ = resp.CloseBodyStream()
			return err
		}
		_, err = io.Copy(fd, resp.BodyStream())
		_ = resp.CloseBodyStream()
		if cerr := fd.Close(); err == nil {
			err = cerr
		}
		return err
	}
}

// resolveRedirect returns the Location a URL answers with, without following further.
// Used for on.soundcloud.com short links.
func resolveRedirect(ctx context.Context, url string) (string, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.Set("User-Agent", userAgent)

	if err := doWithRetry(ctx, req, resp); err != nil {
		return "", err
	}

	loc := string(resp.Header.Peek("Location"))
	if loc == "" {
		return "", fmt.Errorf("short link did not redirect (status %d)", resp.StatusCode())
	}
	return loc, nil
}
