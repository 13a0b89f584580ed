package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jmgilman/go/errors"

	"github.com/jmgilman/go/buildcache/internal/httperr"
	"github.com/jmgilman/go/buildcache/internal/localpath"
)

// Download streams the blob at rawURL to dest.
//
// Requests to an API host carry "token <token>" authorization; any other host
// gets "Bearer <token>". An empty token sends no authorization header. When
// the response declares its length, coarse progress is reported through the
// observer. On any failure the partially written dest is removed before the
// error is returned.
func (t *Transport) Download(ctx context.Context, rawURL, dest, token string) error {
	dest = localpath.Abs(t.fs, dest)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeInvalidInput, "invalid download URL"), "url", rawURL)
	}
	req.Header.Set("Accept", "application/octet-stream")
	if auth := t.authorization(req.URL, token); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return errors.WithContext(errors.Wrap(err, errors.CodeNetwork, "failed to download artifact"), "url", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := httperr.Wrap(fmt.Errorf("unexpected status %s", resp.Status), resp.StatusCode, "failed to download artifact")
		return errors.WithContext(err, "url", rawURL)
	}

	if err := t.fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create download directory")
	}

	f, err := t.fs.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to create download file")
	}

	written, err := t.copyWithProgress(ctx, f, resp.Body, resp.ContentLength)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.Wrap(closeErr, errors.CodeInternal, "failed to close download file")
	}
	if err == nil && resp.ContentLength > 0 && written != resp.ContentLength {
		err = errors.Newf(errors.CodeNetwork, "download truncated: got %d of %d bytes", written, resp.ContentLength)
	}
	if err != nil {
		if rmErr := t.fs.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			t.observer.Warn("Failed to remove partial download", "path", dest, "error", rmErr)
		}
		return errors.WithContext(err, "url", rawURL)
	}

	return nil
}

// authorization selects the Authorization header value for u.
func (t *Transport) authorization(u *url.URL, token string) string {
	if token == "" {
		return ""
	}
	if _, ok := t.apiHosts[strings.ToLower(u.Hostname())]; ok {
		return "token " + token
	}
	return "Bearer " + token
}

// copyWithProgress copies src to dst, reporting progress at each whole
// percent when total is known.
func (t *Transport) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64) (written int64, err error) {
	report := total > 0
	if report {
		t.observer.StartProgress("Downloading build artifact", total)
		defer func() {
			if err != nil {
				t.observer.StopProgress("Download failed")
				return
			}
			t.observer.StopProgress("Downloaded " + humanize.Bytes(uint64(written)))
		}()
	}

	buf := make([]byte, 32*1024)
	lastPct := int64(-1)

	for {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return written, errors.Wrap(ctxErr, errors.CodeTimeout, "download canceled")
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return written, errors.Wrap(writeErr, errors.CodeInternal, "failed to write download")
			}
			written += int64(n)
			if report {
				if pct := written * 100 / total; pct != lastPct {
					lastPct = pct
					t.observer.UpdateProgress(written, fmt.Sprintf("%d%% (%s / %s)",
						pct, humanize.Bytes(uint64(written)), humanize.Bytes(uint64(total))))
				}
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, errors.Wrap(readErr, errors.CodeNetwork, "failed to read download")
		}
	}
}
