// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ik5/musicreplacer/audio"
	apperrors "github.com/ik5/musicreplacer/internal/errors"
	"go.uber.org/zap"
)

// Payload is a fetched audio body. Ext is the negotiated extension, empty
// when neither headers nor URL tell. Size is -1 when unknown.
type Payload struct {
	Body io.ReadCloser
	Ext  string
	Size int64
}

// Fetcher retrieves remote override audio.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*Payload, error)
}

var mediaTypeExt = map[string]string{
	"audio/wav":       ".wav",
	"audio/wave":      ".wav",
	"audio/x-wav":     ".wav",
	"audio/vnd.wave":  ".wav",
	"audio/mpeg":      ".mp3",
	"audio/mp3":       ".mp3",
	"audio/ogg":       ".ogg",
	"audio/vorbis":    ".ogg",
	"application/ogg": ".ogg",
	"audio/aiff":      ".aiff",
	"audio/x-aiff":    ".aiff",
}

// HTTPFetcher downloads over HTTP. With a converter configured the locator
// is first handed to the converter, whose response body is the URL of the
// converted audio.
type HTTPFetcher struct {
	client    *http.Client
	converter string
	logger    *zap.Logger
}

func NewHTTPFetcher(converter string, timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		converter: converter,
		logger:    logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (*Payload, error) {
	target := locator
	if f.converter != "" {
		converted, err := f.convert(ctx, locator)
		if err != nil {
			return nil, err
		}
		target = converted
	}

	resp, err := f.get(ctx, target)
	if err != nil {
		return nil, err
	}

	return &Payload{
		Body: resp.Body,
		Ext:  negotiateExt(resp.Header.Get("Content-Type"), target),
		Size: resp.ContentLength,
	}, nil
}

func (f *HTTPFetcher) convert(ctx context.Context, locator string) (string, error) {
	u, err := url.Parse(f.converter)
	if err != nil {
		return "", apperrors.IOError("parse converter url", err)
	}
	q := u.Query()
	q.Set("url", locator)
	u.RawQuery = q.Encode()

	resp, err := f.get(ctx, u.String())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	if err != nil {
		return "", apperrors.IOError("read converter response", err)
	}

	converted := strings.TrimSpace(string(body))
	if converted == "" {
		return "", apperrors.IOError("convert "+locator, fmt.Errorf("converter returned no url"))
	}

	f.logger.Debug("converter resolved payload",
		zap.String("locator", locator),
		zap.String("payload", converted),
	)
	return converted, nil
}

func (f *HTTPFetcher) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperrors.IOError("build request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.IOError("get "+target, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, apperrors.IOError("get "+target, fmt.Errorf("unexpected status %s", resp.Status))
	}
	return resp, nil
}

// negotiateExt maps the Content-Type, then the URL path, to an extension.
func negotiateExt(contentType, rawURL string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := mediaTypeExt[strings.ToLower(mt)]; ok {
			return ext
		}
	}

	if u, err := url.Parse(rawURL); err == nil {
		if ext := audio.NormalizeExt(path.Ext(u.Path)); ext != "" {
			return ext
		}
	}
	return ""
}
