package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	logging "github.com/KonishchevDmitry/go-easy-logging"

	"podcastd/internal/util"
	"podcastd/pkg/url"
)

const userAgent = "podcastd (feed reader daemon)"

func fetch[T any](
	ctx context.Context, url *url.URL, allowedMediaTypes []string, parser func(body io.Reader) (T, error),
	opts ...Option,
) (_ T, retErr error) {
	var zero T
	defer func() {
		if retErr != nil {
			retErr = fmt.Errorf("failed to fetch %s: %w", url, retErr)
		}
	}()

	options := newOptions(opts)

	ctx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	fetchCtx, err := getContext(ctx)
	if err != nil {
		return zero, err
	}

	logging.L(ctx).Debugf("Fetching %s...", url)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url.String(), nil)
	if err != nil {
		return zero, err
	}
	request.Header.Add("User-Agent", userAgent)
	request.Header.Add("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	var client http.Client
	startTime := time.Now()
	response, err := client.Do(request)
	fetchCtx.duration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		return zero, util.MakeTemporaryError(err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.L(ctx).Errorf("Failed to close HTTP response body: %s.", err)
		}
	}()

	if statusCode := response.StatusCode; statusCode != http.StatusOK {
		err := fmt.Errorf("the server returned an error: %s", response.Status)
		if statusCode >= 500 && statusCode < 600 {
			err = util.MakeTemporaryError(err)
		}
		return zero, err
	}

	if err := checkContentType(response.Header.Get("Content-Type"), allowedMediaTypes); err != nil {
		return zero, err
	}

	return parser(bodyReader{body: response.Body})
}

type bodyReader struct {
	body io.Reader
}

var _ io.Reader = bodyReader{}

func (r bodyReader) Read(buf []byte) (int, error) {
	n, err := r.body.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		err = util.MakeTemporaryError(err)
	}
	return n, err
}

func checkContentType(contentType string, allowedMediaTypes []string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("got an invalid Content-Type: %w", err)
	}

	for _, allowedMediaType := range allowedMediaTypes {
		if mediaType == allowedMediaType {
			return nil
		}
	}

	return fmt.Errorf("got an invalid Content-Type (%s)", mediaType)
}
