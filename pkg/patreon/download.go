package patreon

import (
	"context"
	"io"

	"patreonscraper/pkg/errors"
)

// Download opens a GET stream for fileURL using the session cookies.
// Only the wait for response headers is bounded by the client timeout; the
// body streams until it ends or ctx is cancelled. Read failures on the
// returned body are network errors. The caller must close it.
func (c *Client) Download(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	target, err := c.resolve(fileURL)
	if err != nil {
		return nil, err
	}

	resp, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := c.checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return &downloadBody{ReadCloser: resp.Body, url: resp.Request.URL.Path}, nil
}

// downloadBody tags read failures so they are not mistaken for disk errors
type downloadBody struct {
	io.ReadCloser
	url string
}

func (d *downloadBody) Read(p []byte) (int, error) {
	n, err := d.ReadCloser.Read(p)
	if err != nil && err != io.EOF {
		err = errors.Wrap(errors.ErrorTypeNetwork, err, "failed to read "+d.url)
	}
	return n, err
}
