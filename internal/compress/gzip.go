package compress

import (
	"compress/gzip"
	"io"
)

// GzipReader implements io.ReadCloser over a gzip-compressed request body.
type GzipReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

// NewGzipReader fails if r does not start with a gzip header.
func NewGzipReader(r io.ReadCloser) (*GzipReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}

	return &GzipReader{
		r:  r,
		zr: zr,
	}, nil
}

// Read reads decompressed data.
func (c *GzipReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

// Close closes both the gzip stream and the underlying body.
func (c *GzipReader) Close() error {
	if err := c.r.Close(); err != nil {
		return err
	}
	return c.zr.Close()
}
