// Package seekinghttp implements io.ReadSeeker and io.ReaderAt on
// top of HTTP range requests, so that indexed file formats can be
// queried remotely without downloading the whole file.
package seekinghttp

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// SeekingHTTP uses a series of HTTP GETs with Range headers
// to implement io.ReadSeeker and io.ReaderAt.
type SeekingHTTP struct {
	URL        string
	Client     *http.Client
	url        *url.URL
	offset     int64
	last       *bytes.Buffer
	lastOffset int64
}

// Compile-time check of interface implementations.
var _ io.ReadSeeker = (*SeekingHTTP)(nil)
var _ io.ReaderAt = (*SeekingHTTP)(nil)

// New initializes a SeekingHTTP for the given URL.
// The SeekingHTTP.Client field may be set before the first call
// to Read or Seek.
func New(url string) *SeekingHTTP {
	return &SeekingHTTP{
		URL:    url,
		offset: 0,
	}
}

func (s *SeekingHTTP) newreq() (*http.Request, error) {
	var err error
	if s.url == nil {
		s.url, err = url.Parse(s.URL)
		if err != nil {
			return nil, err
		}
	}
	return http.NewRequest("GET", s.url.String(), nil)
}

func fmtRange(from, l int64) string {
	var to int64
	if l == 0 {
		to = from
	} else {
		to = from + (l - 1)
	}
	return fmt.Sprintf("bytes=%v-%v", from, to)
}

// ReadAt reads len(buf) bytes into buf starting at offset off.
func (s *SeekingHTTP) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.EOF
	}
	// serve the request from the most recently fetched window if
	// possible
	if s.last != nil && off >= s.lastOffset {
		end := off + int64(len(buf))
		if end <= s.lastOffset+int64(s.last.Len()) {
			start := off - s.lastOffset
			copy(buf, s.last.Bytes()[start:end-s.lastOffset])
			return len(buf), nil
		}
	}

	req, err := s.newreq()
	if err != nil {
		return 0, err
	}

	// fetch more than what was asked for to reduce the number of
	// round-trips
	wanted := 10 * len(buf)
	req.Header.Add("Range", fmtRange(off, int64(wanted)))

	if s.last == nil {
		s.last = &bytes.Buffer{}
	} else {
		s.last.Reset()
	}

	if s.Client == nil {
		s.Client = http.DefaultClient
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("fetching `%s' failed: %s", s.URL, resp.Status)
	}
	if _, err := io.Copy(s.last, resp.Body); err != nil {
		return 0, err
	}
	s.lastOffset = off

	if s.last.Len() < len(buf) {
		copy(buf, s.last.Bytes())
		return s.last.Len(), io.EOF
	}
	copy(buf, s.last.Bytes())
	return len(buf), nil
}

func (s *SeekingHTTP) Read(buf []byte) (int, error) {
	n, err := s.ReadAt(buf, s.offset)
	if n > 0 {
		s.offset += int64(n)
	}
	return n, err
}

// Seek sets the offset for the next Read.
func (s *SeekingHTTP) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.offset = offset
	case io.SeekCurrent:
		s.offset += offset
	case io.SeekEnd:
		size, err := s.Size()
		if err != nil {
			return 0, err
		}
		s.offset = size + offset
	default:
		return 0, fmt.Errorf("invalid whence value")
	}
	return s.offset, nil
}

// Size uses an HTTP HEAD request to determine the total size of the
// remote file.
func (s *SeekingHTTP) Size() (int64, error) {
	if s.url == nil {
		u, err := url.Parse(s.URL)
		if err != nil {
			return 0, err
		}
		s.url = u
	}
	if s.Client == nil {
		s.Client = http.DefaultClient
	}
	resp, err := s.Client.Head(s.url.String())
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no content length for Size()")
	}
	return resp.ContentLength, nil
}
