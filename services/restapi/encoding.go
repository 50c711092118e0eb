package restapi

import (
	"compress/gzip"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
)

const acceptEncoding = "br, gzip"

// readBody reads and closes the response body, decoding brotli and gzip content.
// The whole body is always consumed so the connection can be reused.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			_, _ = io.Copy(ioutil.Discard, resp.Body)
			return nil, errors.Wrap(err, "opening gzip body")
		}
		defer gz.Close()
		r = gz
	}

	b, err := ioutil.ReadAll(r)
	if err != nil {
		_, _ = io.Copy(ioutil.Discard, resp.Body)
		return nil, errors.Wrap(err, "reading body")
	}
	return b, nil
}
