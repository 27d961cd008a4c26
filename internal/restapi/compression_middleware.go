package restapi

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

const (
	// Smaller bodies cost more to gzip than they save on the wire.
	gzipMinSize = 1024
	gzipLevel   = 6
)

// CompressionMiddleware gzips JSON responses for clients that send
// Accept-Encoding: gzip.
func CompressionMiddleware(next http.Handler) http.Handler {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(gzipMinSize),
		gzhttp.CompressionLevel(gzipLevel),
		gzhttp.ContentTypes([]string{"application/json"}),
	)
	if err != nil {
		// The options above are constant, so this only fires on a library change.
		panic(err)
	}
	return wrap(next)
}
