package document

import (
	"bytes"
	"io"
	"regexp"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

var charsetPatterns = []*regexp.Regexp{
	// <meta charset="...">
	regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([^"'\s>;]+)`),
	// <meta http-equiv="Content-Type" content="text/html; charset=...">
	regexp.MustCompile(`(?i)<meta[^>]+http-equiv=["']?Content-Type["']?[^>]+content=["']?[^"']*charset=([^"'\s;>]+)`),
	// content before http-equiv
	regexp.MustCompile(`(?i)<meta[^>]+content=["']?[^"']*charset=([^"'\s;>]+)[^>]+http-equiv=["']?Content-Type["']?`),
}

// decodeHTML decodes raw bytes using the charset declared in the markup,
// falling back to UTF-8.
func decodeHTML(body []byte) string {
	if enc := encodingFromMeta(body); enc != nil {
		if decoded, err := decodeWith(body, enc); err == nil {
			return decoded
		}
	}
	return string(body)
}

// encodingFromMeta sniffs the charset from raw bytes so the markup is never
// parsed with the wrong encoding.
func encodingFromMeta(body []byte) encoding.Encoding {
	if bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}) {
		return nil
	}

	for _, re := range charsetPatterns {
		sub := re.FindSubmatch(body)
		if len(sub) < 2 {
			continue
		}
		if enc, err := htmlindex.Get(string(sub[1])); err == nil {
			return enc
		}
	}
	return nil
}

func decodeWith(body []byte, enc encoding.Encoding) (string, error) {
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
