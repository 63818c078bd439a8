package nethttp

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/glimte/reqlog-go/interceptors"
)

var wildcardPattern = regexp.MustCompile(`\{([^}]*)\}`)

type replayBody struct {
	io.Reader
	io.Closer
}

// newHTTPRequest builds the loggable view of r. The body is read up to limit
// bytes and restored so the handler still sees all of it.
func newHTTPRequest(r *http.Request, limit int64) *interceptors.HTTPRequest {
	route := routePath(r)

	return &interceptors.HTTPRequest{
		Method:  r.Method,
		URL:     r.URL.RequestURI(),
		Path:    route,
		Headers: headerMap(r.Header),
		Query:   valuesMap(r.URL.Query()),
		Params:  pathParams(r),
		Body:    readBody(r, limit),
	}
}

// routePath returns the mux pattern that matched r without its method and
// host, or the request path when no pattern matched.
func routePath(r *http.Request) string {
	pattern := r.Pattern
	if pattern == "" {
		return r.URL.Path
	}
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		pattern = strings.TrimSpace(pattern[i+1:])
	}
	if i := strings.IndexByte(pattern, '/'); i > 0 {
		pattern = pattern[i:]
	}
	return pattern
}

func pathParams(r *http.Request) map[string]any {
	params := make(map[string]any)
	for _, match := range wildcardPattern.FindAllStringSubmatch(r.Pattern, -1) {
		name := strings.TrimSuffix(match[1], "...")
		if name == "" || name == "$" {
			continue
		}
		params[name] = r.PathValue(name)
	}
	return params
}

func headerMap(h http.Header) map[string]any {
	headers := make(map[string]any, len(h))
	for name, values := range h {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return headers
}

func valuesMap(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 1 {
			out[key] = vals[0]
			continue
		}
		list := make([]any, len(vals))
		for i, v := range vals {
			list[i] = v
		}
		out[key] = list
	}
	return out
}

func readBody(r *http.Request, limit int64) any {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, limit))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(buf), r.Body), Closer: r.Body}
	if err != nil {
		return nil
	}

	return decodeBody(buf, r.Header.Get("Content-Type"))
}

// decodeBody turns a payload into a loggable value: JSON is decoded, forms
// become maps and anything else is kept as text.
func decodeBody(payload []byte, contentType string) any {
	if len(payload) == 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType == "application/x-www-form-urlencoded" {
		if form, err := url.ParseQuery(string(payload)); err == nil {
			return valuesMap(form)
		}
	}

	if json.Valid(payload) {
		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil {
			return v
		}
	}

	return string(payload)
}
