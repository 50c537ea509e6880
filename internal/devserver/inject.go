package devserver

import (
	"bytes"
	"net/http"
	"strings"
)

const injectTag = `<script async src="/livereload.js"></script>`

// injectLiveReload is a middleware that injects the live-reload client script
// into HTML responses before </body>.
func injectLiveReload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only inject into HTML pages (not assets, API endpoints, etc.)
		p := r.URL.Path
		isHTMLPage := p == "/" || p == "" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".html")
		if !isHTMLPage {
			next.ServeHTTP(w, r)
			return
		}

		injector := newLiveReloadInjector(w)
		next.ServeHTTP(injector, r)
		injector.finalize()
	})
}

// liveReloadInjector wraps an http.ResponseWriter to inject the client script
// into HTML responses. Uses buffering with a size limit to prevent stalls.
type liveReloadInjector struct {
	http.ResponseWriter
	statusCode    int
	buffer        []byte
	headerWritten bool
	passthrough   bool
	maxSize       int
}

func newLiveReloadInjector(w http.ResponseWriter) *liveReloadInjector {
	return &liveReloadInjector{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		maxSize:        512 * 1024, // 512KB max - typical HTML page
	}
}

func (l *liveReloadInjector) WriteHeader(code int) {
	l.statusCode = code
	if l.passthrough {
		l.ResponseWriter.WriteHeader(code)
		l.headerWritten = true
	}
}

func (l *liveReloadInjector) Write(data []byte) (int, error) {
	// Check Content-Type on first write
	if !l.headerWritten && !l.passthrough && l.buffer == nil {
		contentType := l.ResponseWriter.Header().Get("Content-Type")
		isHTML := contentType == "" || strings.Contains(contentType, "text/html")
		if !isHTML || l.statusCode != http.StatusOK {
			l.passthrough = true
			l.ResponseWriter.WriteHeader(l.statusCode)
			l.headerWritten = true
			return l.ResponseWriter.Write(data)
		}
		l.buffer = make([]byte, 0, 64*1024)
	}

	if l.passthrough {
		return l.ResponseWriter.Write(data)
	}

	if len(l.buffer)+len(data) > l.maxSize {
		// Too large - switch to passthrough, flush buffer, write remaining
		l.passthrough = true
		l.ResponseWriter.WriteHeader(l.statusCode)
		l.headerWritten = true
		if len(l.buffer) > 0 {
			if _, err := l.ResponseWriter.Write(l.buffer); err != nil {
				return 0, err
			}
		}
		return l.ResponseWriter.Write(data)
	}

	l.buffer = append(l.buffer, data...)
	return len(data), nil
}

// finalize must be called after the handler completes to inject the script.
func (l *liveReloadInjector) finalize() {
	if l.passthrough || len(l.buffer) == 0 {
		if !l.headerWritten {
			l.ResponseWriter.WriteHeader(l.statusCode)
		}
		return
	}

	modified := l.buffer
	if i := bytes.LastIndex(l.buffer, []byte("</body>")); i >= 0 {
		modified = make([]byte, 0, len(l.buffer)+len(injectTag))
		modified = append(modified, l.buffer[:i]...)
		modified = append(modified, injectTag...)
		modified = append(modified, l.buffer[i:]...)
	}

	l.ResponseWriter.Header().Del("Content-Length")
	l.ResponseWriter.WriteHeader(l.statusCode)
	_, _ = l.ResponseWriter.Write(modified)
}
