package sentrytriage

import (
	"net/http"

	"go.uber.org/zap"
)

// Handler recovers panics from next, reports them and answers 500.
// http.ErrAbortHandler is re-raised untouched so net/http can abort the
// response as intended.
func (r *Reporter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}
			r.logger.Error("panic in HTTP handler",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Any("panic", recovered),
			)
			r.CapturePanic(recovered)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, req)
	})
}
