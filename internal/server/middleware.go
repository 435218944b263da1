package server

import "net/http"

const modelNotTrainedMessage = "Model not trained yet. Train the model before requesting predictions."

// requireModel rejects prediction requests until a trained pipeline is
// loaded. Browsing, history, and ratings routes stay outside this guard.
func (s *Service) requireModel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.pipeline.Load() == nil {
			writeError(w, http.StatusServiceUnavailable, modelNotTrainedMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}
