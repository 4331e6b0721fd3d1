package handler

import (
	"net/http"
	"sync"
	"travelo/config"
	"travelo/di"
	"travelo/shared/logger"
)

var (
	once   sync.Once
	router http.Handler
)

// Handler is the serverless entrypoint. The dependency graph is built on the first request and
// reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()
		logger.SetOutput(cfg)
		logger.SetLogLevel(cfg)

		router = di.InitializeService().Adaptor()
	})

	router.ServeHTTP(w, r)
}
