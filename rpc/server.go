package rpc

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	headerContentType = "Content-Type"
	applicationJson   = "application/json"

	DefaultMaxBodyBytes int64 = 1 << 20
)

var allowedCORSHeaders = []string{"Accept", "Accept-Language", "Content-Language", "Origin", headerContentType}

type (
	// Registrar registers new HTTP handlers for given router.
	Registrar interface {
		Register(r *mux.Router)
	}

	// RegistrarFunc type is an adapter to allow the use of ordinary function as Registrar.
	RegistrarFunc func(r *mux.Router)

	ServerConfiguration struct {
		// Address specifies the TCP address for the server to listen on, in the form "host:port".
		Address string

		ReadTimeout       time.Duration
		ReadHeaderTimeout time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration

		// MaxBodyBytes limits the size of the request body, DefaultMaxBodyBytes when zero.
		MaxBodyBytes int64
	}
)

func (c *ServerConfiguration) IsAddressEmpty() bool {
	return strings.TrimSpace(c.Address) == ""
}

/*
NewRESTServer returns the server of the /api/v1 routes registered by the
registrars. Panics in handlers are recovered and logged.
*/
func NewRESTServer(conf *ServerConfiguration, log *zerolog.Logger, registrars ...Registrar) *http.Server {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(http.NotFound)
	apiV1Router := r.PathPrefix("/api/v1").Subrouter()
	apiV1Router.Use(handlers.CORS(handlers.AllowedHeaders(allowedCORSHeaders)), accessLog(log))

	for _, registrar := range registrars {
		registrar.Register(apiV1Router)
	}

	maxBody := conf.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{log}), handlers.PrintRecoveryStack(false))
	return &http.Server{
		Addr:              conf.Address,
		ReadTimeout:       durationOr(conf.ReadTimeout, 3*time.Second),
		ReadHeaderTimeout: durationOr(conf.ReadHeaderTimeout, time.Second),
		WriteTimeout:      durationOr(conf.WriteTimeout, 5*time.Second),
		IdleTimeout:       durationOr(conf.IdleTimeout, 30*time.Second),
		Handler:           recovery(http.MaxBytesHandler(r, maxBody)),
	}
}

func (f RegistrarFunc) Register(r *mux.Router) {
	f(r)
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// recoveryLogger adapts zerolog to the logger interface of the recovery handler.
type recoveryLogger struct {
	log *zerolog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.log.Error().Msgf("REST handler panic: %v", v)
}
