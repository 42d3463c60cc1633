// Package webhook serves the Telegram webhook endpoint along with health and metrics.
package webhook

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/starbot-tg/starbot/internal/config"
	"github.com/starbot-tg/starbot/internal/infra"
)

const (
	HealthPath  = "/healthz"
	MetricsPath = "/metrics"

	maxBodyBytes      = 1 << 20
	readHeaderTimeout = 5 * time.Second
	registerTimeout   = 15 * time.Second
)

// Processor handles one raw update payload.
type Processor interface {
	Process(ctx context.Context, payload []byte) error
}

// Registrar points the platform at our webhook URL.
type Registrar interface {
	SetWebhook(ctx context.Context, url string) error
}

type Server struct {
	processor  Processor
	registrar  Registrar
	webhookURL string
	metrics    http.Handler
	addr       string

	runMutex sync.Mutex
	srv      *http.Server
	listener net.Listener
	serveErr chan error
}

func NewServer(processor Processor, port int) *Server {
	return &Server{
		processor: processor,
		addr:      ":" + strconv.Itoa(port),
	}
}

// WithRegistration makes Start call setWebhook. An empty url skips registration.
func (s *Server) WithRegistration(registrar Registrar, url string) *Server {
	s.registrar = registrar
	s.webhookURL = url
	return s
}

func (s *Server) WithMetrics(h http.Handler) *Server {
	s.metrics = h
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.WebhookPath, s.handleUpdate)
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		writeText(w, http.StatusOK, "ok")
	})
	if s.metrics != nil {
		mux.Handle(MetricsPath, s.metrics)
	}
	return mux
}

// Addr is the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *Server) Start(ctx context.Context) error {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()
	if s.srv != nil {
		return nil
	}
	entry := s.getLogEntry().WithField("method", "Start")

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	s.listener = listener
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.serveErr = make(chan error, 1)
	go func(srv *http.Server, serveErr chan<- error) {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			entry.WithField("error", err.Error()).Error("http server stopped")
			serveErr <- err
		}
		close(serveErr)
	}(s.srv, s.serveErr)
	entry.WithField("addr", listener.Addr().String()).Info("http server listening")

	s.register(ctx)
	return nil
}

// register never fails startup: a bot without a webhook still serves health checks.
func (s *Server) register(ctx context.Context) {
	entry := s.getLogEntry().WithField("method", "register")
	if s.registrar == nil || s.webhookURL == "" {
		entry.Info("no public url configured, webhook registration skipped")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()
	if err := s.registrar.SetWebhook(ctx, s.webhookURL); err != nil {
		entry.WithField("error", err.Error()).Error("cant set webhook")
		return
	}
	entry.WithField("url", s.webhookURL).Info("webhook registered")
}

func (s *Server) Stop(ctx context.Context) error {
	s.runMutex.Lock()
	srv, serveErr := s.srv, s.serveErr
	s.srv, s.serveErr, s.listener = nil, nil, nil
	s.runMutex.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return <-serveErr
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	entry := s.getLogEntry().WithField("method", "handleUpdate")
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeText(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		entry.WithField("error", err.Error()).Error("cant read update body")
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	// Command failures are logged by the processor and acknowledged. Anything
	// else failing, panics included, is a 500.
	if err := s.processor.Process(r.Context(), payload); err != nil && !errors.Is(err, infra.ErrCommandFailed) {
		writeText(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	writeText(w, http.StatusOK, "OK")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (s *Server) getLogEntry() *log.Entry {
	return log.WithField("object", "WebhookServer")
}
