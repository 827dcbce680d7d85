package webhook

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

const (
	signatureHeader     = "X-Hub-Signature-256"
	defaultMaxBodyBytes = 1 << 20
	defaultConcurrency  = 32
)

// HandlerFunc consumes the normalized events of one verified delivery. An
// error is logged, not surfaced to the vendor: the delivery was authentic
// and acknowledging it prevents pointless redelivery.
type HandlerFunc func(r *http.Request, events []Event) error

// HandlerOption customises handler behaviour.
type HandlerOption func(*Handler)

// WithMaxBodyBytes bounds how much of a delivery body is read.
func WithMaxBodyBytes(limit int64) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.maxBodyBytes = limit
		}
	}
}

// WithMaxConcurrency bounds how many deliveries are processed at once.
func WithMaxConcurrency(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.sem = semaphore.NewWeighted(n)
		}
	}
}

// Handler is the HTTP face of the webhook pipeline: GET requests run the
// subscription handshake, POST requests run signature verification followed
// by normalization, handing the events to the configured HandlerFunc.
type Handler struct {
	verifyToken  string
	appSecret    string
	handle       HandlerFunc
	logger       zerolog.Logger
	maxBodyBytes int64
	sem          *semaphore.Weighted
}

// NewHandler constructs a webhook handler. Both the verify token and the app
// secret are required: the signature check is a security boundary and is
// never skipped.
func NewHandler(verifyToken, appSecret string, handle HandlerFunc, logger zerolog.Logger, opts ...HandlerOption) (*Handler, error) {
	if strings.TrimSpace(verifyToken) == "" {
		return nil, errors.New("webhook handler: verify token is required")
	}
	if strings.TrimSpace(appSecret) == "" {
		return nil, errors.New("webhook handler: app secret is required")
	}
	if handle == nil {
		return nil, errors.New("webhook handler: handler func is required")
	}
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}

	h := &Handler{
		verifyToken:  verifyToken,
		appSecret:    appSecret,
		handle:       handle,
		logger:       logger,
		maxBodyBytes: defaultMaxBodyBytes,
		sem:          semaphore.NewWeighted(defaultConcurrency),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.serveHandshake(w, r)
	case http.MethodPost:
		h.serveDelivery(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) serveHandshake(w http.ResponseWriter, r *http.Request) {
	challenge, err := VerifySubscription(r.URL.Query(), h.verifyToken)
	if err != nil {
		h.logger.Warn().Err(err).Msg("webhook handler: handshake rejected")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	h.logger.Info().Msg("webhook handler: subscription verified")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, challenge)
}

func (h *Handler) serveDelivery(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	events, err := ParseVerified(body, r.Header.Get(signatureHeader), h.appSecret)
	if err != nil {
		h.logger.Warn().Err(err).Msg("webhook handler: delivery rejected")
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.sem.Acquire(r.Context(), 1); err != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.sem.Release(1)

	if len(events) > 0 {
		if err := h.handle(r, events); err != nil {
			h.logger.Error().Err(err).Int("events", len(events)).Msg("webhook handler: event handler failed")
		}
	}

	// Always acknowledge an authentic delivery, handled or not; the vendor
	// redelivers on non-2xx and the signature already passed.
	w.WriteHeader(http.StatusOK)
}
