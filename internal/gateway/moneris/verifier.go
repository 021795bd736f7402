package moneris

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

const maxResponseSize = 64 << 10

type Config struct {
	VerifyURL string
	StoreID   string
	HPPKey    string
	// Referer is the postback URL registered with the gateway.
	Referer string
	Timeout time.Duration
}

// HTTPVerifier confirms hosted payment page transactions with the gateway.
type HTTPVerifier struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[string]
	logger  *zerolog.Logger
}

func NewHTTPVerifier(cfg Config, logger *zerolog.Logger) (*HTTPVerifier, error) {
	if cfg.VerifyURL == "" {
		return nil, fmt.Errorf("verify url is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	v := &HTTPVerifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}

	v.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "moneris-verify",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			v.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return v, nil
}

// Verify returns the raw verification response for the transaction key.
func (v *HTTPVerifier) Verify(ctx context.Context, transactionKey string) (string, error) {
	if transactionKey == "" {
		return "", fmt.Errorf("transaction key is empty")
	}

	body, err := v.breaker.Execute(func() (string, error) {
		return v.post(ctx, transactionKey)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("verification unavailable: %w", err)
	}
	if err != nil {
		return "", err
	}

	return body, nil
}

func (v *HTTPVerifier) post(ctx context.Context, transactionKey string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range []struct{ name, value string }{
		{"ps_store_id", v.cfg.StoreID},
		{"hpp_key", v.cfg.HPPKey},
		{"transactionKey", transactionKey},
	} {
		if err := w.WriteField(field.name, field.value); err != nil {
			return "", fmt.Errorf("w.WriteField: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("w.Close: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.cfg.VerifyURL, &buf)
	if err != nil {
		return "", fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if v.cfg.Referer != "" {
		req.Header.Set("Referer", v.cfg.Referer)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("client.Do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("verify responded with status %d", resp.StatusCode)
	}

	return string(body), nil
}
