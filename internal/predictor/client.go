// Package predictor talks to the readmission prediction backend.
//
// One call to Predict is exactly one POST /predict. Whatever happens on the
// wire, the caller gets a types.Result back. Transport problems are logged
// here and surfaced as a generic Failure, never as a Go error.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aanand-mishra/readmission-client/internal/types"
)

// GenericFailureMessage is shown for transport and protocol failures. The
// underlying cause is only logged.
const GenericFailureMessage = "An error occurred while processing your request."

// PredictPath is the backend endpoint, relative to the base URL.
const PredictPath = "/predict"

// Client sends feature sets to the prediction backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for the exchange. Any timeout
// comes from this client; the default has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger transport failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client for the backend at baseURL (scheme and host, with an
// optional path prefix).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict posts features to the backend and interprets the response.
func (c *Client) Predict(ctx context.Context, features types.PatientFeatures) types.Result {
	body, err := c.exchange(ctx, features)
	if err != nil {
		c.log.ErrorContext(ctx, "prediction request failed",
			slog.String("kind", string(types.FailureTransport)),
			slog.String("error", err.Error()))
		return types.Failed(types.FailureTransport, GenericFailureMessage)
	}

	res, err := decodeResponse(body)
	if err != nil {
		kind := types.FailureProtocol
		if res.Failure != nil {
			kind = res.Failure.Kind
		}
		c.log.ErrorContext(ctx, "prediction response rejected",
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()))
	}
	return res
}

// exchange performs the POST and returns the raw response body. The HTTP
// status is not inspected: the backend reports errors in the
// body with 4xx/5xx statuses too.
func (c *Client) exchange(ctx context.Context, features types.PatientFeatures) ([]byte, error) {
	payload, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("predictor.Predict: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PredictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("predictor.Predict: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("predictor.Predict: do: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("predictor.Predict: read body (status %d): %w", resp.StatusCode, err)
	}
	return data, nil
}

// decodeResponse maps a response body onto a Result. The returned error,
// when non-nil, is the diagnostic behind a transport or protocol Failure
// and is meant for logs only.
func decodeResponse(body []byte) (types.Result, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return types.Failed(types.FailureTransport, GenericFailureMessage),
			fmt.Errorf("decode body: %w", err)
	}

	if raw, ok := obj["error"]; ok && !isNull(raw) {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return types.Failed(types.FailureProtocol, GenericFailureMessage),
				fmt.Errorf("error key is not a string: %s", raw)
		}
		return types.Failed(types.FailureBackend, msg), nil
	}

	var (
		prediction  float64
		probability float64
	)
	if err := field(obj, "prediction", &prediction); err != nil {
		return types.Failed(types.FailureProtocol, GenericFailureMessage), err
	}
	if prediction != 0 && prediction != 1 {
		return types.Failed(types.FailureProtocol, GenericFailureMessage),
			fmt.Errorf("prediction %v is not 0 or 1", prediction)
	}
	if err := field(obj, "probability", &probability); err != nil {
		return types.Failed(types.FailureProtocol, GenericFailureMessage), err
	}
	if probability < 0 || probability > 1 {
		return types.Failed(types.FailureProtocol, GenericFailureMessage),
			fmt.Errorf("probability %v outside [0, 1]", probability)
	}

	return types.Succeeded(types.Success{
		Prediction:  int(prediction),
		Probability: probability,
	}), nil
}

func field(obj map[string]json.RawMessage, key string, dst *float64) error {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return fmt.Errorf("missing %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%q is not a number: %s", key, raw)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
