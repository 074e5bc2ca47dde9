package predictor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aanand-mishra/readmission-client/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleFeatures() types.PatientFeatures {
	id := int64(1001)
	return types.PatientFeatures{
		PatientID:               &id,
		TimeInHospital:          3,
		NumLabProcedures:        41.5,
		NumProcedures:           1,
		NumMedications:          12,
		NumberEmergency:         0,
		NumberDiagnoses:         7,
		NumberOutpatientTreated: 0,
		NumberInpatientTreated:  2,
		MaxGluSerum:             "Norm",
		A1CResult:               ">8",
		Insulin:                 1,
		DiabetesMed:             true,
		AdmissionTypeDesc:       "Emergency",
		DischargeCategory:       "Discharged to Home",
		AdmissionCategory:       "Physician Referral",
	}
}

// backend returns a test server that answers every request with status and body.
func backend(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPredictSuccess(t *testing.T) {
	srv := backend(t, http.StatusOK, `{"prediction": 1, "probability": 0.73}`)

	res := New(srv.URL, WithLogger(quietLogger())).Predict(context.Background(), sampleFeatures())
	if !res.OK() {
		t.Fatalf("Expected success, got failure: %+v", res.Failure)
	}
	if res.Success.Prediction != 1 {
		t.Errorf("Expected prediction 1, got %d", res.Success.Prediction)
	}
	if res.Success.Probability != 0.73 {
		t.Errorf("Expected probability 0.73, got %v", res.Success.Probability)
	}
}

func TestPredictRequestShape(t *testing.T) {
	type captured struct {
		method   string
		path     string
		ctype    string
		keys     map[string]json.RawMessage
		features types.PatientFeatures
	}
	var calls atomic.Int32
	seen := make(chan captured, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		c := captured{method: r.Method, path: r.URL.Path, ctype: r.Header.Get("Content-Type")}

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &c.keys)
		_ = json.Unmarshal(body, &c.features)
		seen <- c

		_, _ = io.WriteString(w, `{"prediction": 0, "probability": 0.1}`)
	}))
	defer srv.Close()

	sent := sampleFeatures()
	New(srv.URL+"/", WithLogger(quietLogger())).Predict(context.Background(), sent)

	if calls.Load() != 1 {
		t.Fatalf("Expected exactly 1 request, got %d", calls.Load())
	}
	got := <-seen
	if got.method != http.MethodPost {
		t.Errorf("Expected POST, got %s", got.method)
	}
	if got.path != "/predict" {
		t.Errorf("Expected path /predict, got %s", got.path)
	}
	if got.ctype != "application/json" {
		t.Errorf("Expected JSON content type, got %q", got.ctype)
	}
	if len(got.keys) != 16 {
		t.Errorf("Expected 16 keys in request body, got %d", len(got.keys))
	}
	if got.features.PatientID == nil || *got.features.PatientID != *sent.PatientID {
		t.Errorf("patient_id did not round-trip: %v", got.features.PatientID)
	}
	got.features.PatientID, sent.PatientID = nil, nil
	if got.features != sent {
		t.Errorf("Request body did not round-trip:\nsent %+v\ngot  %+v", sent, got.features)
	}
}

func TestPredictBackendError(t *testing.T) {
	statuses := []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError}

	for _, status := range statuses {
		srv := backend(t, status, `{"error": "model unavailable"}`)

		res := New(srv.URL, WithLogger(quietLogger())).Predict(context.Background(), sampleFeatures())
		if res.OK() {
			t.Fatalf("status %d: expected failure, got success", status)
		}
		if res.Failure.Kind != types.FailureBackend {
			t.Errorf("status %d: expected backend failure, got %s", status, res.Failure.Kind)
		}
		if res.Failure.Message != "model unavailable" {
			t.Errorf("status %d: expected verbatim message, got %q", status, res.Failure.Message)
		}
	}
}

func TestPredictProtocolErrors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"missing probability", `{"prediction": 1}`},
		{"missing prediction", `{"probability": 0.5}`},
		{"prediction out of range", `{"prediction": 2, "probability": 0.5}`},
		{"fractional prediction", `{"prediction": 0.5, "probability": 0.5}`},
		{"probability above one", `{"prediction": 1, "probability": 1.5}`},
		{"probability below zero", `{"prediction": 0, "probability": -0.1}`},
		{"probability as string", `{"prediction": 0, "probability": "0.2"}`},
		{"error not a string", `{"error": {"code": 7}}`},
		{"empty object", `{}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := backend(t, http.StatusOK, tc.body)

			res := New(srv.URL, WithLogger(quietLogger())).Predict(context.Background(), sampleFeatures())
			if res.OK() {
				t.Fatalf("Expected failure, got success: %+v", res.Success)
			}
			if res.Failure.Kind != types.FailureProtocol {
				t.Errorf("Expected protocol failure, got %s", res.Failure.Kind)
			}
			if res.Failure.Message != GenericFailureMessage {
				t.Errorf("Expected generic message, got %q", res.Failure.Message)
			}
		})
	}
}

func TestPredictNonJSONBody(t *testing.T) {
	srv := backend(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	res := New(srv.URL, WithLogger(quietLogger())).Predict(context.Background(), sampleFeatures())
	if res.OK() {
		t.Fatal("Expected failure for non-JSON body")
	}
	if res.Failure.Kind != types.FailureTransport {
		t.Errorf("Expected transport failure, got %s", res.Failure.Kind)
	}
	if res.Failure.Message != GenericFailureMessage {
		t.Errorf("Expected generic message, got %q", res.Failure.Message)
	}
}

func TestPredictConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := New(url, WithLogger(quietLogger())).Predict(context.Background(), sampleFeatures())
	if res.OK() {
		t.Fatal("Expected failure when the backend is down")
	}
	if res.Failure.Kind != types.FailureTransport {
		t.Errorf("Expected transport failure, got %s", res.Failure.Kind)
	}
	if res.Failure.Message != GenericFailureMessage {
		t.Errorf("Expected generic message, got %q", res.Failure.Message)
	}
}

func TestPredictNullErrorFallsThrough(t *testing.T) {
	srv := backend(t, http.StatusOK, `{"error": null, "prediction": 0, "probability": 0.05}`)

	res := New(srv.URL, WithLogger(quietLogger())).Predict(context.Background(), sampleFeatures())
	if !res.OK() {
		t.Fatalf("Expected null error key to be ignored, got failure: %+v", res.Failure)
	}
}
