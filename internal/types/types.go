// Package types holds the data structures shared by every stage of a
// submission. Keeping them in one place prevents import cycles: the
// collector, validator, predictor client and renderer all import types
// without depending on each other.
package types

import "math"

// Integer and Real are the coerced forms of numeric inputs.
//
// Both carry a float64 so that a value which failed to parse can be held
// as NaN (the "not-a-number" sentinel) instead of aborting collection.
// The validator reports NaN uniformly; nothing downstream of validation
// ever sees it.
type Integer float64

// Real is a coerced real-valued input. See Integer.
type Real float64

// NaN reports whether the value failed to parse.
func (i Integer) NaN() bool { return math.IsNaN(float64(i)) }

// NaN reports whether the value failed to parse.
func (r Real) NaN() bool { return math.IsNaN(float64(r)) }

// Flag is a boolean derived from a raw string: it is true only when the
// raw value is exactly "true".
type Flag bool

// RawForm is the coerced value map for one submission.
//
// Field order matches the form's declaration order, which is also the
// order validation errors are reported in.
//
// Struct tags:
//
//  1. schema:"..."   the input identifier the value is read from
//     (gorilla/schema binding).
//  2. validate:"..." rules checked by go-playground/validator.
//     "gte=0" fails for NaN as well as negatives, "notnan" only for NaN.
type RawForm struct {
	PatientID               Integer `schema:"patient_id"`
	TimeInHospital          Integer `schema:"time_in_hospital"          validate:"gte=0"`
	NumLabProcedures        Real    `schema:"num_lab_procedures"        validate:"gte=0"`
	NumProcedures           Integer `schema:"num_procedures"            validate:"gte=0"`
	NumMedications          Real    `schema:"num_medications"           validate:"gte=0"`
	NumberEmergency         Integer `schema:"number_emergency"          validate:"gte=0"`
	NumberDiagnoses         Integer `schema:"number_diagnoses"          validate:"gte=0"`
	NumberOutpatientTreated Real    `schema:"number_outpatient_treated" validate:"gte=0"`
	NumberInpatientTreated  Real    `schema:"number_inpatient_treated"  validate:"gte=0"`
	MaxGluSerum             string  `schema:"max_glu_serum"             validate:"required"`
	A1CResult               string  `schema:"A1Cresult"                 validate:"required"`
	Insulin                 Integer `schema:"insulin"                   validate:"notnan"`
	DiabetesMed             Flag    `schema:"diabetesMed"`
	AdmissionTypeDesc       string  `schema:"admission_type_desc"       validate:"required"`
	DischargeCategory       string  `schema:"discharge_category"        validate:"required"`
	AdmissionCategory       string  `schema:"admission_category"        validate:"required"`
}

// PatientFeatures is the validated payload sent to the prediction backend.
//
// The json tags are the backend's wire keys and must not change.
// PatientID is a pointer because the identifier is not validated: when it
// did not parse it is sent as null.
type PatientFeatures struct {
	PatientID               *int64  `json:"patient_id"`
	TimeInHospital          int64   `json:"time_in_hospital"`
	NumLabProcedures        float64 `json:"num_lab_procedures"`
	NumProcedures           int64   `json:"num_procedures"`
	NumMedications          float64 `json:"num_medications"`
	NumberEmergency         int64   `json:"number_emergency"`
	NumberDiagnoses         int64   `json:"number_diagnoses"`
	NumberOutpatientTreated float64 `json:"number_outpatient_treated"`
	NumberInpatientTreated  float64 `json:"number_inpatient_treated"`
	MaxGluSerum             string  `json:"max_glu_serum"`
	A1CResult               string  `json:"A1Cresult"`
	Insulin                 int64   `json:"insulin"`
	DiabetesMed             bool    `json:"diabetesMed"`
	AdmissionTypeDesc       string  `json:"admission_type_desc"`
	DischargeCategory       string  `json:"discharge_category"`
	AdmissionCategory       string  `json:"admission_category"`
}

// FailureKind classifies why a prediction exchange did not succeed.
type FailureKind string

const (
	// FailureTransport covers connection errors and bodies that are not JSON.
	FailureTransport FailureKind = "transport"
	// FailureBackend is a structurally valid response carrying an "error" key.
	FailureBackend FailureKind = "backend"
	// FailureProtocol is a JSON response missing or mangling the success keys.
	FailureProtocol FailureKind = "protocol"
)

// Success is a prediction the backend returned.
type Success struct {
	Prediction  int     `json:"prediction"`  // 0 or 1
	Probability float64 `json:"probability"` // in [0, 1]
}

// Readmitted reports whether the model predicts readmission within 30 days.
func (s Success) Readmitted() bool { return s.Prediction == 1 }

// Failure is a prediction exchange that did not produce a Success.
// Message is what the user is shown.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Result is the outcome of one prediction exchange: exactly one of
// Success or Failure is set.
type Result struct {
	Success *Success `json:"success,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// OK reports whether the result is a Success.
func (r Result) OK() bool { return r.Success != nil }

// Succeeded wraps s in a Result.
func Succeeded(s Success) Result { return Result{Success: &s} }

// Failed wraps a failure of the given kind in a Result.
func Failed(kind FailureKind, message string) Result {
	return Result{Failure: &Failure{Kind: kind, Message: message}}
}
