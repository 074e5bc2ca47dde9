// Package validation applies the form's per-field rules to a RawForm.
//
// Rules live on the RawForm struct tags and are checked by
// go-playground/validator, which walks every field in declaration order
// and collects every failure, so one bad field never hides another.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/aanand-mishra/readmission-client/internal/types"
	"github.com/go-playground/validator/v10"
)

// Error is one failed field rule.
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is every failed rule for one submission, in field declaration
// order. A nil or empty Errors means the form is valid.
type Errors []Error

func (e Errors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Messages returns the human-readable message of each error.
func (e Errors) Messages() []string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Message)
	}
	return msgs
}

// messages maps an input identifier to the text shown when its rule fails.
var messages = map[string]string{
	"time_in_hospital":          "Time in Hospital must be a non-negative integer.",
	"num_lab_procedures":        "Number of Lab Procedures must be a non-negative number.",
	"num_procedures":            "Number of Procedures must be a non-negative integer.",
	"num_medications":           "Number of Medications must be a non-negative number.",
	"number_emergency":          "Number of Emergency Visits must be a non-negative integer.",
	"number_diagnoses":          "Number of Diagnoses must be a non-negative integer.",
	"number_outpatient_treated": "Number of Outpatient Treated must be a non-negative number.",
	"number_inpatient_treated":  "Number of Inpatient Treated must be a non-negative number.",
	"max_glu_serum":             "Max Glu Serum is required.",
	"A1Cresult":                 "A1C Result is required.",
	"insulin":                   "Insulin must not be empty.",
	"admission_type_desc":       "Admission Type Description is required.",
	"discharge_category":        "Discharge Category is required.",
	"admission_category":        "Admission Category is required.",
}

// Validator checks RawForm values. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator with the "notnan" rule registered and field
// names reported by their input identifier.
//
// insulin is checked with "notnan" alone: negative codes are accepted,
// unlike the other numeric inputs which use "gte=0".
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("schema"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	if err := v.RegisterValidation("notnan", notNaN); err != nil {
		panic(err)
	}
	return &Validator{validate: v}
}

func notNaN(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return !math.IsNaN(f.Float())
	}
	return true
}

// Validate runs every rule against raw and returns all failures.
func (v *Validator) Validate(raw types.RawForm) Errors {
	err := v.validate.Struct(raw)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: only possible for a non-struct argument.
		return Errors{{Message: err.Error()}}
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid.", fe.Field())
		}
		out = append(out, Error{Field: fe.Field(), Message: msg})
	}
	return out
}

// Features validates raw and, only when every rule passes, converts it to
// the payload sent to the backend.
func (v *Validator) Features(raw types.RawForm) (types.PatientFeatures, Errors) {
	if errs := v.Validate(raw); len(errs) > 0 {
		return types.PatientFeatures{}, errs
	}

	var patientID *int64
	if !raw.PatientID.NaN() {
		id := int64(raw.PatientID)
		patientID = &id
	}

	return types.PatientFeatures{
		PatientID:               patientID,
		TimeInHospital:          int64(raw.TimeInHospital),
		NumLabProcedures:        float64(raw.NumLabProcedures),
		NumProcedures:           int64(raw.NumProcedures),
		NumMedications:          float64(raw.NumMedications),
		NumberEmergency:         int64(raw.NumberEmergency),
		NumberDiagnoses:         int64(raw.NumberDiagnoses),
		NumberOutpatientTreated: float64(raw.NumberOutpatientTreated),
		NumberInpatientTreated:  float64(raw.NumberInpatientTreated),
		MaxGluSerum:             raw.MaxGluSerum,
		A1CResult:               raw.A1CResult,
		Insulin:                 int64(raw.Insulin),
		DiabetesMed:             bool(raw.DiabetesMed),
		AdmissionTypeDesc:       raw.AdmissionTypeDesc,
		DischargeCategory:       raw.DischargeCategory,
		AdmissionCategory:       raw.AdmissionCategory,
	}, nil
}
