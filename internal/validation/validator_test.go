package validation

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/aanand-mishra/readmission-client/internal/types"
)

func validForm() types.RawForm {
	return types.RawForm{
		PatientID:               1001,
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

var nan = math.NaN()

func TestValidateValidForm(t *testing.T) {
	errs := New().Validate(validForm())
	if len(errs) != 0 {
		t.Fatalf("Expected no errors for a valid form, got: %v", errs)
	}
}

func TestValidateZeroIsAllowed(t *testing.T) {
	raw := validForm()
	raw.TimeInHospital = 0
	raw.NumLabProcedures = 0
	raw.Insulin = 0

	if errs := New().Validate(raw); len(errs) != 0 {
		t.Errorf("Expected zero values to pass, got: %v", errs)
	}
}

// Each case breaks exactly one field and expects exactly one error naming it.
func TestValidateSingleFieldRules(t *testing.T) {
	testCases := []struct {
		name    string
		field   string
		mutate  func(r *types.RawForm)
		message string
	}{
		{"time_in_hospital NaN", "time_in_hospital", func(r *types.RawForm) { r.TimeInHospital = types.Integer(nan) }, "Time in Hospital must be a non-negative integer."},
		{"time_in_hospital negative", "time_in_hospital", func(r *types.RawForm) { r.TimeInHospital = -1 }, "Time in Hospital must be a non-negative integer."},
		{"num_lab_procedures NaN", "num_lab_procedures", func(r *types.RawForm) { r.NumLabProcedures = types.Real(nan) }, "Number of Lab Procedures must be a non-negative number."},
		{"num_lab_procedures negative", "num_lab_procedures", func(r *types.RawForm) { r.NumLabProcedures = -0.5 }, "Number of Lab Procedures must be a non-negative number."},
		{"num_procedures NaN", "num_procedures", func(r *types.RawForm) { r.NumProcedures = types.Integer(nan) }, "Number of Procedures must be a non-negative integer."},
		{"num_procedures negative", "num_procedures", func(r *types.RawForm) { r.NumProcedures = -2 }, "Number of Procedures must be a non-negative integer."},
		{"num_medications NaN", "num_medications", func(r *types.RawForm) { r.NumMedications = types.Real(nan) }, "Number of Medications must be a non-negative number."},
		{"num_medications negative", "num_medications", func(r *types.RawForm) { r.NumMedications = -3 }, "Number of Medications must be a non-negative number."},
		{"number_emergency NaN", "number_emergency", func(r *types.RawForm) { r.NumberEmergency = types.Integer(nan) }, "Number of Emergency Visits must be a non-negative integer."},
		{"number_emergency negative", "number_emergency", func(r *types.RawForm) { r.NumberEmergency = -1 }, "Number of Emergency Visits must be a non-negative integer."},
		{"number_diagnoses NaN", "number_diagnoses", func(r *types.RawForm) { r.NumberDiagnoses = types.Integer(nan) }, "Number of Diagnoses must be a non-negative integer."},
		{"number_diagnoses negative", "number_diagnoses", func(r *types.RawForm) { r.NumberDiagnoses = -1 }, "Number of Diagnoses must be a non-negative integer."},
		{"number_outpatient_treated NaN", "number_outpatient_treated", func(r *types.RawForm) { r.NumberOutpatientTreated = types.Real(nan) }, "Number of Outpatient Treated must be a non-negative number."},
		{"number_outpatient_treated negative", "number_outpatient_treated", func(r *types.RawForm) { r.NumberOutpatientTreated = -1 }, "Number of Outpatient Treated must be a non-negative number."},
		{"number_inpatient_treated NaN", "number_inpatient_treated", func(r *types.RawForm) { r.NumberInpatientTreated = types.Real(nan) }, "Number of Inpatient Treated must be a non-negative number."},
		{"number_inpatient_treated negative", "number_inpatient_treated", func(r *types.RawForm) { r.NumberInpatientTreated = -1 }, "Number of Inpatient Treated must be a non-negative number."},
		{"max_glu_serum empty", "max_glu_serum", func(r *types.RawForm) { r.MaxGluSerum = "" }, "Max Glu Serum is required."},
		{"A1Cresult empty", "A1Cresult", func(r *types.RawForm) { r.A1CResult = "" }, "A1C Result is required."},
		{"insulin NaN", "insulin", func(r *types.RawForm) { r.Insulin = types.Integer(nan) }, "Insulin must not be empty."},
		{"admission_type_desc empty", "admission_type_desc", func(r *types.RawForm) { r.AdmissionTypeDesc = "" }, "Admission Type Description is required."},
		{"discharge_category empty", "discharge_category", func(r *types.RawForm) { r.DischargeCategory = "" }, "Discharge Category is required."},
		{"admission_category empty", "admission_category", func(r *types.RawForm) { r.AdmissionCategory = "" }, "Admission Category is required."},
	}

	v := New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validForm()
			tc.mutate(&raw)

			errs := v.Validate(raw)
			if len(errs) != 1 {
				t.Fatalf("Expected exactly 1 error, got %d: %v", len(errs), errs)
			}
			if errs[0].Field != tc.field {
				t.Errorf("Expected error for field %q, got %q", tc.field, errs[0].Field)
			}
			if errs[0].Message != tc.message {
				t.Errorf("Expected message %q, got %q", tc.message, errs[0].Message)
			}
		})
	}
}

func TestValidateInsulinAllowsNegative(t *testing.T) {
	raw := validForm()
	raw.Insulin = -4

	if errs := New().Validate(raw); len(errs) != 0 {
		t.Errorf("Expected negative insulin code to pass, got: %v", errs)
	}
}

func TestValidateIgnoresUnruledFields(t *testing.T) {
	raw := validForm()
	raw.PatientID = types.Integer(nan)
	raw.DiabetesMed = false

	if errs := New().Validate(raw); len(errs) != 0 {
		t.Errorf("Expected patient_id and diabetesMed to carry no rule, got: %v", errs)
	}
}

func TestValidateIsExhaustive(t *testing.T) {
	raw := validForm()
	raw.AdmissionCategory = ""
	raw.TimeInHospital = -1
	raw.Insulin = types.Integer(nan)

	errs := New().Validate(raw)
	if len(errs) != 3 {
		t.Fatalf("Expected 3 errors, got %d: %v", len(errs), errs)
	}

	// Declaration order, not the order the fields were broken in.
	want := []string{"time_in_hospital", "insulin", "admission_category"}
	for i, field := range want {
		if errs[i].Field != field {
			t.Errorf("Error %d: expected field %q, got %q", i, field, errs[i].Field)
		}
	}
}

func TestValidateEmptyForm(t *testing.T) {
	raw := types.RawForm{
		PatientID:               types.Integer(nan),
		TimeInHospital:          types.Integer(nan),
		NumLabProcedures:        types.Real(nan),
		NumProcedures:           types.Integer(nan),
		NumMedications:          types.Real(nan),
		NumberEmergency:         types.Integer(nan),
		NumberDiagnoses:         types.Integer(nan),
		NumberOutpatientTreated: types.Real(nan),
		NumberInpatientTreated:  types.Real(nan),
		Insulin:                 types.Integer(nan),
	}

	errs := New().Validate(raw)
	if len(errs) != 14 {
		t.Fatalf("Expected 14 errors for an empty form, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs.Error(), "Insulin must not be empty.") {
		t.Errorf("Expected joined error to mention insulin, got: %v", errs)
	}
}

func TestFeaturesRefusesInvalidForm(t *testing.T) {
	raw := validForm()
	raw.MaxGluSerum = ""

	_, errs := New().Features(raw)
	if len(errs) != 1 {
		t.Fatalf("Expected Features() to refuse an invalid form with 1 error, got %v", errs)
	}
}

func TestFeaturesPayloadKeys(t *testing.T) {
	features, errs := New().Features(validForm())
	if len(errs) != 0 {
		t.Fatalf("Features() failed: %v", errs)
	}

	body, err := json.Marshal(features)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := map[string]any{
		"patient_id":                1001.0,
		"time_in_hospital":          3.0,
		"num_lab_procedures":        41.5,
		"num_procedures":            1.0,
		"num_medications":           12.0,
		"number_emergency":          0.0,
		"number_diagnoses":          7.0,
		"number_outpatient_treated": 0.0,
		"number_inpatient_treated":  2.0,
		"max_glu_serum":             "Norm",
		"A1Cresult":                 ">8",
		"insulin":                   1.0,
		"diabetesMed":               true,
		"admission_type_desc":       "Emergency",
		"discharge_category":        "Discharged to Home",
		"admission_category":        "Physician Referral",
	}
	if len(decoded) != len(want) {
		t.Fatalf("Expected %d keys, got %d: %v", len(want), len(decoded), decoded)
	}
	for k, v := range want {
		if decoded[k] != v {
			t.Errorf("Key %q: expected %v (%T), got %v (%T)", k, v, v, decoded[k], decoded[k])
		}
	}
}

func TestFeaturesUnparsedPatientIDIsNull(t *testing.T) {
	raw := validForm()
	raw.PatientID = types.Integer(nan)

	features, errs := New().Features(raw)
	if len(errs) != 0 {
		t.Fatalf("Features() failed: %v", errs)
	}

	body, err := json.Marshal(features)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(body), `"patient_id":null`) {
		t.Errorf("Expected patient_id to encode as null, got %s", body)
	}
}
