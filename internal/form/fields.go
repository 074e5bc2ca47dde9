// Package form binds the prediction form's input widgets to a RawForm.
//
// The Fields table is the single list of input identifiers: the collector
// reads exactly these keys, the HTML page renders one widget per entry and
// the CLI exposes one flag per entry.
package form

// Kind is the coercion applied to a field's raw value.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindText
	KindChoice
	KindFlag
)

// Field describes one input widget.
type Field struct {
	ID      string
	Label   string
	Kind    Kind
	Options []string // KindChoice and KindFlag only
}

// Options offered by the backend's categorical encoders.
var (
	MaxGluSerumOptions       = []string{"No", ">300", "Norm", ">200"}
	A1CResultOptions         = []string{"No", ">7", ">8", "Norm"}
	AdmissionTypeDescOptions = []string{"Urgent", "Elective", "Emergency", "Other"}
	DischargeCategoryOptions = []string{
		"Discharged to Home",
		"Transfers to Other Healthcare Facilities",
		"AMA (Against Medical Advice)",
		"Other",
	}
	AdmissionCategoryOptions = []string{
		"Transfers from Other Facilities",
		"Emergency Admission",
		"Physician Referral",
		"Other",
	}
	DiabetesMedOptions = []string{"true", "false"}
)

// Fields lists the form's inputs in declaration order.
var Fields = []Field{
	{ID: "patient_id", Label: "Patient ID", Kind: KindInteger},
	{ID: "time_in_hospital", Label: "Time in Hospital", Kind: KindInteger},
	{ID: "num_lab_procedures", Label: "Number of Lab Procedures", Kind: KindReal},
	{ID: "num_procedures", Label: "Number of Procedures", Kind: KindInteger},
	{ID: "num_medications", Label: "Number of Medications", Kind: KindReal},
	{ID: "number_emergency", Label: "Number of Emergency Visits", Kind: KindInteger},
	{ID: "number_diagnoses", Label: "Number of Diagnoses", Kind: KindInteger},
	{ID: "number_outpatient_treated", Label: "Number of Outpatient Treated", Kind: KindReal},
	{ID: "number_inpatient_treated", Label: "Number of Inpatient Treated", Kind: KindReal},
	{ID: "max_glu_serum", Label: "Max Glu Serum", Kind: KindChoice, Options: MaxGluSerumOptions},
	{ID: "A1Cresult", Label: "A1C Result", Kind: KindChoice, Options: A1CResultOptions},
	{ID: "insulin", Label: "Insulin", Kind: KindInteger},
	{ID: "diabetesMed", Label: "DiabetesMed", Kind: KindFlag, Options: DiabetesMedOptions},
	{ID: "admission_type_desc", Label: "Admission Type Description", Kind: KindChoice, Options: AdmissionTypeDescOptions},
	{ID: "discharge_category", Label: "Discharge Category", Kind: KindChoice, Options: DischargeCategoryOptions},
	{ID: "admission_category", Label: "Admission Category", Kind: KindChoice, Options: AdmissionCategoryOptions},
}

// Numeric reports whether the field is coerced to a number.
func (f Field) Numeric() bool {
	return f.Kind == KindInteger || f.Kind == KindReal
}
