// readmission-cli submits one patient to the prediction backend and prints
// the status panel to the terminal.
//
//	readmission-cli --backend http://localhost:5000 \
//	    --time_in_hospital 3 --num_lab_procedures 41 ... --admission_category "Physician Referral"
//
// Exit status is 0 when a prediction was shown and 1 for validation errors
// or backend failures.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/aanand-mishra/readmission-client/internal/config"
	"github.com/aanand-mishra/readmission-client/internal/controller"
	"github.com/aanand-mishra/readmission-client/internal/form"
	"github.com/aanand-mishra/readmission-client/internal/logger"
	"github.com/aanand-mishra/readmission-client/internal/predictor"
	"github.com/aanand-mishra/readmission-client/internal/render"
	"github.com/aanand-mishra/readmission-client/internal/validation"
)

// Options are the command line flags. Field values are kept as strings so
// that coercion happens in the collector, exactly as for the web form.
type Options struct {
	Config  string        `short:"c" long:"config" description:"Path to config file (optional)"`
	Backend string        `long:"backend" description:"Prediction backend base URL (overrides config)"`
	Timeout time.Duration `long:"timeout" description:"Backend request timeout, 0 for none (overrides config)"`
	Env     string        `short:"e" long:"env" description:"Log format: dev, staging, prod" default:"prod"`

	Fields FieldOptions `group:"Patient"`
}

// FieldOptions has one flag per form input; the long name is the input id.
type FieldOptions struct {
	PatientID               string `long:"patient_id" description:"Patient ID"`
	TimeInHospital          string `long:"time_in_hospital" description:"Time in Hospital (days)"`
	NumLabProcedures        string `long:"num_lab_procedures" description:"Number of Lab Procedures"`
	NumProcedures           string `long:"num_procedures" description:"Number of Procedures"`
	NumMedications          string `long:"num_medications" description:"Number of Medications"`
	NumberEmergency         string `long:"number_emergency" description:"Number of Emergency Visits"`
	NumberDiagnoses         string `long:"number_diagnoses" description:"Number of Diagnoses"`
	NumberOutpatientTreated string `long:"number_outpatient_treated" description:"Number of Outpatient Treated"`
	NumberInpatientTreated  string `long:"number_inpatient_treated" description:"Number of Inpatient Treated"`
	MaxGluSerum             string `long:"max_glu_serum" description:"Max Glu Serum (No, >300, Norm, >200)"`
	A1CResult               string `long:"A1Cresult" description:"A1C Result (No, >7, >8, Norm)"`
	Insulin                 string `long:"insulin" description:"Insulin"`
	DiabetesMed             string `long:"diabetesMed" description:"DiabetesMed (true, false)"`
	AdmissionTypeDesc       string `long:"admission_type_desc" description:"Admission Type Description"`
	DischargeCategory       string `long:"discharge_category" description:"Discharge Category"`
	AdmissionCategory       string `long:"admission_category" description:"Admission Category"`
}

// Values returns the flags as form values keyed by input id. Flags that were
// not given are absent, which the collector treats as empty.
func (f FieldOptions) Values() url.Values {
	values := url.Values{}
	v := reflect.ValueOf(f)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if s := v.Field(i).String(); s != "" {
			values.Set(t.Field(i).Tag.Get("long"), s)
		}
	}
	return values
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, fe.Message)
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	tiers, err := render.NewTierTable(cfg.Tiers())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	log := logger.Setup(opts.Env, stderr)
	client := predictor.New(cfg.Predictor.BaseURL,
		predictor.WithHTTPClient(&http.Client{Timeout: cfg.Predictor.Timeout}),
		predictor.WithLogger(log),
	)

	term := render.NewTerminal(stdout)
	c := controller.New(form.NewCollector(), validation.New(), client, render.NewRenderer(tiers), term, log)

	out := c.Submit(context.Background(), opts.Fields.Values())
	if err := term.Flush(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if !out.OK() {
		return 1
	}
	return 0
}

// loadConfig reads the config file if one is given. --backend alone is
// enough to run without a file or environment.
func loadConfig(opts Options) (*config.Config, error) {
	cfg := &config.Config{}
	if opts.Config != "" || opts.Backend == "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}

	if opts.Backend != "" {
		cfg.Predictor.BaseURL = opts.Backend
	}
	if opts.Timeout != 0 {
		cfg.Predictor.Timeout = opts.Timeout
	}
	return cfg, nil
}
