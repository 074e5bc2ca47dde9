package form

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/aanand-mishra/readmission-client/internal/types"
	"github.com/gorilla/schema"
)

// Source is anything that exposes the current value of an input widget by
// its identifier. url.Values satisfies it, so a parsed HTML form can be
// passed straight in.
type Source interface {
	Get(key string) string
}

// Collector reads the form's inputs from a Source and coerces them.
// A Collector is safe for concurrent use.
type Collector struct {
	decoder *schema.Decoder
}

// NewCollector returns a Collector with the numeric and flag converters
// registered. Converters never reject a value: numeric text that does not
// parse becomes NaN so the validator can report it with everything else.
func NewCollector() *Collector {
	d := schema.NewDecoder()
	d.SetAliasTag("schema")
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(types.Integer(0), convertInteger)
	d.RegisterConverter(types.Real(0), convertReal)
	d.RegisterConverter(types.Flag(false), convertFlag)
	return &Collector{decoder: d}
}

// Collect reads every field in Fields from src and returns the coerced
// values. Missing inputs are read as empty strings.
func (c *Collector) Collect(src Source) (types.RawForm, error) {
	raw := blankForm()

	values := make(map[string][]string, len(Fields))
	for _, f := range Fields {
		values[f.ID] = []string{src.Get(f.ID)}
	}

	if err := c.decoder.Decode(&raw, values); err != nil {
		return types.RawForm{}, fmt.Errorf("form.Collect: decode: %w", err)
	}
	return raw, nil
}

// blankForm returns a RawForm whose numeric fields hold NaN, so inputs the
// decoder skips (empty values) keep the not-a-number sentinel.
func blankForm() types.RawForm {
	nan := math.NaN()
	return types.RawForm{
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
}

// Numeric inputs are read by their longest leading number, so "2.5" is the
// integer 2 and "12abc" is 12. Text with no leading number is NaN.
var (
	hexPrefix     = regexp.MustCompile(`^[+-]?0[xX][0-9a-fA-F]+`)
	integerPrefix = regexp.MustCompile(`^[+-]?[0-9]+`)
	realPrefix    = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?`)
)

func convertInteger(s string) reflect.Value {
	return reflect.ValueOf(types.Integer(parseIntPrefix(s)))
}

func convertReal(s string) reflect.Value {
	return reflect.ValueOf(types.Real(parseFloatPrefix(s)))
}

func parseIntPrefix(s string) float64 {
	s = strings.TrimSpace(s)

	if m := hexPrefix.FindString(s); m != "" {
		neg := m[0] == '-'
		digits := strings.TrimLeft(m, "+-")[2:]
		n, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			return math.NaN()
		}
		if neg {
			n = -n
		}
		return float64(n)
	}

	m := integerPrefix.FindString(s)
	if m == "" {
		return math.NaN()
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil {
		return math.NaN()
	}
	return float64(n)
}

// parseFloatPrefix never yields an infinity: an overflowing value is NaN,
// since the JSON payload has no way to carry it.
func parseFloatPrefix(s string) float64 {
	m := realPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

func convertFlag(s string) reflect.Value {
	return reflect.ValueOf(types.Flag(s == "true"))
}
