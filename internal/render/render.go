// Package render turns the outcome of a submission into status panel
// content.
//
// The panel itself is a Target owned by the host surface (an HTML page, a
// terminal). The Renderer only ever writes to the Target it is handed; it
// keeps no reference to it.
package render

import (
	"fmt"
	"strconv"

	"github.com/aanand-mishra/readmission-client/internal/types"
	"github.com/aanand-mishra/readmission-client/internal/validation"
)

// Text colors and the fixed panel geometry used for prediction results.
const (
	ErrorColor = "red"

	Padding      = "15px"
	BorderRadius = "8px"
	MarginTop    = "10px"
)

// Qualitative labels derived from the prediction.
const (
	LabelReadmitted    = "Readmitted within 30 days"
	LabelNotReadmitted = "Not Readmitted within 30 days"
)

// Content is what the panel shows.
type Content struct {
	Lines []string `json:"lines"`
	Color string   `json:"color,omitempty"` // text color; empty means the surface default
	Bold  bool     `json:"bold,omitempty"`

	// Set for prediction results only.
	Percent string `json:"percent,omitempty"`
	Label   string `json:"label,omitempty"`
	Tier    string `json:"tier,omitempty"`
}

// Style is the panel's box styling. The zero Style means no styling.
type Style struct {
	Background   string `json:"background,omitempty"`
	Padding      string `json:"padding,omitempty"`
	BorderRadius string `json:"border_radius,omitempty"`
	MarginTop    string `json:"margin_top,omitempty"`
}

// IsZero reports whether the style carries no styling.
func (s Style) IsZero() bool { return s == Style{} }

// Target is an output region whose content and styling are replaced
// together. Implementations must apply both in one step so readers never
// see one render's text with another's styling.
type Target interface {
	Set(c Content, s Style)
}

// Renderer writes submission outcomes to a Target.
type Renderer struct {
	tiers *TierTable
}

// NewRenderer returns a Renderer coloring results with tiers. A nil table
// uses DefaultTiers.
func NewRenderer(tiers *TierTable) *Renderer {
	if tiers == nil {
		tiers = MustTierTable(DefaultTiers())
	}
	return &Renderer{tiers: tiers}
}

// RenderErrors shows every validation message in red, one per line.
func (r *Renderer) RenderErrors(t Target, errs validation.Errors) {
	t.Set(Content{Lines: errs.Messages(), Color: ErrorColor}, Style{})
}

// RenderFailure shows a single red "Error: <message>" line.
func (r *Renderer) RenderFailure(t Target, f types.Failure) {
	t.Set(Content{
		Lines: []string{"Error: " + f.Message},
		Color: ErrorColor,
	}, Style{})
}

// RenderSuccess shows the readmission probability on a tier-colored panel.
//
// The tier is chosen from the percentage as displayed (rounded to two
// decimals), so 19.996% shows and colors as 20.00%.
func (r *Renderer) RenderSuccess(t Target, s types.Success) {
	pct := Percent(s.Probability)
	value, _ := strconv.ParseFloat(pct, 64)

	label := LabelNotReadmitted
	if s.Readmitted() {
		label = LabelReadmitted
	}

	tier, _ := r.tiers.Match(value)

	t.Set(Content{
		Lines:   []string{fmt.Sprintf("%s%% chance that the patient will be readmitted to the hospital.", pct)},
		Bold:    true,
		Percent: pct,
		Label:   label,
		Tier:    tier.Name,
	}, Style{
		Background:   tier.Color,
		Padding:      Padding,
		BorderRadius: BorderRadius,
		MarginTop:    MarginTop,
	})
}

// RenderResult dispatches on the Result's variant.
func (r *Renderer) RenderResult(t Target, res types.Result) {
	switch {
	case res.Success != nil:
		r.RenderSuccess(t, *res.Success)
	case res.Failure != nil:
		r.RenderFailure(t, *res.Failure)
	}
}

// Percent formats a probability as a percentage with two decimals.
func Percent(probability float64) string {
	return strconv.FormatFloat(probability*100, 'f', 2, 64)
}
