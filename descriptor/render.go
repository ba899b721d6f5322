// Package descriptor renders certificate metadata into the self-contained token descriptor.
package descriptor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// DataURIPrefix is the media-type prefix wrapped around the base64 document.
const DataURIPrefix = "data:application/json;base64,"

// YieldSuffix follows the decimal yield potential in the "Yield Potential" attribute.
const YieldSuffix = " kg per year"

// Trait names in the order they appear in the attributes array.
const (
	TraitLocation       = "Location"
	TraitGPSCoordinates = "GPS Coordinates"
	TraitArea           = "Area"
	TraitSoilType       = "Soil Type"
	TraitOwnership      = "Ownership"
	TraitWaterSource    = "Water Source"
	TraitYieldPotential = "Yield Potential"
	TraitLastSurveyDate = "Last Survey Date"
)

// TraitOrder is the fixed attribute order. Consumers may parse attributes positionally.
var TraitOrder = []string{
	TraitLocation,
	TraitGPSCoordinates,
	TraitArea,
	TraitSoilType,
	TraitOwnership,
	TraitWaterSource,
	TraitYieldPotential,
	TraitLastSurveyDate,
}

// Renderer turns a metadata record into a descriptor string. It holds no state besides
// its options and is safe for concurrent use.
type Renderer struct {
	dates  interfaces.DateFormatter
	escape bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDateFormatter replaces the raw-integer date formatting.
func WithDateFormatter(f interfaces.DateFormatter) Option {
	return func(r *Renderer) {
		if f != nil {
			r.dates = f
		}
	}
}

// WithEscaping JSON-escapes free-text values before embedding them. Without it values are
// interpolated verbatim, and a value containing a quote or control character produces a
// document that does not parse.
func WithEscaping() Option {
	return func(r *Renderer) {
		r.escape = true
	}
}

// NewRenderer creates a renderer. By default dates are rendered as raw unix seconds and
// text is not escaped.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{dates: RawDateFormatter{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// Render renders m with the default renderer.
func Render(m interfaces.LandMetadata) string {
	return defaultRenderer.Render(m)
}

// Render produces "data:application/json;base64," followed by the base64 encoded document.
func (r *Renderer) Render(m interfaces.LandMetadata) string {
	doc := r.Document(m)
	return DataURIPrefix + base64.StdEncoding.EncodeToString([]byte(doc))
}

// Document returns the JSON text before encoding.
func (r *Renderer) Document(m interfaces.LandMetadata) string {
	values := []string{
		m.Location,
		m.GPSCoordinates,
		m.Area,
		m.SoilType,
		m.Ownership,
		m.WaterSource,
		strconv.FormatUint(m.YieldPotential, 10) + YieldSuffix,
		r.dates.FormatDate(m.LastSurveyDate),
	}

	var sb strings.Builder
	sb.WriteString(`{"name":"`)
	sb.WriteString(r.text(m.Name))
	sb.WriteString(`","description":"`)
	sb.WriteString(r.text(m.Description))
	sb.WriteString(`","image":"`)
	sb.WriteString(r.text(m.ImageURI))
	sb.WriteString(`","attributes":[`)
	for i, trait := range TraitOrder {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"trait_type":"`)
		sb.WriteString(trait)
		sb.WriteString(`","value":"`)
		sb.WriteString(r.text(values[i]))
		sb.WriteString(`"}`)
	}
	sb.WriteString(`],"external_url":"`)
	sb.WriteString(r.text(m.ExternalURL))
	sb.WriteString(`"}`)
	return sb.String()
}

func (r *Renderer) text(s string) string {
	if !r.escape {
		return s
	}
	return escapeJSONString(s)
}

// escapeJSONString returns s escaped for use between JSON quotes, leaving HTML characters alone.
func escapeJSONString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return string(out[1 : len(out)-1])
}
