package descriptor

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// ErrInvalidDescriptor is returned when a descriptor cannot be decoded.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Attribute is one trait entry of the document.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Document is the parsed form of a rendered descriptor.
type Document struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Attributes  []Attribute `json:"attributes"`
	ExternalURL string      `json:"external_url"`
}

// Decode strips the data URI prefix, decodes the base64 payload and parses the document.
func Decode(descriptor string) (*Document, error) {
	payload, ok := strings.CutPrefix(descriptor, DataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDescriptor, DataURIPrefix)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	return &doc, nil
}

// Attribute returns the value of the named trait.
func (d *Document) Attribute(traitType string) (string, bool) {
	for _, attr := range d.Attributes {
		if attr.TraitType == traitType {
			return attr.Value, true
		}
	}
	return "", false
}

// Metadata reconstructs the metadata record. It expects the fixed attribute order and
// raw-integer dates.
func (d *Document) Metadata() (interfaces.LandMetadata, error) {
	if len(d.Attributes) != len(TraitOrder) {
		return interfaces.LandMetadata{}, fmt.Errorf("%w: expected %d attributes, got %d",
			ErrInvalidDescriptor, len(TraitOrder), len(d.Attributes))
	}
	for i, trait := range TraitOrder {
		if d.Attributes[i].TraitType != trait {
			return interfaces.LandMetadata{}, fmt.Errorf("%w: attribute %d is %q, expected %q",
				ErrInvalidDescriptor, i, d.Attributes[i].TraitType, trait)
		}
	}

	yieldText, ok := strings.CutSuffix(d.Attributes[6].Value, YieldSuffix)
	if !ok {
		return interfaces.LandMetadata{}, fmt.Errorf("%w: yield potential %q", ErrInvalidDescriptor, d.Attributes[6].Value)
	}
	yield, err := strconv.ParseUint(yieldText, 10, 64)
	if err != nil {
		return interfaces.LandMetadata{}, fmt.Errorf("%w: yield potential: %v", ErrInvalidDescriptor, err)
	}

	surveyed, err := strconv.ParseUint(d.Attributes[7].Value, 10, 64)
	if err != nil {
		return interfaces.LandMetadata{}, fmt.Errorf("%w: last survey date: %v", ErrInvalidDescriptor, err)
	}

	return interfaces.LandMetadata{
		Name:           d.Name,
		Description:    d.Description,
		Location:       d.Attributes[0].Value,
		GPSCoordinates: d.Attributes[1].Value,
		Area:           d.Attributes[2].Value,
		SoilType:       d.Attributes[3].Value,
		Ownership:      d.Attributes[4].Value,
		WaterSource:    d.Attributes[5].Value,
		YieldPotential: yield,
		LastSurveyDate: surveyed,
		ImageURI:       d.Image,
		ExternalURL:    d.ExternalURL,
	}, nil
}
