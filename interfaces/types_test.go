package interfaces

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateID_Conversions(t *testing.T) {
	id := NewCertificateID(42)
	assert.Equal(t, "42", id.String())
	assert.Equal(t, int64(42), id.Big().Int64())
	assert.Equal(t, byte(42), id[31])

	parsed, err := ParseCertificateID("42")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	parsed, err = ParseCertificateID("0x2a")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	assert.Equal(t, "0x000000000000000000000000000000000000000000000000000000000000002a", id.Hex())
}

func TestCertificateID_Bounds(t *testing.T) {
	_, err := CertificateIDFromBig(big.NewInt(-1))
	assert.Error(t, err)

	tooLarge := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = CertificateIDFromBig(tooLarge)
	assert.Error(t, err)

	maxID, err := CertificateIDFromBig(new(big.Int).Sub(tooLarge, big.NewInt(1)))
	require.NoError(t, err)
	for _, b := range maxID {
		assert.Equal(t, byte(0xff), b)
	}

	for _, bad := range []string{"", "abc", "0xzz", "1.5"} {
		_, err := ParseCertificateID(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestCertificateID_JSON(t *testing.T) {
	ev := CreatedEvent{ID: NewCertificateID(7), Metadata: LandMetadata{Name: "Plot"}}

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"7"`)

	var decoded CreatedEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ev, decoded)
}

func TestNewMetadataUpdatedEvent(t *testing.T) {
	m := LandMetadata{
		Name:           "North Field",
		Description:    "Irrigated plot",
		Location:       "Valley",
		GPSCoordinates: "1.0,2.0",
		Area:           "12 ha",
		SoilType:       "Loam",
		Ownership:      "Freehold",
		WaterSource:    "River",
		YieldPotential: 1500,
		LastSurveyDate: 1700000000,
		ImageURI:       "ipfs://image",
		ExternalURL:    "https://example.com",
	}

	ev := NewMetadataUpdatedEvent(NewCertificateID(1), m)
	assert.Equal(t, MetadataUpdatedEvent{
		ID:             NewCertificateID(1),
		Location:       "Valley",
		GPSCoordinates: "1.0,2.0",
		Area:           "12 ha",
		SoilType:       "Loam",
		Ownership:      "Freehold",
		WaterSource:    "River",
		YieldPotential: 1500,
		LastSurveyDate: 1700000000,
	}, ev)
}
