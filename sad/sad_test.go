package sad

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-datatrails-keri/matter"
)

func sampleDoc() *Doc {
	d := NewDoc()
	d.Set("v", "KERI10JSON000000_")
	d.Set("t", "icp")
	d.Set("d", "")
	d.Set("i", "")
	d.Set("s", "0")
	return d
}

func TestJSONRoundTripPreservesOrder(t *testing.T) {
	d := sampleDoc()
	raw, err := Dumps(d, KindJSON)
	require.NoError(t, err)

	back, err := Loads(raw, KindJSON)
	require.NoError(t, err)
	require.Equal(t, d.Keys(), back.Keys())
	require.Equal(t, "icp", back.GetString("t"))
}

func TestCBORRoundTripPreservesOrder(t *testing.T) {
	d := sampleDoc()
	raw, err := Dumps(d, KindCBOR)
	require.NoError(t, err)

	back, err := Loads(raw, KindCBOR)
	require.NoError(t, err)
	require.Equal(t, d.Keys(), back.Keys())
	require.Equal(t, "icp", back.GetString("t"))
}

func TestMsgPackRoundTripPreservesOrder(t *testing.T) {
	d := sampleDoc()
	raw, err := Dumps(d, KindMGPK)
	require.NoError(t, err)

	back, err := Loads(raw, KindMGPK)
	require.NoError(t, err)
	require.Equal(t, d.Keys(), back.Keys())
	require.Equal(t, "icp", back.GetString("t"))
}

func TestVersifyDeversifyRoundTrip(t *testing.T) {
	vs, err := Versify("KERI", 1, 0, KindJSON, 250)
	require.NoError(t, err)
	require.Equal(t, "KERI10JSON0000fa_", vs)

	s, err := Deversify(vs)
	require.NoError(t, err)
	require.Equal(t, "KERI", s.Proto)
	require.Equal(t, 250, s.Size)
	require.Equal(t, KindJSON, s.Kind)
}

func TestSaidifyAndVerify(t *testing.T) {
	d := sampleDoc()
	said, result, err := Saidify(d, matter.Blake3_256, KindJSON, "d", nil)
	require.NoError(t, err)
	require.NotEmpty(t, said)
	require.Equal(t, said, result.GetString("d"))

	require.True(t, Verify(result, matter.Blake3_256, KindJSON, "d", nil, true, true))

	tampered := result.Clone()
	tampered.Set("s", "1")
	require.False(t, Verify(tampered, matter.Blake3_256, KindJSON, "d", nil, true, true))
}

func TestSizeifyUpdatesVersionString(t *testing.T) {
	d := sampleDoc()
	raw, _, _, resized, size, err := Sizeify(d, KindJSON)
	require.NoError(t, err)
	require.Equal(t, len(raw), size)
	require.Contains(t, resized.GetString("v"), "KERI10JSON")
}

// jsonSchemaDoc builds the JSON-schema-shaped SAD spec.md §8 Scenario D
// derives over: {"$id": "", "$schema": "...", "type": "object",
// "properties": {"a": {"type": "string"}, "b": {"type": "number"},
// "c": {"type": "string", "format": "date-time"}}}.
func jsonSchemaDoc() *Doc {
	a := NewDoc()
	a.Set("type", "string")
	b := NewDoc()
	b.Set("type", "number")
	c := NewDoc()
	c.Set("type", "string")
	c.Set("format", "date-time")
	props := NewDoc()
	props.Set("a", a)
	props.Set("b", b)
	props.Set("c", c)

	d := NewDoc()
	d.Set("$id", "")
	d.Set("$schema", "http://json-schema.org/draft-07/schema#")
	d.Set("type", "object")
	d.Set("properties", props)
	return d
}

// TestSaidifyScenarioD pins spec.md §8 Scenario D's two literal SAIDs for
// the same JSON-schema-shaped SAD under Blake3-256 and Blake2b-256.
func TestSaidifyScenarioD(t *testing.T) {
	said, result, err := Saidify(jsonSchemaDoc(), matter.Blake3_256, KindJSON, "$id", nil)
	require.NoError(t, err)
	require.Equal(t, "EMRvS7lGxc1eDleXBkvSHkFs8vUrslRcla6UXOJdcczw", said)
	require.True(t, Verify(result, matter.Blake3_256, KindJSON, "$id", nil, true, false))

	said2, result2, err := Saidify(jsonSchemaDoc(), matter.Blake2b256, KindJSON, "$id", nil)
	require.NoError(t, err)
	require.Equal(t, "FFtf9ZYDSevUD5ySvqQ-bPHIpxRWIZxjfJ7ss_DHa3s4", said2)
	require.True(t, Verify(result2, matter.Blake2b256, KindJSON, "$id", nil, true, false))
}

// TestSaidifyScenarioE pins spec.md §8 Scenario E's ignore-set literal
// SAID: the "read" field is excluded from the derivation, so toggling it
// after the fact does not change the SAID or break verification.
func TestSaidifyScenarioE(t *testing.T) {
	d := NewDoc()
	d.Set("d", "")
	d.Set("first", "John")
	d.Set("last", "Doe")
	d.Set("read", false)

	said, result, err := Saidify(d, matter.Blake3_256, KindJSON, "d", []string{"read"})
	require.NoError(t, err)
	require.Equal(t, "EBam6rzvfq0yF6eI7Czrg3dUVhqg2cwNkSoJvyHWPj3p", said)
	require.True(t, Verify(result, matter.Blake3_256, KindJSON, "d", []string{"read"}, true, false))

	result.Set("read", true)
	require.True(t, Verify(result, matter.Blake3_256, KindJSON, "d", []string{"read"}, true, false))
}
