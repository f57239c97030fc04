package source

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/netusage/internal/fetcher"
)

func TestSignalReport_Decode(t *testing.T) {
	rep := &SignalReport{URL: "u", Items: []json.RawMessage{
		json.RawMessage(`{"antenna_id": 7, "carrier_id": 1, "observations": 10, "signal_mean": -85.2}`),
		json.RawMessage(`{"antenna_id": 8, "carrier_id": 1, "observations": 3, "signal_mean": null}`),
		json.RawMessage(`{"antenna_id": 9, "carrier_id": 1}`),
		json.RawMessage(`"nope"`),
	}}

	rec, err := rep.Decode(0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.AntennaID)
	assert.Equal(t, int64(10), rec.Observations)
	require.NotNil(t, rec.SignalMean)
	assert.InDelta(t, -85.2, *rec.SignalMean, 1e-9)

	rec, err = rep.Decode(1)
	require.NoError(t, err)
	assert.Nil(t, rec.SignalMean)

	for _, i := range []int{2, 3} {
		_, err = rep.Decode(i)
		assert.ErrorIs(t, err, fetcher.ErrMalformedPayload)
		assert.Equal(t, "u", fetcher.URLOf(err))
	}
}

func TestCountReport_Decode(t *testing.T) {
	rep := &CountReport{URL: "u", Items: []json.RawMessage{
		json.RawMessage(`{"antenna_id": 99, "carrier_id": 2, "size": 40.0, "network_type": 3}`),
		json.RawMessage(`{"antenna_id": 99, "carrier_id": 2, "size": 4.5, "network_type": 3}`),
	}}

	rec, err := rep.Decode(0)
	require.NoError(t, err)
	assert.Equal(t, CountRecord{AntennaID: 99, CarrierID: 2, Size: 40, NetworkType: 3}, rec)

	_, err = rep.Decode(1)
	assert.ErrorIs(t, err, fetcher.ErrMalformedPayload)
}

func TestParseQuantity(t *testing.T) {
	q, err := ParseQuantity(json.RawMessage(`42`))
	require.NoError(t, err)
	assert.Equal(t, int64(42), q)

	q, err = ParseQuantity(json.RawMessage(`1e3`))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), q)

	for _, raw := range []string{`"x"`, `null`, `{}`, `1.5`} {
		_, err := ParseQuantity(json.RawMessage(raw))
		assert.Error(t, err, raw)
	}
}
