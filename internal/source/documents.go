package source

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/netusage/internal/fetcher"
)

// AllCarriersKey is the ranking key for all-carrier rankings.
const AllCarriersKey = "ALL_CARRIERS"

// TotalsReport is the decoded general report.
type TotalsReport struct {
	URL   string
	Types map[string]json.RawMessage
}

// RankingEntry is one ranked application.
type RankingEntry struct {
	AppName      string
	BytesPerUser float64
	TotalBytes   int64
	TotalDevices int64
}

// RankingReport is carrier -> traffic type -> transfer type -> rank -> entry.
// Entries stay undecoded until Entry is called.
type RankingReport struct {
	URL      string
	Carriers map[string]map[string]map[string]map[string]json.RawMessage
}

// Entry decodes the entry at the given keys. Missing fields are zero.
func (r *RankingReport) Entry(carrier, traffic, transfer, rank string) (RankingEntry, error) {
	var raw struct {
		AppName      string       `json:"app_name"`
		BytesPerUser *json.Number `json:"bytes_per_user"`
		TotalBytes   *json.Number `json:"total_bytes"`
		TotalDevices *json.Number `json:"total_devices"`
	}
	wrap := func(err error) error {
		return fetcher.Malformed(r.URL, eris.Wrapf(err, "ranking %s/%s/%s/%s", carrier, traffic, transfer, rank))
	}
	if err := decodeElement(r.Carriers[carrier][traffic][transfer][rank], &raw); err != nil {
		return RankingEntry{}, wrap(err)
	}
	e := RankingEntry{AppName: raw.AppName}
	var err error
	if raw.BytesPerUser != nil {
		if e.BytesPerUser, err = raw.BytesPerUser.Float64(); err != nil {
			return RankingEntry{}, wrap(eris.Wrap(err, "source: bytes_per_user"))
		}
	}
	if raw.TotalBytes != nil {
		if e.TotalBytes, err = requireInt("total_bytes", raw.TotalBytes); err != nil {
			return RankingEntry{}, wrap(err)
		}
	}
	if raw.TotalDevices != nil {
		if e.TotalDevices, err = requireInt("total_devices", raw.TotalDevices); err != nil {
			return RankingEntry{}, wrap(err)
		}
	}
	return e, nil
}

// SignalRecord is one element of the signal report.
type SignalRecord struct {
	AntennaID    int64
	CarrierID    int64
	Observations int64
	SignalMean   *float64
}

// SignalReport holds the undecoded elements of the signal report.
type SignalReport struct {
	URL   string
	Items []json.RawMessage
}

// Decode decodes element i.
func (r *SignalReport) Decode(i int) (SignalRecord, error) {
	var raw struct {
		AntennaID    *json.Number `json:"antenna_id"`
		CarrierID    *json.Number `json:"carrier_id"`
		Observations *json.Number `json:"observations"`
		SignalMean   *json.Number `json:"signal_mean"`
	}
	if err := decodeElement(r.Items[i], &raw); err != nil {
		return SignalRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "signal element %d", i))
	}
	var rec SignalRecord
	var err error
	if rec.AntennaID, err = requireInt("antenna_id", raw.AntennaID); err != nil {
		return SignalRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "signal element %d", i))
	}
	if rec.CarrierID, err = requireInt("carrier_id", raw.CarrierID); err != nil {
		return SignalRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "signal element %d", i))
	}
	if rec.Observations, err = requireInt("observations", raw.Observations); err != nil {
		return SignalRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "signal element %d", i))
	}
	if raw.SignalMean != nil {
		v, err := raw.SignalMean.Float64()
		if err != nil {
			return SignalRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "signal element %d: signal_mean", i))
		}
		rec.SignalMean = &v
	}
	return rec, nil
}

// CountRecord is one element of the network report.
type CountRecord struct {
	AntennaID   int64
	CarrierID   int64
	Size        int64
	NetworkType int
}

// CountReport holds the undecoded elements of the network report.
type CountReport struct {
	URL   string
	Items []json.RawMessage
}

// Decode decodes element i.
func (r *CountReport) Decode(i int) (CountRecord, error) {
	var raw struct {
		AntennaID   *json.Number `json:"antenna_id"`
		CarrierID   *json.Number `json:"carrier_id"`
		Size        *json.Number `json:"size"`
		NetworkType *json.Number `json:"network_type"`
	}
	if err := decodeElement(r.Items[i], &raw); err != nil {
		return CountRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "count element %d", i))
	}
	var rec CountRecord
	var err error
	if rec.AntennaID, err = requireInt("antenna_id", raw.AntennaID); err != nil {
		return CountRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "count element %d", i))
	}
	if rec.CarrierID, err = requireInt("carrier_id", raw.CarrierID); err != nil {
		return CountRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "count element %d", i))
	}
	if rec.Size, err = requireInt("size", raw.Size); err != nil {
		return CountRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "count element %d", i))
	}
	nt, err := requireInt("network_type", raw.NetworkType)
	if err != nil {
		return CountRecord{}, fetcher.Malformed(r.URL, eris.Wrapf(err, "count element %d", i))
	}
	rec.NetworkType = int(nt)
	return rec, nil
}

// AntennaDescriptor is the remote description of an antenna. Lat and Lon
// are nil when the source does not know the position.
type AntennaDescriptor struct {
	CarrierID int64
	CID       int64
	LAC       int64
	Lat       *float64
	Lon       *float64
}

// HasCoordinates reports whether both coordinates are known.
func (d *AntennaDescriptor) HasCoordinates() bool {
	return d.Lat != nil && d.Lon != nil
}

func decodeAntenna(url string, data json.RawMessage) (*AntennaDescriptor, error) {
	var raw struct {
		CarrierID *json.Number `json:"carrier_id"`
		CID       *json.Number `json:"cid"`
		LAC       *json.Number `json:"lac"`
		Lat       *json.Number `json:"lat"`
		Lon       *json.Number `json:"lon"`
	}
	if err := decodeElement(data, &raw); err != nil {
		return nil, fetcher.Malformed(url, err)
	}
	d := &AntennaDescriptor{}
	var err error
	if d.CarrierID, err = requireInt("carrier_id", raw.CarrierID); err != nil {
		return nil, fetcher.Malformed(url, err)
	}
	if d.CID, err = requireInt("cid", raw.CID); err != nil {
		return nil, fetcher.Malformed(url, err)
	}
	if d.LAC, err = requireInt("lac", raw.LAC); err != nil {
		return nil, fetcher.Malformed(url, err)
	}
	if d.Lat, err = optionalFloat("lat", raw.Lat); err != nil {
		return nil, fetcher.Malformed(url, err)
	}
	if d.Lon, err = optionalFloat("lon", raw.Lon); err != nil {
		return nil, fetcher.Malformed(url, err)
	}
	return d, nil
}

// ParseQuantity parses a JSON number holding an integral count. Whole-valued
// floats such as 500.0 are accepted.
func ParseQuantity(raw json.RawMessage) (int64, error) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, eris.Wrap(err, "source: quantity is not a number")
	}
	return numberToInt(n)
}

func decodeElement(data json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func requireInt(field string, n *json.Number) (int64, error) {
	if n == nil {
		return 0, eris.Errorf("source: missing %s", field)
	}
	v, err := numberToInt(*n)
	if err != nil {
		return 0, eris.Wrapf(err, "source: %s", field)
	}
	return v, nil
}

func optionalFloat(field string, n *json.Number) (*float64, error) {
	if n == nil {
		return nil, nil
	}
	v, err := n.Float64()
	if err != nil {
		return nil, eris.Wrapf(err, "source: %s", field)
	}
	return &v, nil
}

func numberToInt(n json.Number) (int64, error) {
	if v, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, eris.Wrapf(err, "source: invalid number %q", n.String())
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, eris.Errorf("source: %q is not an integer", n.String())
	}
	return int64(f), nil
}
