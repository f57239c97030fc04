package model

// AllCarriers is the sentinel carrier id for all-carrier aggregates.
const AllCarriers int64 = 0

// Carrier is a tracked mobile operator. Managed outside the import pipeline.
type Carrier struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Antenna is a cell site known locally. It is only stored once both
// coordinates are known.
type Antenna struct {
	ID        int64   `json:"id" db:"id"`
	CID       int64   `json:"cid" db:"cid"`
	LAC       int64   `json:"lac" db:"lac"`
	Lat       float64 `json:"lat" db:"lat"`
	Lon       float64 `json:"lon" db:"lon"`
	CarrierID int64   `json:"carrier_id" db:"carrier_id"`
}

// Report is a monthly total for one report type and carrier.
// Natural key: (year, month, type, carrier_id).
type Report struct {
	Year      int    `json:"year" db:"year"`
	Month     int    `json:"month" db:"month"`
	Type      string `json:"type" db:"type"`
	CarrierID int64  `json:"carrier_id" db:"carrier_id"`
	Quantity  int64  `json:"quantity" db:"quantity"`
}

// Ranking is one position of the monthly application ranking.
// Natural key: (year, month, carrier_id, traffic_type, transfer_type, ranking_number).
type Ranking struct {
	Year          int     `json:"year" db:"year"`
	Month         int     `json:"month" db:"month"`
	CarrierID     int64   `json:"carrier_id" db:"carrier_id"`
	TrafficType   string  `json:"traffic_type" db:"traffic_type"`
	TransferType  string  `json:"transfer_type" db:"transfer_type"`
	RankingNumber int     `json:"ranking_number" db:"ranking_number"`
	AppName       string  `json:"app_name" db:"app_name"`
	BytesPerUser  float64 `json:"bytes_per_user" db:"bytes_per_user"`
	TotalBytes    int64   `json:"total_bytes" db:"total_bytes"`
	TotalDevices  int64   `json:"total_devices" db:"total_devices"`
}

// GsmSignal is the mean signal level seen on an antenna for a carrier and month.
// Natural key: (year, month, antenna_id, carrier_id).
type GsmSignal struct {
	Year      int      `json:"year" db:"year"`
	Month     int      `json:"month" db:"month"`
	AntennaID int64    `json:"antenna_id" db:"antenna_id"`
	CarrierID int64    `json:"carrier_id" db:"carrier_id"`
	Signal    *float64 `json:"signal" db:"signal"`
	Quantity  int64    `json:"quantity" db:"quantity"`
}

// GsmCount is the traffic count on an antenna per network type.
// Natural key: (year, month, antenna_id, carrier_id, network_type).
type GsmCount struct {
	Year        int   `json:"year" db:"year"`
	Month       int   `json:"month" db:"month"`
	AntennaID   int64 `json:"antenna_id" db:"antenna_id"`
	CarrierID   int64 `json:"carrier_id" db:"carrier_id"`
	NetworkType int   `json:"network_type" db:"network_type"`
	Quantity    int64 `json:"quantity" db:"quantity"`
}

// AntennaTraffic is one aggregated row behind a published carrier snapshot:
// total traffic of one network type on one antenna.
type AntennaTraffic struct {
	AntennaID   int64
	NetworkType string
	CarrierName string
	Lat         float64
	Lon         float64
	Quantity    int64
}
