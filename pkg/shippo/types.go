package shippo

// Address is a Shippo address dictionary.
type Address struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Parcel is a Shippo parcel dictionary. Dimension strings keep Shippo's
// decimal wire format.
type Parcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

// ShipmentCreateParams requests rates for an address pair and parcel.
type ShipmentCreateParams struct {
	AddressFrom Address  `json:"address_from"`
	AddressTo   Address  `json:"address_to"`
	Parcels     []Parcel `json:"parcels"`
	Async       bool     `json:"async"`
}

// Shipment is the created shipment with its candidate rates.
type Shipment struct {
	ObjectID string    `json:"object_id"`
	Status   string    `json:"status"`
	Rates    []Rate    `json:"rates"`
	Messages []Message `json:"messages"`
}

// Rate is one carrier/service-level quote.
type Rate struct {
	ObjectID      string       `json:"object_id"`
	Amount        string       `json:"amount"`
	Currency      string       `json:"currency"`
	Provider      string       `json:"provider"`
	ServiceLevel  ServiceLevel `json:"servicelevel"`
	EstimatedDays int          `json:"estimated_days"`
}

type ServiceLevel struct {
	Name string `json:"name"`
}

// Transaction is a label purchase result.
type Transaction struct {
	ObjectID       string    `json:"object_id"`
	Status         string    `json:"status"`
	LabelURL       string    `json:"label_url"`
	TrackingNumber string    `json:"tracking_number"`
	Messages       []Message `json:"messages"`
}

// Message carries provider diagnostics on failures.
type Message struct {
	Source string `json:"source"`
	Code   string `json:"code"`
	Text   string `json:"text"`
}

// TransactionSuccess is the status Shippo reports for a purchased label.
const TransactionSuccess = "SUCCESS"

type transactionCreateParams struct {
	Rate          string `json:"rate"`
	LabelFileType string `json:"label_file_type"`
	Async         bool   `json:"async"`
}
