package model

// Production é o formato público da aba de produção.
type Production struct {
	Product string `json:"product"`
	Amount  int64  `json:"amount"`
	Type    string `json:"type,omitempty"`
	Year    int    `json:"year,omitempty"`
}

// Commercialization shares the production layout.
type Commercialization struct {
	Product string `json:"product"`
	Amount  int64  `json:"amount"`
	Type    string `json:"type,omitempty"`
	Year    int    `json:"year,omitempty"`
}

type Processing struct {
	Cultivar string `json:"cultivar"`
	Amount   int64  `json:"amount"`
	Type     string `json:"type,omitempty"`
	Year     int    `json:"year,omitempty"`
	Category string `json:"category,omitempty"`
}

// Trade is an import or export line: quantity in kg and value in US$.
type Trade struct {
	Country  string `json:"country"`
	Amount   int64  `json:"amount"`
	Value    int64  `json:"value"`
	Type     string `json:"type,omitempty"`
	Year     int    `json:"year,omitempty"`
	Category string `json:"category,omitempty"`
}

// GroupTotal is the amount reported on a header row (e.g. "VINHO DE MESA").
type GroupTotal struct {
	Type   string `json:"type"`
	Amount int64  `json:"amount"`
	Value  int64  `json:"value,omitempty"`
}

type Summary struct {
	Year       int          `json:"year"`
	Category   string       `json:"category,omitempty"`
	Source     string       `json:"source"`
	Groups     []GroupTotal `json:"groups"`
	Total      int64        `json:"total"`
	TotalValue int64        `json:"total_value,omitempty"`
}
