package ticketing

// The Discovery API wraps lists in "_embedded". Only fields the importer
// reads are declared.

type searchResponse struct {
	Embedded struct {
		Events []Event `json:"events"`
	} `json:"_embedded"`
	Page Page `json:"page"`
}

// Page is the pagination block of a search response.
type Page struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// Event is one upstream event.
type Event struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Info            string           `json:"info"`
	Description     string           `json:"description"`
	URL             string           `json:"url"`
	Images          []Image          `json:"images"`
	Dates           Dates            `json:"dates"`
	Classifications []Classification `json:"classifications"`
	Embedded        struct {
		Venues []Venue `json:"venues"`
	} `json:"_embedded"`
}

// Image is an event picture.
type Image struct {
	URL   string `json:"url"`
	Width int    `json:"width"`
}

// Dates holds the start of an event.
type Dates struct {
	Start struct {
		LocalDate string `json:"localDate"`
		LocalTime string `json:"localTime"`
		DateTime  string `json:"dateTime"`
	} `json:"start"`
}

// Classification is the upstream genre tree.
type Classification struct {
	Primary bool `json:"primary"`
	Segment struct {
		Name string `json:"name"`
	} `json:"segment"`
}

// Venue is where the event takes place. Coordinates arrive as strings.
type Venue struct {
	Name     string `json:"name"`
	Location *struct {
		Latitude  string `json:"latitude"`
		Longitude string `json:"longitude"`
	} `json:"location"`
}

// SearchResult is one page of events.
type SearchResult struct {
	Events []Event
	Page   Page
}
