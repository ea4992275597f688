package catalog

import (
	"strings"
	"time"
)

// DateStatus is the advertised availability state of a departure date.
// It is set by the back office and is independent of the seat counts:
// a date can be marked "disponivel" with zero seats left.
type DateStatus string

const (
	StatusAvailable DateStatus = "disponivel"
	StatusSoldOut   DateStatus = "esgotado"
	StatusCancelled DateStatus = "cancelado"
)

// DepartureDate is one scheduled departure/return instance of a package,
// carrying its own seat inventory and pricing. Prices are integer cents:
// Price is the Pix/cash fare, PriceCard the installment/card fare.
type DepartureDate struct {
	ID             string     `json:"id"`
	Departure      time.Time  `json:"saida"`
	Return         time.Time  `json:"retorno"`
	SeatsTotal     int        `json:"vagas_total"`
	SeatsAvailable int        `json:"vagas_disponiveis"`
	Price          int64      `json:"price"`
	PriceCard      int64      `json:"price_card"`
	Status         DateStatus `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	PackageID      string     `json:"pacoteId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Photo is a media item (image or video, discriminated by extension)
// attached to a package. Like/view counters are mutated only through the
// increment endpoints, never by the admin bulk-edit path.
type Photo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption,omitempty"`
	PackageID string    `json:"pacoteId"`
	Likes     int64     `json:"like"`
	Views     int64     `json:"view"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

// IsImage reports whether the photo URL points at an image rather than a
// video, judged by file extension.
func (p Photo) IsImage() bool {
	lower := strings.ToLower(p.URL)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Package is a purchasable itinerary belonging to one destination.
type Package struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Subtitle      string          `json:"subtitle,omitempty"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	DestinationID string          `json:"destinoId"`
	Photos        []Photo         `json:"fotos"`
	Dates         []DepartureDate `json:"dates"`
	Likes         int64           `json:"like"`
	Views         int64           `json:"view"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Destination is a marketed travel location grouping one or more packages.
type Destination struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Slug        string    `json:"slug"`
	Order       int       `json:"order"`
	Packages    []Package `json:"pacotes"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
