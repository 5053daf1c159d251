package contract

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (m Money) Add(o Money) Money {
	cur := m.Currency
	if cur == "" {
		cur = o.Currency
	}
	return Money{Amount: m.Amount + o.Amount, Currency: cur}
}

type FareFamily string

const (
	FareBasic   FareFamily = "basic"
	FarePlus    FareFamily = "plus"
	FarePremium FareFamily = "premium"
)

type FareOption struct {
	Family     FareFamily `json:"family"`
	Price      Money      `json:"price"`
	BaggageKg  int        `json:"baggageKg"`
	ChangeFee  Money      `json:"changeFee"`
	Refundable bool       `json:"refundable"`
}

type Flight struct {
	FlightNumber    string       `json:"flightNumber"`
	Origin          string       `json:"origin"`
	Destination     string       `json:"destination"`
	DepartureTime   time.Time    `json:"departureTime"`
	ArrivalTime     time.Time    `json:"arrivalTime"`
	DurationMinutes int          `json:"durationMinutes"`
	SeatsAvailable  int          `json:"seatsAvailable"`
	Fares           []FareOption `json:"fares"`
}

// Fare returns the option for family, if the flight sells it.
func (f Flight) Fare(family FareFamily) (FareOption, bool) {
	for _, fo := range f.Fares {
		if fo.Family == family {
			return fo, true
		}
	}
	return FareOption{}, false
}

// LowestFare returns the cheapest option, or false if none is sold.
func (f Flight) LowestFare() (FareOption, bool) {
	var best FareOption
	found := false
	for _, fo := range f.Fares {
		if !found || fo.Price.Amount < best.Price.Amount {
			best, found = fo, true
		}
	}
	return best, found
}

type SearchQuery struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        time.Time `json:"date"`
	Passengers  int       `json:"passengers"`
}

type SearchResult struct {
	SearchID    string    `json:"searchId"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Date        string    `json:"date"`
	Passengers  int       `json:"passengers"`
	Flights     []Flight  `json:"flights"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (r SearchResult) Flight(number string) (Flight, bool) {
	for _, f := range r.Flights {
		if strings.EqualFold(f.FlightNumber, number) {
			return f, true
		}
	}
	return Flight{}, false
}

type Airport struct {
	Code       string   `json:"code" yaml:"code"`
	City       string   `json:"city" yaml:"city"`
	Country    string   `json:"country" yaml:"country"`
	Tags       []string `json:"tags,omitempty" yaml:"tags"`
	Popularity int      `json:"popularity" yaml:"popularity"`
}

func (a Airport) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

type Route struct {
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	BaseFare        float64 `json:"baseFare"`
	DurationMinutes int     `json:"durationMinutes"`
}

type RouteMap struct {
	Airports map[string]Airport `json:"airports"`
	Routes   map[string][]Route `json:"routes"`
}

func (m RouteMap) Destinations(origin string) []Route {
	return m.Routes[strings.ToUpper(origin)]
}

func (m RouteMap) Airport(code string) (Airport, bool) {
	a, ok := m.Airports[strings.ToUpper(code)]
	return a, ok
}

type PassengerType string

const (
	PassengerAdult  PassengerType = "ADULT"
	PassengerChild  PassengerType = "CHILD"
	PassengerInfant PassengerType = "INFANT"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type DocumentType string

const (
	DocumentPassport   DocumentType = "PASSPORT"
	DocumentNationalID DocumentType = "NATIONAL_ID"
	DocumentIqama      DocumentType = "IQAMA"
)

type Passenger struct {
	FirstName      string        `json:"firstName" validate:"required,max=64"`
	LastName       string        `json:"lastName" validate:"required,max=64"`
	DateOfBirth    string        `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
	Gender         Gender        `json:"gender" validate:"oneof=MALE FEMALE"`
	Nationality    string        `json:"nationality" validate:"len=2,alpha"`
	Type           PassengerType `json:"type" validate:"oneof=ADULT CHILD INFANT"`
	DocumentType   DocumentType  `json:"documentType" validate:"oneof=PASSPORT NATIONAL_ID IQAMA"`
	DocumentNumber string        `json:"documentNumber" validate:"required,alphanum,min=5,max=20"`
}

func (p Passenger) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// MatchesName reports whether name refers to p: the full name or the first
// name, ignoring case and surrounding space.
func (p Passenger) MatchesName(name string) bool {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return false
	}
	return strings.EqualFold(name, p.FullName()) || strings.EqualFold(name, p.FirstName)
}

type BookingRequest struct {
	SearchID     string      `json:"searchId" validate:"required"`
	FlightNumber string      `json:"flightNumber" validate:"required"`
	FareFamily   FareFamily  `json:"fareFamily" validate:"oneof=basic plus premium"`
	Passengers   []Passenger `json:"passengers" validate:"required,min=1,max=9,dive"`
	ContactEmail string      `json:"contactEmail" validate:"omitempty,email"`
}

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type BookedPassenger struct {
	Passenger
	Seat          string   `json:"seat,omitempty"`
	Meals         []string `json:"meals,omitempty"`
	BaggageKg     int      `json:"baggageKg"`
	CheckedIn     bool     `json:"checkedIn"`
	BoardingGroup string   `json:"boardingGroup,omitempty"`
}

type BookingConfirmation struct {
	PNR          string            `json:"pnr"`
	Status       BookingStatus     `json:"status"`
	Flight       Flight            `json:"flight"`
	FareFamily   FareFamily        `json:"fareFamily"`
	Passengers   []BookedPassenger `json:"passengers"`
	ContactEmail string            `json:"contactEmail"`
	TotalPrice   Money             `json:"totalPrice"`
	UserID       string            `json:"userId,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Passenger finds a booked passenger by name.
func (b BookingConfirmation) Passenger(name string) (BookedPassenger, int, bool) {
	for i, p := range b.Passengers {
		if p.MatchesName(name) {
			return p, i, true
		}
	}
	return BookedPassenger{}, -1, false
}

type CancellationResult struct {
	PNR                 string        `json:"pnr"`
	PassengerName       string        `json:"passengerName"`
	Refund              Money         `json:"refund"`
	RemainingPassengers int           `json:"remainingPassengers"`
	BookingStatus       BookingStatus `json:"bookingStatus"`
}

type ChangeFeeQuote struct {
	PNR            string `json:"pnr"`
	CurrentFlight  string `json:"currentFlight"`
	NewFlight      string `json:"newFlight"`
	ChangeFee      Money  `json:"changeFee"`
	FareDifference Money  `json:"fareDifference"`
	Total          Money  `json:"total"`
}

type ChangeFlightRequest struct {
	PNR             string `json:"pnr"`
	NewFlightNumber string `json:"newFlightNumber"`
	PassengerName   string `json:"passengerName,omitempty"`
}

type SeatType string

const (
	SeatWindow SeatType = "WINDOW"
	SeatMiddle SeatType = "MIDDLE"
	SeatAisle  SeatType = "AISLE"
)

type SeatPreference string

const (
	PreferWindow SeatPreference = "window"
	PreferAisle  SeatPreference = "aisle"
	PreferMiddle SeatPreference = "middle"
	PreferFront  SeatPreference = "front"
	PreferAny    SeatPreference = "any"
)

type Seat struct {
	Number     string   `json:"number"`
	Type       SeatType `json:"type"`
	Available  bool     `json:"available"`
	AssignedTo string   `json:"assignedTo,omitempty"`
	Price      Money    `json:"price"`
}

type SeatRow struct {
	Number int    `json:"number"`
	Seats  []Seat `json:"seats"`
}

type SeatMap struct {
	PNR          string    `json:"pnr"`
	FlightNumber string    `json:"flightNumber"`
	Rows         []SeatRow `json:"rows"`
}

type SeatRequest struct {
	PNR           string         `json:"pnr"`
	PassengerName string         `json:"passengerName"`
	Seat          string         `json:"seat,omitempty"`
	Preference    SeatPreference `json:"preference,omitempty"`
}

type SeatAssignment struct {
	PNR           string   `json:"pnr"`
	PassengerName string   `json:"passengerName"`
	Seat          string   `json:"seat"`
	SeatType      SeatType `json:"seatType"`
	PreviousSeat  string   `json:"previousSeat,omitempty"`
	Price         Money    `json:"price"`
}

type Meal struct {
	Code        string   `json:"code" yaml:"code"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Price       Money    `json:"price" yaml:"price"`
	Dietary     []string `json:"dietary,omitempty" yaml:"dietary"`
}

type AncillaryReceipt struct {
	PNR           string `json:"pnr"`
	PassengerName string `json:"passengerName"`
	Item          string `json:"item"`
	Description   string `json:"description"`
	Price         Money  `json:"price"`
}

type BoardingPass struct {
	PNR           string    `json:"pnr"`
	PassengerName string    `json:"passengerName"`
	FlightNumber  string    `json:"flightNumber"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Seat          string    `json:"seat"`
	BoardingGroup string    `json:"boardingGroup"`
	Gate          string    `json:"gate"`
	BoardingTime  time.Time `json:"boardingTime"`
	Sequence      int       `json:"sequence"`
	Barcode       string    `json:"barcode"`
}

type SavedTraveler struct {
	ID           string `json:"id"`
	Relationship string `json:"relationship,omitempty"`
	Passenger
}

type WeatherReading struct {
	City         string  `json:"city"`
	TemperatureC float64 `json:"temperatureC"`
	Condition    string  `json:"condition"`
	Description  string  `json:"description,omitempty"`
}

// DestinationSuggestion is one row of the discovery tools' output.
type DestinationSuggestion struct {
	Code         string          `json:"code"`
	City         string          `json:"city"`
	Country      string          `json:"country"`
	Tags         []string        `json:"tags,omitempty"`
	Popularity   int             `json:"popularity,omitempty"`
	Weather      *WeatherReading `json:"weather,omitempty"`
	LowestFare   *Money          `json:"lowestFare,omitempty"`
	FareDate     string          `json:"fareDate,omitempty"`
	FlightNumber string          `json:"flightNumber,omitempty"`
}
