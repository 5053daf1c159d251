package tool

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

// fakeFacades implements every capability with canned data and call counters.
type fakeFacades struct {
	mu sync.Mutex

	searchCalls  atomic.Int32
	bookingCalls atomic.Int32
	profileCalls atomic.Int32
	weatherCalls atomic.Int32

	lastQuery   contractx.SearchQuery
	lastBooking contractx.BookingRequest
	routeMap    contractx.RouteMap
	weather     map[string]contractx.WeatherReading
	// prices by destination code, used as the basic fare of every flight.
	prices   map[string]float64
	bookings map[string]*contractx.BookingConfirmation
	expired  bool
	failWith error
	panicMsg string
}

func newFakeFacades() *fakeFacades {
	return &fakeFacades{
		routeMap: contractx.RouteMap{
			Airports: map[string]contractx.Airport{
				"RUH": {Code: "RUH", City: "Riyadh", Country: "SA", Tags: []string{"city"}, Popularity: 90},
				"JED": {Code: "JED", City: "Jeddah", Country: "SA", Tags: []string{"beach", "city"}, Popularity: 95},
				"DXB": {Code: "DXB", City: "Dubai", Country: "AE", Tags: []string{"shopping", "city"}, Popularity: 99},
				"AHB": {Code: "AHB", City: "Abha", Country: "SA", Tags: []string{"nature"}, Popularity: 60},
			},
			Routes: map[string][]contractx.Route{
				"RUH": {
					{Origin: "RUH", Destination: "JED", BaseFare: 350, DurationMinutes: 110},
					{Origin: "RUH", Destination: "DXB", BaseFare: 600, DurationMinutes: 125},
					{Origin: "RUH", Destination: "AHB", BaseFare: 300, DurationMinutes: 95},
				},
			},
		},
		weather: map[string]contractx.WeatherReading{
			"JED": {City: "Jeddah", TemperatureC: 33, Condition: "sunny"},
			"DXB": {City: "Dubai", TemperatureC: 36, Condition: "clear"},
			"AHB": {City: "Abha", TemperatureC: 19, Condition: "cloudy"},
		},
		prices:   map[string]float64{"JED": 350, "DXB": 600, "AHB": 300},
		bookings: map[string]*contractx.BookingConfirmation{},
	}
}

func (f *fakeFacades) facades() contractx.Facades {
	return contractx.Facades{
		Search:    f,
		Booking:   f,
		Manage:    f,
		Ancillary: f,
		CheckIn:   f,
		Profile:   f,
		Weather:   f,
	}
}

func (f *fakeFacades) fail() error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.failWith
}

func (f *fakeFacades) flight(origin, dest string, date time.Time) contractx.Flight {
	price := f.prices[dest]
	// later dates are cheaper so the window scan has something to find
	price -= float64(date.Day() % 7)
	return contractx.Flight{
		FlightNumber:  "SV" + dest,
		Origin:        origin,
		Destination:   dest,
		DepartureTime: date.Add(9 * time.Hour),
		Fares: []contractx.FareOption{
			{Family: contractx.FareBasic, Price: contractx.Money{Amount: price, Currency: "SAR"}},
			{Family: contractx.FarePlus, Price: contractx.Money{Amount: price * 1.35, Currency: "SAR"}},
		},
	}
}

func (f *fakeFacades) Search(_ context.Context, q contractx.SearchQuery) (contractx.SearchResult, error) {
	f.searchCalls.Add(1)
	if err := f.fail(); err != nil {
		return contractx.SearchResult{}, err
	}
	f.mu.Lock()
	f.lastQuery = q
	f.mu.Unlock()
	return contractx.SearchResult{
		SearchID:    "S-" + q.Origin + q.Destination,
		Origin:      q.Origin,
		Destination: q.Destination,
		Date:        q.Date.Format(contractx.DateLayout),
		Passengers:  q.Passengers,
		Flights:     []contractx.Flight{f.flight(q.Origin, q.Destination, q.Date)},
	}, nil
}

func (f *fakeFacades) Lookup(_ context.Context, searchID string) (contractx.SearchResult, error) {
	if f.expired {
		return contractx.SearchResult{}, contractx.SearchExpired(searchID)
	}
	return contractx.SearchResult{
		SearchID:   searchID,
		Passengers: 1,
		Flights:    []contractx.Flight{f.flight("RUH", "JED", time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC))},
	}, nil
}

func (f *fakeFacades) RouteMap(context.Context) (contractx.RouteMap, error) {
	return f.routeMap, f.fail()
}

func (f *fakeFacades) Create(_ context.Context, req contractx.BookingRequest, userID string) (contractx.BookingConfirmation, error) {
	f.bookingCalls.Add(1)
	if err := f.fail(); err != nil {
		return contractx.BookingConfirmation{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastBooking = req
	conf := contractx.BookingConfirmation{
		PNR:          "ABC123",
		Status:       contractx.BookingConfirmed,
		Flight:       contractx.Flight{FlightNumber: req.FlightNumber},
		FareFamily:   req.FareFamily,
		ContactEmail: req.ContactEmail,
		UserID:       userID,
	}
	for _, p := range req.Passengers {
		conf.Passengers = append(conf.Passengers, contractx.BookedPassenger{Passenger: p})
	}
	f.bookings[conf.PNR] = &conf
	return conf, nil
}

func (f *fakeFacades) Get(_ context.Context, pnr string) (*contractx.BookingConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookings[pnr], f.fail()
}

func (f *fakeFacades) CancelPassenger(_ context.Context, pnr, name string) (contractx.CancellationResult, error) {
	return contractx.CancellationResult{PNR: pnr, PassengerName: name, BookingStatus: contractx.BookingConfirmed}, f.fail()
}

func (f *fakeFacades) CalculateChangeFees(_ context.Context, pnr, flight string) (contractx.ChangeFeeQuote, error) {
	return contractx.ChangeFeeQuote{PNR: pnr, NewFlight: flight}, f.fail()
}

func (f *fakeFacades) ChangeFlight(_ context.Context, req contractx.ChangeFlightRequest) (contractx.BookingConfirmation, error) {
	return contractx.BookingConfirmation{PNR: req.PNR, Flight: contractx.Flight{FlightNumber: req.NewFlightNumber}}, f.fail()
}

func (f *fakeFacades) SeatMap(_ context.Context, pnr string) (contractx.SeatMap, error) {
	return contractx.SeatMap{PNR: pnr, FlightNumber: "SV1020"}, f.fail()
}

func (f *fakeFacades) AssignSeat(_ context.Context, req contractx.SeatRequest) (contractx.SeatAssignment, error) {
	seat := req.Seat
	if seat == "" {
		seat = "1A"
	}
	return contractx.SeatAssignment{PNR: req.PNR, PassengerName: req.PassengerName, Seat: seat}, f.fail()
}

func (f *fakeFacades) Meals(context.Context, string) ([]contractx.Meal, error) {
	return []contractx.Meal{{Code: "VGML", Name: "Vegetarian"}}, f.fail()
}

func (f *fakeFacades) AddMeal(_ context.Context, pnr, name, code string) (contractx.AncillaryReceipt, error) {
	return contractx.AncillaryReceipt{PNR: pnr, PassengerName: name, Item: code}, f.fail()
}

func (f *fakeFacades) AddBaggage(_ context.Context, pnr, name string, kg int) (contractx.AncillaryReceipt, error) {
	return contractx.AncillaryReceipt{PNR: pnr, PassengerName: name, Item: "BAG" + strings.Repeat("+", kg/5)}, f.fail()
}

func (f *fakeFacades) CheckIn(_ context.Context, pnr, name string) ([]contractx.BoardingPass, error) {
	return []contractx.BoardingPass{{PNR: pnr, PassengerName: name, Seat: "12A", BoardingGroup: "3"}}, f.fail()
}

func (f *fakeFacades) BoardingPass(_ context.Context, pnr, name string) (contractx.BoardingPass, error) {
	return contractx.BoardingPass{PNR: pnr, PassengerName: name, Seat: "12A", BoardingGroup: "3"}, f.fail()
}

func (f *fakeFacades) Travelers(context.Context, string) ([]contractx.SavedTraveler, error) {
	f.profileCalls.Add(1)
	return []contractx.SavedTraveler{{ID: "t1", Passenger: contractx.Passenger{FirstName: "Sara", LastName: "Ali"}}}, f.fail()
}

func (f *fakeFacades) ForCities(_ context.Context, codes []string, _ time.Time) (map[string]contractx.WeatherReading, error) {
	f.weatherCalls.Add(1)
	out := make(map[string]contractx.WeatherReading, len(codes))
	for _, c := range codes {
		if r, ok := f.weather[c]; ok {
			out[c] = r
		}
	}
	return out, f.fail()
}
