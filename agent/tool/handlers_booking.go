package tool

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

// Screens recorded in CurrentScreen after a successful call.
const (
	screenFlightList    = "flight_list"
	screenFareOptions   = "fare_options"
	screenTravelers     = "traveler_selection"
	screenConfirmation  = "booking_confirmation"
	screenManageBooking = "manage_booking"
	screenSeatSelection = "seat_selection"
	screenAncillaries   = "ancillaries"
	screenBoardingPass  = "boarding_pass"
	screenDiscover      = "discover"
)

type handlers struct {
	f contractx.Facades
	// fanout bounds concurrent downstream calls inside one handler.
	fanout int
}

func requireSearch(c statex.ConversationContext) error {
	if !c.HasSearch() {
		return contractx.SearchRequired()
	}
	return nil
}

func requireLogin(c statex.ConversationContext) error {
	if !c.LoggedIn() {
		return contractx.LoginRequired()
	}
	return nil
}

func (h *handlers) searchFlights(ctx context.Context, inv Invocation) (Outcome, error) {
	origin := inv.Args.String("origin")
	if origin == "" {
		return Outcome{}, contractx.OriginRequired()
	}

	result, err := h.f.Search.Search(ctx, contractx.SearchQuery{
		Origin:      origin,
		Destination: inv.Args.String("destination"),
		Date:        inv.Args.Date("date"),
		Passengers:  inv.Args.Int("passengers"),
	})
	if err != nil {
		return Outcome{}, err
	}

	update := &statex.ContextUpdate{
		LastSearchID:     statex.Str(result.SearchID),
		LastFlightNumber: statex.Str(""),
		CurrentScreen:    statex.Str(screenFlightList),
	}
	if inv.Context.UserOriginAirport == "" {
		update.UserOriginAirport = statex.Str(origin)
	}

	return Outcome{
		Payload: map[string]any{
			"searchId":    result.SearchID,
			"origin":      result.Origin,
			"destination": result.Destination,
			"date":        result.Date,
			"passengers":  result.Passengers,
			"flights":     result.Flights,
			"count":       len(result.Flights),
			"expiresAt":   result.ExpiresAt,
		},
		Context: update,
	}, nil
}

func (h *handlers) selectFlight(ctx context.Context, inv Invocation) (Outcome, error) {
	search, err := h.f.Search.Lookup(ctx, inv.Context.LastSearchID)
	if err != nil {
		return Outcome{}, err
	}
	number := inv.Args.String("flight_number")
	flight, ok := search.Flight(number)
	if !ok {
		return Outcome{}, contractx.NotFound("Flight %s is not in your latest search results.", number)
	}

	return Outcome{
		Payload: map[string]any{
			"searchId":   search.SearchID,
			"flight":     flight,
			"fares":      flight.Fares,
			"passengers": search.Passengers,
		},
		Context: &statex.ContextUpdate{
			LastFlightNumber: statex.Str(flight.FlightNumber),
			CurrentScreen:    statex.Str(screenFareOptions),
		},
	}, nil
}

func (h *handlers) savedTravelers(ctx context.Context, inv Invocation) (Outcome, error) {
	travelers, err := h.f.Profile.Travelers(ctx, inv.Context.UserID)
	if err != nil {
		return Outcome{}, err
	}
	if travelers == nil {
		travelers = []contractx.SavedTraveler{}
	}
	return Outcome{
		Payload: map[string]any{
			"travelers": travelers,
			"count":     len(travelers),
		},
		Context: &statex.ContextUpdate{CurrentScreen: statex.Str(screenTravelers)},
	}, nil
}

func (h *handlers) createBooking(ctx context.Context, inv Invocation) (Outcome, error) {
	raw := inv.Args.Objects("passengers")
	passengers := make([]contractx.Passenger, 0, len(raw))
	for _, p := range raw {
		passengers = append(passengers, contractx.Passenger{
			FirstName:      p.String("firstName"),
			LastName:       p.String("lastName"),
			DateOfBirth:    p.String("dateOfBirth"),
			Gender:         contractx.Gender(p.String("gender")),
			Nationality:    p.String("nationality"),
			Type:           contractx.PassengerType(p.String("type")),
			DocumentType:   contractx.DocumentType(p.String("documentType")),
			DocumentNumber: p.String("documentNumber"),
		})
	}

	req := contractx.BookingRequest{
		SearchID:     inv.Context.LastSearchID,
		FlightNumber: inv.Args.String("flight_number"),
		FareFamily:   contractx.FareFamily(inv.Args.String("fare_family")),
		Passengers:   passengers,
		ContactEmail: inv.Args.String("contact_email"),
	}
	if err := validateRequest(req); err != nil {
		return Outcome{}, err
	}

	conf, err := h.f.Booking.Create(ctx, req, inv.Context.UserID)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Payload: map[string]any{"booking": conf},
		Context: &statex.ContextUpdate{
			CurrentPNR:       statex.Str(conf.PNR),
			LastFlightNumber: statex.Str(conf.Flight.FlightNumber),
			CurrentScreen:    statex.Str(screenConfirmation),
		},
	}, nil
}

func (h *handlers) getBooking(ctx context.Context, inv Invocation) (Outcome, error) {
	booking, err := h.booking(ctx, inv.Args.String("pnr"))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"booking": booking},
		Context: pnrUpdate(booking.PNR, screenManageBooking),
	}, nil
}

// booking resolves a PNR to an existing booking or a not-found error.
func (h *handlers) booking(ctx context.Context, pnr string) (*contractx.BookingConfirmation, error) {
	b, err := h.f.Booking.Get(ctx, pnr)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, contractx.NotFound("No booking found with reference %s.", pnr)
	}
	return b, nil
}

func pnrUpdate(pnr, screen string) *statex.ContextUpdate {
	return &statex.ContextUpdate{
		CurrentPNR:    statex.Str(strings.ToUpper(pnr)),
		CurrentScreen: statex.Str(screen),
	}
}
