package contract

import (
	"context"
	"fmt"
	"time"
)

type Planner interface {
	Plan(ctx context.Context, req PlannerRequest) (PlannerResponse, error)
}

// ToolDispatcher runs one tool call and never fails: errors come back as a
// ToolResult with IsError set.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call ToolCall) ToolResult
}

type SearchCapability interface {
	Search(ctx context.Context, q SearchQuery) (SearchResult, error)
	// Lookup returns a previously issued search. Expired ids yield ErrSearchExpired.
	Lookup(ctx context.Context, searchID string) (SearchResult, error)
	RouteMap(ctx context.Context) (RouteMap, error)
}

type BookingCapability interface {
	Create(ctx context.Context, req BookingRequest, userID string) (BookingConfirmation, error)
	// Get returns nil, nil when the PNR does not exist.
	Get(ctx context.Context, pnr string) (*BookingConfirmation, error)
}

type ManageBookingCapability interface {
	CancelPassenger(ctx context.Context, pnr, passengerName string) (CancellationResult, error)
	CalculateChangeFees(ctx context.Context, pnr, newFlightNumber string) (ChangeFeeQuote, error)
	ChangeFlight(ctx context.Context, req ChangeFlightRequest) (BookingConfirmation, error)
}

type AncillaryCapability interface {
	SeatMap(ctx context.Context, pnr string) (SeatMap, error)
	AssignSeat(ctx context.Context, req SeatRequest) (SeatAssignment, error)
	Meals(ctx context.Context, pnr string) ([]Meal, error)
	AddMeal(ctx context.Context, pnr, passengerName, mealCode string) (AncillaryReceipt, error)
	AddBaggage(ctx context.Context, pnr, passengerName string, weightKg int) (AncillaryReceipt, error)
}

type CheckInCapability interface {
	// CheckIn checks in one passenger, or everyone on the booking when
	// passengerName is empty. Repeating it returns the same boarding passes.
	CheckIn(ctx context.Context, pnr, passengerName string) ([]BoardingPass, error)
	BoardingPass(ctx context.Context, pnr, passengerName string) (BoardingPass, error)
}

type ProfileCapability interface {
	Travelers(ctx context.Context, userID string) ([]SavedTraveler, error)
}

type WeatherCapability interface {
	// ForCities returns readings keyed by airport code; unknown codes are omitted.
	ForCities(ctx context.Context, codes []string, date time.Time) (map[string]WeatherReading, error)
}

// Facades bundles the downstream services the tool handlers call.
type Facades struct {
	Search    SearchCapability
	Booking   BookingCapability
	Manage    ManageBookingCapability
	Ancillary AncillaryCapability
	CheckIn   CheckInCapability
	Profile   ProfileCapability
	Weather   WeatherCapability
}

func (f Facades) Validate() error {
	switch {
	case f.Search == nil:
		return missingFacade("search")
	case f.Booking == nil:
		return missingFacade("booking")
	case f.Manage == nil:
		return missingFacade("manage booking")
	case f.Ancillary == nil:
		return missingFacade("ancillary")
	case f.CheckIn == nil:
		return missingFacade("check-in")
	case f.Profile == nil:
		return missingFacade("profile")
	case f.Weather == nil:
		return missingFacade("weather")
	}
	return nil
}

func missingFacade(name string) error {
	return fmt.Errorf("%w: %s facade is required", ErrValidation, name)
}
