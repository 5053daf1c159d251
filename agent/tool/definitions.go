package tool

import (
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

// Argument defaults that stand in for values the user did not give. Gender,
// nationality and fare family are product defaults, not inferred data.
const (
	DefaultGender        = string(contractx.GenderMale)
	DefaultNationality   = "SA"
	DefaultPassengerType = string(contractx.PassengerAdult)
	DefaultFareFamily    = string(contractx.FareBasic)
	DefaultBaggageKg     = 20
	DefaultMaxResults    = 5
	MaxPassengers        = 9
)

type CatalogOption func(*handlers)

// WithFanout bounds concurrent downstream calls made by one discovery tool.
func WithFanout(n int) CatalogOption {
	return func(h *handlers) {
		h.fanout = n
	}
}

// NewCatalog validates the facades and builds the registry over them.
func NewCatalog(f contractx.Facades, opts ...CatalogOption) (*Registry, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return NewRegistry(Definitions(f, opts...)...)
}

func tomorrow(env Env) any {
	return startOfDay(env.Now).AddDate(0, 0, 1)
}

func pnrField() FieldSpec {
	return StringField("pnr").Required().Upper().FromContext(statex.FieldCurrentPNR).
		Describe("Booking reference (PNR). Defaults to the booking currently being discussed.")
}

func passengerNameField(required bool) FieldSpec {
	f := StringField("passenger_name").Describe("Passenger full name or first name as it appears on the booking.")
	if required {
		f = f.Required()
	}
	return f
}

func originField() FieldSpec {
	return StringField("origin").Upper().FromContext(statex.FieldUserOriginAirport).
		Describe("Departure airport IATA code. Defaults to the user's home airport.")
}

func maxResultsField() FieldSpec {
	return IntField("max_results").ClampRange(1, 10).WithDefault(DefaultMaxResults).
		Describe("How many destinations to return, 1 to 10.")
}

func passengerSpec() []FieldSpec {
	return []FieldSpec{
		StringField("firstName").Required().Describe("Given name as on the travel document."),
		StringField("lastName").Required().Describe("Family name as on the travel document."),
		StringField("dateOfBirth").Required().Describe("Date of birth, YYYY-MM-DD."),
		EnumField("gender", DefaultGender, string(contractx.GenderMale), string(contractx.GenderFemale)),
		StringField("nationality").Upper().WithDefault(DefaultNationality).
			Describe("ISO 3166 alpha-2 nationality code."),
		EnumField("type", DefaultPassengerType,
			string(contractx.PassengerAdult), string(contractx.PassengerChild), string(contractx.PassengerInfant)),
		EnumField("documentType", "",
			string(contractx.DocumentPassport), string(contractx.DocumentNationalID), string(contractx.DocumentIqama)).
			Required().StrictEnum().Describe("Travel document type."),
		StringField("documentNumber").Required().Upper().Describe("Travel document number."),
	}
}

// Definitions returns the full catalog bound to f.
func Definitions(f contractx.Facades, opts ...CatalogOption) []Definition {
	h := &handlers{f: f}
	for _, opt := range opts {
		opt(h)
	}

	return []Definition{
		{
			Name:        SearchFlights,
			Description: "Search one-way flights between two airports on a date.",
			Spec: ArgumentSpec{
				originField(),
				StringField("destination").Required().Upper().Describe("Arrival airport IATA code."),
				DateField("date").Computed(tomorrow).
					Describe("Departure date: YYYY-MM-DD, today, tomorrow, or a weekday such as next friday."),
				IntField("passengers").Range(1, MaxPassengers).WithDefault(1).Describe("Number of passengers, 1 to 9."),
			},
			UIHint:  contractx.UIFlightList,
			Handler: h.searchFlights,
		},
		{
			Name:        SelectFlight,
			Description: "Select a flight from the latest search and show its fare options.",
			Spec: ArgumentSpec{
				StringField("flight_number").Required().Upper().Describe("Flight number from the search results."),
			},
			UIHint:  contractx.UIFareOptions,
			Guard:   requireSearch,
			Handler: h.selectFlight,
		},
		{
			Name:        GetSavedTravelers,
			Description: "List the logged-in user's saved travelers.",
			UIHint:      contractx.UISavedTravelers,
			Guard:       requireLogin,
			Handler:     h.savedTravelers,
		},
		{
			Name:        CreateBooking,
			Description: "Book a flight from the latest search for one or more passengers.",
			Spec: ArgumentSpec{
				StringField("flight_number").Required().Upper().FromContext(statex.FieldLastFlightNumber).
					Describe("Flight number from the latest search. Defaults to the selected flight."),
				EnumField("fare_family", DefaultFareFamily,
					string(contractx.FareBasic), string(contractx.FarePlus), string(contractx.FarePremium)),
				ArrayField("passengers", passengerSpec()...).Required().Items(MaxPassengers).
					Describe("Passengers to book."),
				StringField("contact_email").Lower().FromContext(statex.FieldUserEmail).
					Describe("Email for the confirmation. Defaults to the user's account email."),
			},
			UIHint:  contractx.UIBookingConfirmation,
			Guard:   requireSearch,
			Handler: h.createBooking,
		},
		{
			Name:        GetBooking,
			Description: "Retrieve a booking by reference.",
			Spec:        ArgumentSpec{pnrField()},
			UIHint:      contractx.UIBookingDetails,
			Handler:     h.getBooking,
		},
		{
			Name:        CancelSpecificPassenger,
			Description: "Cancel one passenger on a booking.",
			Spec:        ArgumentSpec{pnrField(), passengerNameField(true)},
			UIHint:      contractx.UICancellationSummary,
			Handler:     h.cancelPassenger,
		},
		{
			Name:        CalculateChangeFees,
			Description: "Quote the cost of moving a booking to another flight.",
			Spec: ArgumentSpec{
				pnrField(),
				StringField("new_flight_number").Required().Upper().Describe("Flight to move to."),
			},
			UIHint:  contractx.UIChangeFeeQuote,
			Handler: h.changeFees,
		},
		{
			Name:        ChangeFlight,
			Description: "Move a booking, or one passenger on it, to another flight.",
			Spec: ArgumentSpec{
				pnrField(),
				StringField("new_flight_number").Required().Upper().Describe("Flight to move to."),
				passengerNameField(false),
			},
			UIHint:  contractx.UIBookingConfirmation,
			Handler: h.changeFlight,
		},
		{
			Name:        GetSeatMap,
			Description: "Show the seat map for a booking's flight.",
			Spec:        ArgumentSpec{pnrField()},
			UIHint:      contractx.UISeatMap,
			Handler:     h.seatMap,
		},
		{
			Name:        ChangeSeat,
			Description: "Assign a specific seat, or the best seat for a preference.",
			Spec: ArgumentSpec{
				pnrField(),
				passengerNameField(true),
				StringField("new_seat").Upper().Describe("Seat such as 12A."),
				EnumField("preference", string(contractx.PreferAny),
					string(contractx.PreferWindow), string(contractx.PreferAisle), string(contractx.PreferMiddle),
					string(contractx.PreferFront), string(contractx.PreferAny)).
					Describe("Used when no seat is named."),
			},
			UIHint:  contractx.UISeatConfirmation,
			Handler: h.changeSeat,
		},
		{
			Name:        GetAvailableMeals,
			Description: "List meals that can be pre-ordered for a booking.",
			Spec:        ArgumentSpec{pnrField()},
			UIHint:      contractx.UIMealOptions,
			Handler:     h.meals,
		},
		{
			Name:        AddMeal,
			Description: "Pre-order a meal for a passenger.",
			Spec: ArgumentSpec{
				pnrField(),
				passengerNameField(true),
				StringField("meal_code").Required().Upper().Describe("Meal code from get_available_meals."),
			},
			UIHint:  contractx.UIAncillaryConfirmation,
			Handler: h.addMeal,
		},
		{
			Name:        AddBaggage,
			Description: "Buy extra checked baggage for a passenger.",
			Spec: ArgumentSpec{
				pnrField(),
				passengerNameField(true),
				IntField("weight_kg").Required().OneOf(DefaultBaggageKg, 20, 25, 30).Describe("Bag weight: 20, 25 or 30 kg."),
			},
			UIHint:  contractx.UIAncillaryConfirmation,
			Handler: h.addBaggage,
		},
		{
			Name:        CheckIn,
			Description: "Check in one passenger, or everyone on the booking.",
			Spec:        ArgumentSpec{pnrField(), passengerNameField(false)},
			UIHint:      contractx.UIBoardingPass,
			Handler:     h.checkIn,
		},
		{
			Name:        GetBoardingPass,
			Description: "Show the boarding pass of a checked-in passenger.",
			Spec:        ArgumentSpec{pnrField(), passengerNameField(true)},
			UIHint:      contractx.UIBoardingPass,
			Handler:     h.boardingPass,
		},
		{
			Name:        FindWeatherDestinations,
			Description: "Suggest destinations reachable from the origin by expected weather.",
			Spec: ArgumentSpec{
				originField(),
				EnumField("weather_preference", "any", weatherPreferences...).Describe("Desired weather."),
				maxResultsField(),
			},
			UIHint:  contractx.UIDestinationSuggestion,
			Handler: h.weatherDestinations,
		},
		{
			Name:        FindCheapestFlights,
			Description: "Find the cheapest destinations from the origin within a date window.",
			Spec: ArgumentSpec{
				originField(),
				DateField("date_from").Computed(tomorrow).Describe("First departure date. Defaults to tomorrow."),
				DateField("date_to").Describe("Last departure date. Defaults to six days after date_from; at most 14 days are scanned."),
				maxResultsField(),
			},
			UIHint:  contractx.UICheapestFlights,
			Handler: h.cheapestFlights,
		},
		{
			Name:        GetPopularDestinations,
			Description: "List popular destinations from the origin, optionally by travel type.",
			Spec: ArgumentSpec{
				originField(),
				EnumField("travel_type", "any", travelTypes...).Describe("Kind of trip."),
				maxResultsField(),
			},
			UIHint:  contractx.UIDestinationSuggestion,
			Handler: h.popularDestinations,
		},
	}
}
