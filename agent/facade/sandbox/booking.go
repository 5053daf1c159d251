package sandbox

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

// booking is the mutable record behind a PNR.
type booking struct {
	conf contractx.BookingConfirmation
	// boarding sequence numbers by passenger full name, set at check-in.
	sequence map[string]int
}

func (b *booking) snapshot() contractx.BookingConfirmation {
	out := b.conf
	out.Passengers = make([]contractx.BookedPassenger, len(b.conf.Passengers))
	for i, p := range b.conf.Passengers {
		p.Meals = append([]string(nil), p.Meals...)
		out.Passengers[i] = p
	}
	return out
}

func (b *booking) fare() contractx.FareOption {
	fo, _ := b.conf.Flight.Fare(b.conf.FareFamily)
	return fo
}

// passengerPrice applies the child and infant discounts to a fare.
func passengerPrice(fare contractx.FareOption, t contractx.PassengerType) contractx.Money {
	switch t {
	case contractx.PassengerChild:
		return sar(fare.Price.Amount * 0.75)
	case contractx.PassengerInfant:
		return sar(fare.Price.Amount * 0.10)
	default:
		return sar(fare.Price.Amount)
	}
}

func seated(passengers []contractx.BookedPassenger) int {
	n := 0
	for _, p := range passengers {
		if p.Type != contractx.PassengerInfant {
			n++
		}
	}
	return n
}

func (s *Sandbox) Create(ctx context.Context, req contractx.BookingRequest, userID string) (contractx.BookingConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return contractx.BookingConfirmation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	search, err := s.lookup(req.SearchID)
	if err != nil {
		return contractx.BookingConfirmation{}, err
	}
	listed, ok := search.Flight(req.FlightNumber)
	if !ok {
		return contractx.BookingConfirmation{}, contractx.NotFound("Flight %s is not in your latest search results.", req.FlightNumber)
	}
	family := req.FareFamily
	if family == "" {
		family = contractx.FareBasic
	}
	fare, ok := listed.Fare(family)
	if !ok {
		return contractx.BookingConfirmation{}, contractx.Rejected("Flight %s does not sell the %s fare.", listed.FlightNumber, family)
	}
	live, ok := s.flightOn(listed.FlightNumber, listed.DepartureTime)
	if !ok || !live.DepartureTime.After(s.clock()) {
		return contractx.BookingConfirmation{}, contractx.Rejected("Flight %s has already departed.", listed.FlightNumber)
	}

	passengers := make([]contractx.BookedPassenger, 0, len(req.Passengers))
	total := contractx.Money{Currency: Currency}
	for _, p := range req.Passengers {
		passengers = append(passengers, contractx.BookedPassenger{Passenger: p, BaggageKg: fare.BaggageKg})
		total = total.Add(passengerPrice(fare, p.Type))
	}
	need := seated(passengers)
	if live.SeatsAvailable < need {
		return contractx.BookingConfirmation{}, contractx.Rejected("Only %d seats are left on flight %s.", live.SeatsAvailable, live.FlightNumber)
	}

	b := &booking{
		conf: contractx.BookingConfirmation{
			PNR:          s.newPNR(),
			Status:       contractx.BookingConfirmed,
			Flight:       listed,
			FareFamily:   family,
			Passengers:   passengers,
			ContactEmail: strings.ToLower(req.ContactEmail),
			TotalPrice:   total,
			UserID:       userID,
			CreatedAt:    s.clock(),
		},
		sequence: map[string]int{},
	}
	s.bookings[b.conf.PNR] = b
	s.held[flightKey(listed)] += need
	return b.snapshot(), nil
}

func (s *Sandbox) Get(ctx context.Context, pnr string) (*contractx.BookingConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[strings.ToUpper(strings.TrimSpace(pnr))]
	if !ok {
		return nil, nil
	}
	conf := b.snapshot()
	return &conf, nil
}

// active returns a confirmed booking or the error the user should see.
func (s *Sandbox) active(pnr string) (*booking, error) {
	pnr = strings.ToUpper(strings.TrimSpace(pnr))
	b, ok := s.bookings[pnr]
	if !ok {
		return nil, notFoundBooking(pnr)
	}
	if b.conf.Status == contractx.BookingCancelled {
		return nil, contractx.Rejected("Booking %s has been cancelled.", pnr)
	}
	return b, nil
}

func (b *booking) passenger(name string) (int, error) {
	_, i, ok := b.conf.Passenger(name)
	if !ok {
		return -1, contractx.NotFound("No passenger named %s on booking %s.", name, b.conf.PNR)
	}
	return i, nil
}

// release frees the seat and capacity held by passenger i on the booked flight.
func (s *Sandbox) release(b *booking, i int) {
	p := b.conf.Passengers[i]
	key := flightKey(b.conf.Flight)
	if p.Seat != "" {
		delete(s.occupied[key], p.Seat)
	}
	if p.Type != contractx.PassengerInfant && s.held[key] > 0 {
		s.held[key]--
	}
	delete(b.sequence, p.FullName())
}

func (s *Sandbox) CancelPassenger(ctx context.Context, pnr, passengerName string) (contractx.CancellationResult, error) {
	if err := ctx.Err(); err != nil {
		return contractx.CancellationResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return contractx.CancellationResult{}, err
	}
	i, err := b.passenger(passengerName)
	if err != nil {
		return contractx.CancellationResult{}, err
	}
	p := b.conf.Passengers[i]
	if p.CheckedIn {
		return contractx.CancellationResult{}, contractx.Rejected("%s is already checked in and can no longer be cancelled.", p.FullName())
	}

	fare := b.fare()
	paid := passengerPrice(fare, p.Type)
	refund := sar(0)
	switch {
	case fare.Refundable:
		refund = paid
	case b.conf.FareFamily == contractx.FarePlus:
		refund = sar(paid.Amount * 0.5)
	}

	s.release(b, i)
	b.conf.Passengers = append(b.conf.Passengers[:i], b.conf.Passengers[i+1:]...)
	b.conf.TotalPrice = sar(b.conf.TotalPrice.Amount - paid.Amount)
	if len(b.conf.Passengers) == 0 {
		b.conf.Status = contractx.BookingCancelled
		b.conf.TotalPrice = sar(0)
	}

	return contractx.CancellationResult{
		PNR:                 b.conf.PNR,
		PassengerName:       p.FullName(),
		Refund:              refund,
		RemainingPassengers: len(b.conf.Passengers),
		BookingStatus:       b.conf.Status,
	}, nil
}

// quoteChange prices moving passengers from b onto newNumber.
func (s *Sandbox) quoteChange(b *booking, newNumber string, passengers []contractx.BookedPassenger) (contractx.ChangeFeeQuote, contractx.Flight, error) {
	current := b.conf.Flight
	next, ok := s.findFlight(newNumber, current.DepartureTime)
	if !ok {
		return contractx.ChangeFeeQuote{}, contractx.Flight{}, contractx.NotFound("Flight %s does not exist.", newNumber)
	}
	if next.Origin != current.Origin || next.Destination != current.Destination {
		return contractx.ChangeFeeQuote{}, contractx.Flight{}, contractx.Rejected(
			"Flight %s does not fly %s to %s.", next.FlightNumber, current.Origin, current.Destination)
	}
	if flightKey(next) == flightKey(current) {
		return contractx.ChangeFeeQuote{}, contractx.Flight{}, contractx.Rejected("You are already booked on flight %s.", next.FlightNumber)
	}
	if !next.DepartureTime.After(s.clock()) {
		return contractx.ChangeFeeQuote{}, contractx.Flight{}, contractx.Rejected("Flight %s has already departed.", next.FlightNumber)
	}

	oldFare := b.fare()
	newFare, ok := next.Fare(b.conf.FareFamily)
	if !ok {
		return contractx.ChangeFeeQuote{}, contractx.Flight{}, contractx.Rejected("Flight %s does not sell the %s fare.", next.FlightNumber, b.conf.FareFamily)
	}
	var oldTotal, newTotal float64
	for _, p := range passengers {
		oldTotal += passengerPrice(oldFare, p.Type).Amount
		newTotal += passengerPrice(newFare, p.Type).Amount
	}
	diff := newTotal - oldTotal
	if diff < 0 {
		diff = 0
	}
	fee := sar(oldFare.ChangeFee.Amount * float64(len(passengers)))

	return contractx.ChangeFeeQuote{
		PNR:            b.conf.PNR,
		CurrentFlight:  current.FlightNumber,
		NewFlight:      next.FlightNumber,
		ChangeFee:      fee,
		FareDifference: sar(diff),
		Total:          sar(fee.Amount + diff),
	}, next, nil
}

func (s *Sandbox) CalculateChangeFees(ctx context.Context, pnr, newFlightNumber string) (contractx.ChangeFeeQuote, error) {
	if err := ctx.Err(); err != nil {
		return contractx.ChangeFeeQuote{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return contractx.ChangeFeeQuote{}, err
	}
	quote, _, err := s.quoteChange(b, newFlightNumber, b.conf.Passengers)
	return quote, err
}

// ChangeFlight moves the whole booking, or splits one named passenger onto a
// new PNR. Seats and check-in are reset either way.
func (s *Sandbox) ChangeFlight(ctx context.Context, req contractx.ChangeFlightRequest) (contractx.BookingConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return contractx.BookingConfirmation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(req.PNR)
	if err != nil {
		return contractx.BookingConfirmation{}, err
	}

	moving := []int{}
	if strings.TrimSpace(req.PassengerName) != "" {
		i, err := b.passenger(req.PassengerName)
		if err != nil {
			return contractx.BookingConfirmation{}, err
		}
		moving = append(moving, i)
	} else {
		for i := range b.conf.Passengers {
			moving = append(moving, i)
		}
	}
	movers := make([]contractx.BookedPassenger, 0, len(moving))
	for _, i := range moving {
		movers = append(movers, b.conf.Passengers[i])
	}

	quote, next, err := s.quoteChange(b, req.NewFlightNumber, movers)
	if err != nil {
		return contractx.BookingConfirmation{}, err
	}
	if need := seated(movers); next.SeatsAvailable < need {
		return contractx.BookingConfirmation{}, contractx.Rejected("Only %d seats are left on flight %s.", next.SeatsAvailable, next.FlightNumber)
	}

	fare := b.fare()
	var paid float64
	for _, p := range movers {
		paid += passengerPrice(fare, p.Type).Amount
	}
	// Release from the highest index down so earlier indexes stay valid.
	for k := len(moving) - 1; k >= 0; k-- {
		s.release(b, moving[k])
	}
	for i := range movers {
		movers[i].Seat = ""
		movers[i].CheckedIn = false
		movers[i].BoardingGroup = ""
	}
	s.held[flightKey(next)] += seated(movers)

	if len(movers) == len(b.conf.Passengers) {
		b.conf.Flight = next
		b.conf.Passengers = movers
		b.conf.TotalPrice = sar(b.conf.TotalPrice.Amount + quote.Total.Amount)
		return b.snapshot(), nil
	}

	i := moving[0]
	b.conf.Passengers = append(b.conf.Passengers[:i], b.conf.Passengers[i+1:]...)
	b.conf.TotalPrice = sar(b.conf.TotalPrice.Amount - paid)

	split := &booking{
		conf: contractx.BookingConfirmation{
			PNR:          s.newPNR(),
			Status:       contractx.BookingConfirmed,
			Flight:       next,
			FareFamily:   b.conf.FareFamily,
			Passengers:   movers,
			ContactEmail: b.conf.ContactEmail,
			TotalPrice:   sar(paid + quote.Total.Amount),
			UserID:       b.conf.UserID,
			CreatedAt:    s.clock(),
		},
		sequence: map[string]int{},
	}
	s.bookings[split.conf.PNR] = split
	return split.snapshot(), nil
}
