package sandbox

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

const (
	seatRows     = 30
	seatLetters  = "ABCDEF"
	blockedShare = 35
)

var baggagePrices = map[int]float64{20: 120, 25: 150, 30: 180}

func seatType(letter byte) contractx.SeatType {
	switch letter {
	case 'A', 'F':
		return contractx.SeatWindow
	case 'C', 'D':
		return contractx.SeatAisle
	default:
		return contractx.SeatMiddle
	}
}

func seatPrice(row int, letter byte, family contractx.FareFamily) contractx.Money {
	if family == contractx.FarePremium {
		return sar(0)
	}
	switch {
	case row <= 3:
		return sar(75)
	case row == 12 || row == 13:
		return sar(60)
	case seatType(letter) != contractx.SeatMiddle:
		return sar(25)
	default:
		return sar(0)
	}
}

// parseSeat accepts "12A" style designators.
func parseSeat(seat string) (int, byte, bool) {
	seat = strings.ToUpper(strings.TrimSpace(seat))
	if len(seat) < 2 {
		return 0, 0, false
	}
	letter := seat[len(seat)-1]
	row, err := strconv.Atoi(seat[:len(seat)-1])
	if err != nil || row < 1 || row > seatRows || strings.IndexByte(seatLetters, letter) < 0 {
		return 0, 0, false
	}
	return row, letter, true
}

func occupant(pnr, name string) string {
	return pnr + "|" + name
}

// blocked reports seats sold outside the sandbox. The pattern is fixed per
// departure so the map does not shuffle between calls.
func blocked(key, seat string) bool {
	return hash(key, seat)%100 < blockedShare
}

func (s *Sandbox) buildSeatMap(b *booking) contractx.SeatMap {
	key := flightKey(b.conf.Flight)
	taken := s.occupied[key]
	m := contractx.SeatMap{PNR: b.conf.PNR, FlightNumber: b.conf.Flight.FlightNumber}
	for row := 1; row <= seatRows; row++ {
		r := contractx.SeatRow{Number: row}
		for i := 0; i < len(seatLetters); i++ {
			letter := seatLetters[i]
			number := fmt.Sprintf("%d%c", row, letter)
			seat := contractx.Seat{
				Number:    number,
				Type:      seatType(letter),
				Available: true,
				Price:     seatPrice(row, letter, b.conf.FareFamily),
			}
			if who, ok := taken[number]; ok {
				seat.Available = false
				if pnr, name, _ := strings.Cut(who, "|"); pnr == b.conf.PNR {
					seat.AssignedTo = name
				}
			} else if blocked(key, number) {
				seat.Available = false
			}
			r.Seats = append(r.Seats, seat)
		}
		m.Rows = append(m.Rows, r)
	}
	return m
}

func (s *Sandbox) SeatMap(ctx context.Context, pnr string) (contractx.SeatMap, error) {
	if err := ctx.Err(); err != nil {
		return contractx.SeatMap{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return contractx.SeatMap{}, err
	}
	return s.buildSeatMap(b), nil
}

// pickSeat returns the cheapest free seat matching pref, front rows first on
// ties. PreferFront ignores price.
func pickSeat(m contractx.SeatMap, pref contractx.SeatPreference) (contractx.Seat, bool) {
	var candidates []contractx.Seat
	for _, row := range m.Rows {
		for _, seat := range row.Seats {
			if !seat.Available {
				continue
			}
			switch pref {
			case contractx.PreferWindow:
				if seat.Type != contractx.SeatWindow {
					continue
				}
			case contractx.PreferAisle:
				if seat.Type != contractx.SeatAisle {
					continue
				}
			case contractx.PreferMiddle:
				if seat.Type != contractx.SeatMiddle {
					continue
				}
			}
			candidates = append(candidates, seat)
		}
	}
	if len(candidates) == 0 {
		return contractx.Seat{}, false
	}
	if pref != contractx.PreferFront {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Price.Amount < candidates[j].Price.Amount
		})
	}
	return candidates[0], true
}

func (s *Sandbox) AssignSeat(ctx context.Context, req contractx.SeatRequest) (contractx.SeatAssignment, error) {
	if err := ctx.Err(); err != nil {
		return contractx.SeatAssignment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(req.PNR)
	if err != nil {
		return contractx.SeatAssignment{}, err
	}
	i, err := b.passenger(req.PassengerName)
	if err != nil {
		return contractx.SeatAssignment{}, err
	}
	p := &b.conf.Passengers[i]
	if p.Type == contractx.PassengerInfant {
		return contractx.SeatAssignment{}, contractx.Rejected("Infants travel on an adult's lap and don't get a seat.")
	}
	if p.CheckedIn {
		return contractx.SeatAssignment{}, contractx.Rejected("%s is already checked in. Seats can't be changed after check-in.", p.FullName())
	}
	return s.seatPassenger(b, i, req.Seat, req.Preference, true)
}

// seatPassenger assigns seat, or the best match for pref when seat is empty.
// Seats assigned without charge are the ones handed out at check-in.
func (s *Sandbox) seatPassenger(b *booking, i int, seat string, pref contractx.SeatPreference, charge bool) (contractx.SeatAssignment, error) {
	p := &b.conf.Passengers[i]
	m := s.buildSeatMap(b)

	var chosen contractx.Seat
	if strings.TrimSpace(seat) != "" {
		row, letter, ok := parseSeat(seat)
		if !ok {
			return contractx.SeatAssignment{}, contractx.Rejected("Seat %s does not exist on this aircraft.", strings.ToUpper(seat))
		}
		chosen = m.Rows[row-1].Seats[strings.IndexByte(seatLetters, letter)]
		if chosen.Number == p.Seat {
			return contractx.SeatAssignment{
				PNR:           b.conf.PNR,
				PassengerName: p.FullName(),
				Seat:          p.Seat,
				SeatType:      chosen.Type,
				PreviousSeat:  p.Seat,
				Price:         sar(0),
			}, nil
		}
		if !chosen.Available {
			return contractx.SeatAssignment{}, contractx.Rejected("Seat %s is not available.", chosen.Number)
		}
	} else {
		if pref == "" {
			pref = contractx.PreferAny
		}
		var ok bool
		if chosen, ok = pickSeat(m, pref); !ok {
			return contractx.SeatAssignment{}, contractx.Rejected("No %s seats are left on flight %s.", pref, b.conf.Flight.FlightNumber)
		}
	}

	if !charge {
		chosen.Price = sar(0)
	}
	key := flightKey(b.conf.Flight)
	previous := p.Seat
	if previous != "" {
		delete(s.occupied[key], previous)
	}
	if s.occupied[key] == nil {
		s.occupied[key] = map[string]string{}
	}
	s.occupied[key][chosen.Number] = occupant(b.conf.PNR, p.FullName())
	p.Seat = chosen.Number
	b.conf.TotalPrice = b.conf.TotalPrice.Add(chosen.Price)

	return contractx.SeatAssignment{
		PNR:           b.conf.PNR,
		PassengerName: p.FullName(),
		Seat:          chosen.Number,
		SeatType:      chosen.Type,
		PreviousSeat:  previous,
		Price:         chosen.Price,
	}, nil
}

func mealPrice(m contractx.Meal, family contractx.FareFamily) contractx.Money {
	if family == contractx.FarePremium {
		return sar(0)
	}
	return m.Price
}

func (s *Sandbox) Meals(ctx context.Context, pnr string) ([]contractx.Meal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return nil, err
	}
	out := make([]contractx.Meal, 0, len(s.fx.meals))
	for _, m := range s.fx.meals {
		m.Price = mealPrice(m, b.conf.FareFamily)
		m.Dietary = append([]string(nil), m.Dietary...)
		out = append(out, m)
	}
	return out, nil
}

func (s *Sandbox) AddMeal(ctx context.Context, pnr, passengerName, mealCode string) (contractx.AncillaryReceipt, error) {
	if err := ctx.Err(); err != nil {
		return contractx.AncillaryReceipt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return contractx.AncillaryReceipt{}, err
	}
	i, err := b.passenger(passengerName)
	if err != nil {
		return contractx.AncillaryReceipt{}, err
	}
	meal, ok := s.fx.meal(mealCode)
	if !ok {
		return contractx.AncillaryReceipt{}, contractx.NotFound("Meal %s is not on the menu.", strings.ToUpper(mealCode))
	}
	p := &b.conf.Passengers[i]
	for _, code := range p.Meals {
		if code == meal.Code {
			return contractx.AncillaryReceipt{}, contractx.Rejected("%s already has the %s.", p.FullName(), meal.Name)
		}
	}

	price := mealPrice(meal, b.conf.FareFamily)
	p.Meals = append(p.Meals, meal.Code)
	b.conf.TotalPrice = b.conf.TotalPrice.Add(price)

	return contractx.AncillaryReceipt{
		PNR:           b.conf.PNR,
		PassengerName: p.FullName(),
		Item:          meal.Code,
		Description:   meal.Name,
		Price:         price,
	}, nil
}

func (s *Sandbox) AddBaggage(ctx context.Context, pnr, passengerName string, weightKg int) (contractx.AncillaryReceipt, error) {
	if err := ctx.Err(); err != nil {
		return contractx.AncillaryReceipt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return contractx.AncillaryReceipt{}, err
	}
	i, err := b.passenger(passengerName)
	if err != nil {
		return contractx.AncillaryReceipt{}, err
	}
	amount, ok := baggagePrices[weightKg]
	if !ok {
		return contractx.AncillaryReceipt{}, contractx.Rejected("Extra baggage is sold in 20, 25 or 30 kg pieces.")
	}

	p := &b.conf.Passengers[i]
	p.BaggageKg += weightKg
	price := sar(amount)
	b.conf.TotalPrice = b.conf.TotalPrice.Add(price)

	return contractx.AncillaryReceipt{
		PNR:           b.conf.PNR,
		PassengerName: p.FullName(),
		Item:          fmt.Sprintf("BAG%d", weightKg),
		Description:   fmt.Sprintf("Extra checked bag (%d kg)", weightKg),
		Price:         price,
	}, nil
}
