package sandbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

const (
	boardingLead = 40 * time.Minute
	infantSeat   = "INF"
)

func boardingGroup(f contractx.FareFamily) string {
	switch f {
	case contractx.FarePremium:
		return "1"
	case contractx.FarePlus:
		return "3"
	default:
		return "5"
	}
}

func gate(key string) string {
	h := hash(key, "gate")
	return fmt.Sprintf("%c%d", 'A'+rune(h%4), 1+(h/4)%30)
}

func (s *Sandbox) CheckIn(ctx context.Context, pnr, passengerName string) ([]contractx.BoardingPass, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return nil, err
	}

	departure := b.conf.Flight.DepartureTime
	now := s.clock()
	if opens := departure.Add(-CheckInOpensAt); now.Before(opens) {
		return nil, contractx.Rejected("Check-in for flight %s opens on %s.",
			b.conf.Flight.FlightNumber, opens.Format("Mon 2 Jan at 15:04"))
	}
	if now.After(departure.Add(-CheckInClosesAt)) {
		return nil, contractx.Rejected("Check-in for flight %s has closed.", b.conf.Flight.FlightNumber)
	}

	var targets []int
	if strings.TrimSpace(passengerName) != "" {
		i, err := b.passenger(passengerName)
		if err != nil {
			return nil, err
		}
		targets = []int{i}
	} else {
		for i := range b.conf.Passengers {
			targets = append(targets, i)
		}
	}

	key := flightKey(b.conf.Flight)
	passes := make([]contractx.BoardingPass, 0, len(targets))
	for _, i := range targets {
		p := &b.conf.Passengers[i]
		if !p.CheckedIn {
			if p.Seat == "" && p.Type != contractx.PassengerInfant {
				if _, err := s.seatPassenger(b, i, "", contractx.PreferAny, false); err != nil {
					return nil, err
				}
			}
			p.CheckedIn = true
			p.BoardingGroup = boardingGroup(b.conf.FareFamily)
			s.sequence[key]++
			b.sequence[p.FullName()] = s.sequence[key]
		}
		passes = append(passes, s.pass(b, *p))
	}
	return passes, nil
}

func (s *Sandbox) pass(b *booking, p contractx.BookedPassenger) contractx.BoardingPass {
	f := b.conf.Flight
	seat := p.Seat
	if p.Type == contractx.PassengerInfant {
		seat = infantSeat
	}
	seq := b.sequence[p.FullName()]
	return contractx.BoardingPass{
		PNR:           b.conf.PNR,
		PassengerName: p.FullName(),
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		Seat:          seat,
		BoardingGroup: p.BoardingGroup,
		Gate:          gate(flightKey(f)),
		BoardingTime:  f.DepartureTime.Add(-boardingLead),
		Sequence:      seq,
		Barcode: strings.ToUpper(fmt.Sprintf("M1%s/%s %s %s%s %s %s %03d",
			p.LastName, p.FirstName, b.conf.PNR, f.Origin, f.Destination,
			f.FlightNumber, f.DepartureTime.Format("0102"), seq)),
	}
}

func (s *Sandbox) BoardingPass(ctx context.Context, pnr, passengerName string) (contractx.BoardingPass, error) {
	if err := ctx.Err(); err != nil {
		return contractx.BoardingPass{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.active(pnr)
	if err != nil {
		return contractx.BoardingPass{}, err
	}
	i, err := b.passenger(passengerName)
	if err != nil {
		return contractx.BoardingPass{}, err
	}
	p := b.conf.Passengers[i]
	if !p.CheckedIn {
		return contractx.BoardingPass{}, contractx.Rejected("%s has not checked in yet.", p.FullName())
	}
	return s.pass(b, p), nil
}
