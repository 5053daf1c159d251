// Package sandbox implements every downstream capability in memory. Fares,
// seat occupancy and weather are derived deterministically from embedded
// fixtures so a conversation replays identically. Bookings and searches live
// only as long as the process.
package sandbox

import (
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

const (
	Currency          = "SAR"
	DefaultSearchTTL  = 30 * time.Minute
	CheckInOpensAt    = 48 * time.Hour
	CheckInClosesAt   = time.Hour
	flightNumberBase  = 100
	flightsPerRoute   = 10
	airlineDesignator = "SV"
)

type Option func(*Sandbox)

func WithClock(now func() time.Time) Option {
	return func(s *Sandbox) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the timezone departure times are expressed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Sandbox) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithSearchTTL(ttl time.Duration) Option {
	return func(s *Sandbox) {
		if ttl > 0 {
			s.searchTTL = ttl
		}
	}
}

// Sandbox is safe for concurrent use.
type Sandbox struct {
	mu        sync.Mutex
	fx        *fixtures
	now       func() time.Time
	loc       *time.Location
	searchTTL time.Duration

	searches map[string]contractx.SearchResult
	bookings map[string]*booking
	// seats taken by sandbox bookings, keyed by flight key then seat.
	occupied map[string]map[string]string
	// booked passengers holding a seat per flight key.
	held map[string]int
	// check-in sequence counters per flight key.
	sequence map[string]int
}

func New(opts ...Option) (*Sandbox, error) {
	fx, err := loadFixtures()
	if err != nil {
		return nil, err
	}
	s := &Sandbox{
		fx:        fx,
		now:       time.Now,
		loc:       time.UTC,
		searchTTL: DefaultSearchTTL,
		searches:  map[string]contractx.SearchResult{},
		bookings:  map[string]*booking{},
		occupied:  map[string]map[string]string{},
		held:      map[string]int{},
		sequence:  map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func MustNew(opts ...Option) *Sandbox {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Facades exposes the sandbox as every capability.
func (s *Sandbox) Facades() contractx.Facades {
	return contractx.Facades{
		Search:    s,
		Booking:   s,
		Manage:    s,
		Ancillary: s,
		CheckIn:   s,
		Profile:   s,
		Weather:   s,
	}
}

func (s *Sandbox) clock() time.Time {
	return s.now().In(s.loc)
}

func hash(parts ...string) uint32 {
	h := fnv.New32a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum32()
}

func roundSAR(v float64) float64 {
	return math.Round(v)
}

func sar(v float64) contractx.Money {
	return contractx.Money{Amount: roundSAR(v), Currency: Currency}
}

func flightNumber(routeIndex, slot int) string {
	return airlineDesignator + strconv.Itoa(flightNumberBase+routeIndex*flightsPerRoute+slot)
}

// parseFlightNumber reverses flightNumber.
func parseFlightNumber(number string) (routeIndex, slot int, ok bool) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if !strings.HasPrefix(number, airlineDesignator) {
		return 0, 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(number, airlineDesignator))
	if err != nil || n < flightNumberBase {
		return 0, 0, false
	}
	n -= flightNumberBase
	return n / flightsPerRoute, n % flightsPerRoute, true
}

// flightKey identifies one departure of one flight number.
func flightKey(f contractx.Flight) string {
	return f.FlightNumber + "/" + f.DepartureTime.Format(contractx.DateLayout)
}

// buildFlight prices one departure. Each fare family is a fixed multiple of a
// basic fare that varies by route, date and slot.
func (s *Sandbox) buildFlight(r route, slot int, date time.Time) (contractx.Flight, bool) {
	if slot < 0 || slot >= len(r.Departures) {
		return contractx.Flight{}, false
	}
	dep, err := time.ParseInLocation("15:04", r.Departures[slot], s.loc)
	if err != nil {
		return contractx.Flight{}, false
	}
	y, m, d := date.Date()
	departure := time.Date(y, m, d, dep.Hour(), dep.Minute(), 0, 0, s.loc)
	number := flightNumber(r.Index, slot)
	day := departure.Format(contractx.DateLayout)

	factor := 0.85 + float64(hash(number, day)%41)/100
	basic := roundSAR(r.BaseFare * factor)

	f := contractx.Flight{
		FlightNumber:    number,
		Origin:          r.Origin,
		Destination:     r.Destination,
		DepartureTime:   departure,
		ArrivalTime:     departure.Add(time.Duration(r.DurationMinutes) * time.Minute),
		DurationMinutes: r.DurationMinutes,
		SeatsAvailable:  9 + int(hash(number, day, "seats")%120),
		Fares: []contractx.FareOption{
			{Family: contractx.FareBasic, Price: sar(basic), BaggageKg: 0, ChangeFee: sar(300)},
			{Family: contractx.FarePlus, Price: sar(basic * 1.35), BaggageKg: 25, ChangeFee: sar(150)},
			{Family: contractx.FarePremium, Price: sar(basic * 2.1), BaggageKg: 30, ChangeFee: sar(0), Refundable: true},
		},
	}
	f.SeatsAvailable -= s.held[flightKey(f)]
	if f.SeatsAvailable < 0 {
		f.SeatsAvailable = 0
	}
	return f, true
}

// flightOn regenerates a flight from its number for a given day.
func (s *Sandbox) flightOn(number string, date time.Time) (contractx.Flight, bool) {
	idx, slot, ok := parseFlightNumber(number)
	if !ok || idx >= len(s.fx.byIndex) {
		return contractx.Flight{}, false
	}
	return s.buildFlight(s.fx.byIndex[idx], slot, date)
}

// findFlight resolves a flight number, preferring the most recent live search
// that listed it and falling back to the same day as near.
func (s *Sandbox) findFlight(number string, near time.Time) (contractx.Flight, bool) {
	now := s.clock()
	var (
		found  contractx.Flight
		latest time.Time
		ok     bool
	)
	for _, res := range s.searches {
		if now.After(res.ExpiresAt) {
			continue
		}
		if f, hit := res.Flight(number); hit && res.ExpiresAt.After(latest) {
			found, latest, ok = f, res.ExpiresAt, true
		}
	}
	if ok {
		return found, true
	}
	return s.flightOn(number, near)
}

func newSearchID() string {
	return uuid.NewString()
}

// newPNR draws six characters from an alphabet without 0/O and 1/I.
func (s *Sandbox) newPNR() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	for {
		id := uuid.New()
		var b strings.Builder
		for i := 0; i < 6; i++ {
			b.WriteByte(alphabet[int(id[i])%len(alphabet)])
		}
		pnr := b.String()
		if _, taken := s.bookings[pnr]; !taken {
			return pnr
		}
	}
}

func notFoundBooking(pnr string) error {
	return contractx.NotFound("No booking found with reference %s.", pnr)
}
