package tool

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

const (
	defaultFanout = 4
	// cheapestWindowDays caps how many departure dates one cheapest-flight
	// lookup may scan.
	cheapestWindowDays = 14
)

var weatherPreferences = []string{"sunny", "warm", "mild", "cold", "snowy", "any"}

var travelTypes = []string{"beach", "city", "culture", "family", "adventure", "shopping", "nature", "any"}

func (h *handlers) weatherDestinations(ctx context.Context, inv Invocation) (Outcome, error) {
	origin := inv.Args.String("origin")
	if origin == "" {
		return Outcome{}, contractx.OriginRequired()
	}
	routes, airports, err := h.routesFrom(ctx, origin)
	if err != nil {
		return Outcome{}, err
	}

	date := startOfDay(inv.Now).AddDate(0, 0, 1)
	codes := make([]string, 0, len(routes))
	for _, r := range routes {
		codes = append(codes, r.Destination)
	}
	readings, err := h.f.Weather.ForCities(ctx, codes, date)
	if err != nil {
		return Outcome{}, err
	}

	pref := inv.Args.String("weather_preference")
	suggestions := make([]contractx.DestinationSuggestion, 0, len(codes))
	for _, code := range codes {
		reading, ok := readings[code]
		if !ok || !matchesWeather(pref, reading) {
			continue
		}
		s := suggestionFor(code, airports)
		s.Weather = &reading
		suggestions = append(suggestions, s)
	}
	sortByWeather(pref, suggestions)
	suggestions = limit(suggestions, inv.Args.Int("max_results"))
	h.attachFares(ctx, origin, date, suggestions)

	return Outcome{
		Payload: map[string]any{
			"origin":       origin,
			"preference":   pref,
			"date":         formatDate(date),
			"destinations": suggestions,
			"count":        len(suggestions),
		},
		Context: discoverUpdate(inv.Context, origin),
	}, nil
}

func (h *handlers) cheapestFlights(ctx context.Context, inv Invocation) (Outcome, error) {
	origin := inv.Args.String("origin")
	if origin == "" {
		return Outcome{}, contractx.OriginRequired()
	}
	routes, airports, err := h.routesFrom(ctx, origin)
	if err != nil {
		return Outcome{}, err
	}

	from := inv.Args.Date("date_from")
	to := from.AddDate(0, 0, 6)
	if inv.Args.Has("date_to") {
		to = inv.Args.Date("date_to")
	}
	if to.Before(from) {
		to = from
	}
	if last := from.AddDate(0, 0, cheapestWindowDays-1); to.After(last) {
		to = last
	}

	type job struct {
		dest string
		date time.Time
	}
	var jobs []job
	for _, r := range routes {
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			jobs = append(jobs, job{dest: r.Destination, date: d})
		}
	}

	p := pool.NewWithResults[fareQuote]().WithContext(ctx).WithMaxGoroutines(h.workers())
	for _, j := range jobs {
		p.Go(func(ctx context.Context) (fareQuote, error) {
			return h.quote(ctx, origin, j.dest, j.date), nil
		})
	}
	quotes, err := p.Wait()
	if err != nil {
		return Outcome{}, err
	}

	best := make(map[string]fareQuote, len(routes))
	for _, q := range quotes {
		if q.price == nil {
			continue
		}
		cur, ok := best[q.code]
		if !ok || q.price.Amount < cur.price.Amount ||
			(q.price.Amount == cur.price.Amount && q.date.Before(cur.date)) {
			best[q.code] = q
		}
	}

	suggestions := make([]contractx.DestinationSuggestion, 0, len(best))
	for code, q := range best {
		s := suggestionFor(code, airports)
		q.apply(&s)
		suggestions = append(suggestions, s)
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.LowestFare.Amount != b.LowestFare.Amount {
			return a.LowestFare.Amount < b.LowestFare.Amount
		}
		return a.Code < b.Code
	})
	suggestions = limit(suggestions, inv.Args.Int("max_results"))

	return Outcome{
		Payload: map[string]any{
			"origin":       origin,
			"dateFrom":     formatDate(from),
			"dateTo":       formatDate(to),
			"destinations": suggestions,
			"count":        len(suggestions),
		},
		Context: discoverUpdate(inv.Context, origin),
	}, nil
}

func (h *handlers) popularDestinations(ctx context.Context, inv Invocation) (Outcome, error) {
	origin := inv.Args.String("origin")
	if origin == "" {
		return Outcome{}, contractx.OriginRequired()
	}
	routes, airports, err := h.routesFrom(ctx, origin)
	if err != nil {
		return Outcome{}, err
	}

	travelType := inv.Args.String("travel_type")
	suggestions := make([]contractx.DestinationSuggestion, 0, len(routes))
	for _, r := range routes {
		a, ok := airports[r.Destination]
		if !ok {
			continue
		}
		if travelType != "any" && !a.HasTag(travelType) {
			continue
		}
		suggestions = append(suggestions, suggestionFor(r.Destination, airports))
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Popularity != suggestions[j].Popularity {
			return suggestions[i].Popularity > suggestions[j].Popularity
		}
		return suggestions[i].Code < suggestions[j].Code
	})
	suggestions = limit(suggestions, inv.Args.Int("max_results"))
	h.attachFares(ctx, origin, startOfDay(inv.Now).AddDate(0, 0, 1), suggestions)

	return Outcome{
		Payload: map[string]any{
			"origin":       origin,
			"travelType":   travelType,
			"destinations": suggestions,
			"count":        len(suggestions),
		},
		Context: discoverUpdate(inv.Context, origin),
	}, nil
}

func (h *handlers) routesFrom(ctx context.Context, origin string) ([]contractx.Route, map[string]contractx.Airport, error) {
	rm, err := h.f.Search.RouteMap(ctx)
	if err != nil {
		return nil, nil, err
	}
	return rm.Destinations(origin), rm.Airports, nil
}

func (h *handlers) workers() int {
	if h.fanout > 0 {
		return h.fanout
	}
	return defaultFanout
}

type fareQuote struct {
	code   string
	date   time.Time
	flight string
	price  *contractx.Money
}

func (q fareQuote) apply(s *contractx.DestinationSuggestion) {
	if q.price == nil {
		return
	}
	s.LowestFare = q.price
	s.FareDate = formatDate(q.date)
	s.FlightNumber = q.flight
}

// quote returns the cheapest single-passenger fare on one day. A failed search
// yields an empty quote: a missing price must not sink the whole suggestion list.
func (h *handlers) quote(ctx context.Context, origin, dest string, date time.Time) fareQuote {
	q := fareQuote{code: dest, date: date}
	res, err := h.f.Search.Search(ctx, contractx.SearchQuery{
		Origin:      origin,
		Destination: dest,
		Date:        date,
		Passengers:  1,
	})
	if err != nil {
		return q
	}
	for _, f := range res.Flights {
		fo, ok := f.LowestFare()
		if !ok {
			continue
		}
		if q.price == nil || fo.Price.Amount < q.price.Amount {
			price := fo.Price
			q.price, q.flight = &price, f.FlightNumber
		}
	}
	return q
}

// attachFares looks up tomorrow's lowest fare for every suggestion in parallel.
func (h *handlers) attachFares(ctx context.Context, origin string, date time.Time, suggestions []contractx.DestinationSuggestion) {
	if len(suggestions) == 0 {
		return
	}
	p := pool.NewWithResults[fareQuote]().WithContext(ctx).WithMaxGoroutines(h.workers())
	for _, s := range suggestions {
		p.Go(func(ctx context.Context) (fareQuote, error) {
			return h.quote(ctx, origin, s.Code, date), nil
		})
	}
	quotes, _ := p.Wait()
	byCode := make(map[string]fareQuote, len(quotes))
	for _, q := range quotes {
		byCode[q.code] = q
	}
	for i := range suggestions {
		byCode[suggestions[i].Code].apply(&suggestions[i])
	}
}

func suggestionFor(code string, airports map[string]contractx.Airport) contractx.DestinationSuggestion {
	a, ok := airports[code]
	if !ok {
		return contractx.DestinationSuggestion{Code: code}
	}
	return contractx.DestinationSuggestion{
		Code:       a.Code,
		City:       a.City,
		Country:    a.Country,
		Tags:       a.Tags,
		Popularity: a.Popularity,
	}
}

func matchesWeather(pref string, r contractx.WeatherReading) bool {
	cond := strings.ToLower(r.Condition)
	switch pref {
	case "sunny":
		return cond == "sunny" || cond == "clear"
	case "warm":
		return r.TemperatureC >= 28
	case "mild":
		return r.TemperatureC >= 18 && r.TemperatureC < 28
	case "cold":
		return r.TemperatureC < 15
	case "snowy":
		return cond == "snowy" || r.TemperatureC <= 0
	default:
		return true
	}
}

func sortByWeather(pref string, s []contractx.DestinationSuggestion) {
	key := func(d contractx.DestinationSuggestion) float64 {
		t := d.Weather.TemperatureC
		switch pref {
		case "sunny", "warm":
			return -t
		case "mild":
			return math.Abs(t - 22)
		case "cold", "snowy":
			return t
		default:
			return -float64(d.Popularity)
		}
	}
	sort.SliceStable(s, func(i, j int) bool {
		ki, kj := key(s[i]), key(s[j])
		if ki != kj {
			return ki < kj
		}
		return s[i].Code < s[j].Code
	})
}

func limit[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}

func discoverUpdate(c statex.ConversationContext, origin string) *statex.ContextUpdate {
	u := &statex.ContextUpdate{CurrentScreen: statex.Str(screenDiscover)}
	if c.UserOriginAirport == "" {
		u.UserOriginAirport = statex.Str(origin)
	}
	return u
}
