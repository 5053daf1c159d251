package sandbox

import (
	"context"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

func (s *Sandbox) Search(ctx context.Context, q contractx.SearchQuery) (contractx.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return contractx.SearchResult{}, err
	}
	origin := strings.ToUpper(strings.TrimSpace(q.Origin))
	dest := strings.ToUpper(strings.TrimSpace(q.Destination))

	if _, ok := s.fx.airports[origin]; !ok {
		return contractx.SearchResult{}, contractx.NotFound("We don't fly from %s.", origin)
	}
	if _, ok := s.fx.airports[dest]; !ok {
		return contractx.SearchResult{}, contractx.NotFound("We don't fly to %s.", dest)
	}
	if origin == dest {
		return contractx.SearchResult{}, contractx.Rejected("Origin and destination must be different.")
	}
	if q.Passengers < 1 || q.Passengers > 9 {
		return contractx.SearchResult{}, contractx.Rejected("A booking can include 1 to 9 passengers.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	today := now.Format(contractx.DateLayout)
	day := q.Date.In(s.loc)
	if day.Format(contractx.DateLayout) < today {
		return contractx.SearchResult{}, contractx.Rejected("Flights can't be searched for a date in the past.")
	}

	flights := []contractx.Flight{}
	if r, ok := s.fx.route(origin, dest); ok {
		for slot := range r.Departures {
			f, ok := s.buildFlight(r, slot, day)
			if !ok || !f.DepartureTime.After(now) || f.SeatsAvailable < q.Passengers {
				continue
			}
			flights = append(flights, f)
		}
	}

	res := contractx.SearchResult{
		SearchID:    newSearchID(),
		Origin:      origin,
		Destination: dest,
		Date:        day.Format(contractx.DateLayout),
		Passengers:  q.Passengers,
		Flights:     flights,
		ExpiresAt:   now.Add(s.searchTTL),
	}
	s.searches[res.SearchID] = res
	s.pruneSearches(now)
	return res, nil
}

func (s *Sandbox) Lookup(ctx context.Context, searchID string) (contractx.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return contractx.SearchResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(searchID)
}

func (s *Sandbox) lookup(searchID string) (contractx.SearchResult, error) {
	res, ok := s.searches[searchID]
	if !ok {
		return contractx.SearchResult{}, contractx.SearchNotFound(searchID)
	}
	if s.clock().After(res.ExpiresAt) {
		return contractx.SearchResult{}, contractx.SearchExpired(searchID)
	}
	return res, nil
}

func (s *Sandbox) RouteMap(ctx context.Context) (contractx.RouteMap, error) {
	if err := ctx.Err(); err != nil {
		return contractx.RouteMap{}, err
	}
	return s.fx.routeMap(), nil
}

// pruneSearches drops searches that expired more than one TTL ago. Recently
// expired ids are kept so callers get ErrSearchExpired rather than not found.
func (s *Sandbox) pruneSearches(now time.Time) {
	for id, res := range s.searches {
		if now.Sub(res.ExpiresAt) > s.searchTTL {
			delete(s.searches, id)
		}
	}
}
