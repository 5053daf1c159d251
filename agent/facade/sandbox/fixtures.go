package sandbox

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var fixtureFS embed.FS

type routeFixture struct {
	Between         []string `yaml:"between"`
	BaseFare        float64  `yaml:"base_fare"`
	DurationMinutes int      `yaml:"duration_minutes"`
	Departures      []string `yaml:"departures"`
}

type climateFixture struct {
	Temps      []float64 `yaml:"temps"`
	Conditions []string  `yaml:"conditions"`
}

type travelerFixture struct {
	ID             string `yaml:"id"`
	Relationship   string `yaml:"relationship"`
	FirstName      string `yaml:"first_name"`
	LastName       string `yaml:"last_name"`
	DateOfBirth    string `yaml:"date_of_birth"`
	Gender         string `yaml:"gender"`
	Nationality    string `yaml:"nationality"`
	Type           string `yaml:"type"`
	DocumentType   string `yaml:"document_type"`
	DocumentNumber string `yaml:"document_number"`
}

// route is one direction of a fixture route. Index is stable across runs and
// is what flight numbers are derived from.
type route struct {
	contractx.Route
	Index      int
	Departures []string
}

type fixtures struct {
	airports  map[string]contractx.Airport
	routes    map[string][]route
	byIndex   []route
	climate   map[string]climateFixture
	meals     []contractx.Meal
	travelers map[string][]contractx.SavedTraveler
}

func loadFixtures() (*fixtures, error) {
	var (
		airports  []contractx.Airport
		routes    []routeFixture
		climate   map[string]climateFixture
		meals     []contractx.Meal
		travelers map[string][]travelerFixture
	)
	for name, dst := range map[string]any{
		"airports.yaml":  &airports,
		"routes.yaml":    &routes,
		"climate.yaml":   &climate,
		"meals.yaml":     &meals,
		"travelers.yaml": &travelers,
	} {
		raw, err := fixtureFS.ReadFile("data/" + name)
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		if err := yaml.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("parse fixture %s: %w", name, err)
		}
	}

	fx := &fixtures{
		airports:  make(map[string]contractx.Airport, len(airports)),
		routes:    map[string][]route{},
		climate:   climate,
		meals:     meals,
		travelers: make(map[string][]contractx.SavedTraveler, len(travelers)),
	}
	for _, a := range airports {
		fx.airports[a.Code] = a
	}

	for _, rf := range routes {
		if len(rf.Between) != 2 {
			return nil, fmt.Errorf("route %v must name exactly two airports", rf.Between)
		}
		for _, pair := range [][2]string{{rf.Between[0], rf.Between[1]}, {rf.Between[1], rf.Between[0]}} {
			for _, code := range pair {
				if _, ok := fx.airports[code]; !ok {
					return nil, fmt.Errorf("route references unknown airport %s", code)
				}
			}
			r := route{
				Route: contractx.Route{
					Origin:          pair[0],
					Destination:     pair[1],
					BaseFare:        rf.BaseFare,
					DurationMinutes: rf.DurationMinutes,
				},
				Index:      len(fx.byIndex),
				Departures: rf.Departures,
			}
			fx.byIndex = append(fx.byIndex, r)
			fx.routes[r.Origin] = append(fx.routes[r.Origin], r)
		}
	}
	for origin := range fx.routes {
		rs := fx.routes[origin]
		sort.Slice(rs, func(i, j int) bool { return rs[i].Destination < rs[j].Destination })
	}

	for user, list := range travelers {
		out := make([]contractx.SavedTraveler, 0, len(list))
		for _, t := range list {
			out = append(out, contractx.SavedTraveler{
				ID:           t.ID,
				Relationship: t.Relationship,
				Passenger: contractx.Passenger{
					FirstName:      t.FirstName,
					LastName:       t.LastName,
					DateOfBirth:    t.DateOfBirth,
					Gender:         contractx.Gender(strings.ToUpper(t.Gender)),
					Nationality:    strings.ToUpper(t.Nationality),
					Type:           contractx.PassengerType(strings.ToUpper(t.Type)),
					DocumentType:   contractx.DocumentType(strings.ToUpper(t.DocumentType)),
					DocumentNumber: t.DocumentNumber,
				},
			})
		}
		fx.travelers[user] = out
	}
	return fx, nil
}

func (fx *fixtures) routeMap() contractx.RouteMap {
	rm := contractx.RouteMap{
		Airports: make(map[string]contractx.Airport, len(fx.airports)),
		Routes:   make(map[string][]contractx.Route, len(fx.routes)),
	}
	for code, a := range fx.airports {
		rm.Airports[code] = a
	}
	for origin, rs := range fx.routes {
		list := make([]contractx.Route, 0, len(rs))
		for _, r := range rs {
			list = append(list, r.Route)
		}
		rm.Routes[origin] = list
	}
	return rm
}

func (fx *fixtures) route(origin, destination string) (route, bool) {
	for _, r := range fx.routes[origin] {
		if r.Destination == destination {
			return r, true
		}
	}
	return route{}, false
}

func (fx *fixtures) meal(code string) (contractx.Meal, bool) {
	for _, m := range fx.meals {
		if strings.EqualFold(m.Code, code) {
			return m, true
		}
	}
	return contractx.Meal{}, false
}
