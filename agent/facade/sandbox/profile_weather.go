package sandbox

import (
	"context"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

func (s *Sandbox) Travelers(ctx context.Context, userID string) ([]contractx.SavedTraveler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	list := s.fx.travelers[strings.TrimSpace(userID)]
	out := make([]contractx.SavedTraveler, len(list))
	copy(out, list)
	return out, nil
}

// ForCities reads the month's climate normal for each code and jitters the
// temperature by up to two degrees, keyed on code and date.
func (s *Sandbox) ForCities(ctx context.Context, codes []string, date time.Time) (map[string]contractx.WeatherReading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	month := int(date.In(s.loc).Month()) - 1
	day := date.In(s.loc).Format(contractx.DateLayout)

	out := make(map[string]contractx.WeatherReading, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		c, ok := s.fx.climate[code]
		a, known := s.fx.airports[code]
		if !ok || !known || month >= len(c.Temps) || month >= len(c.Conditions) {
			continue
		}
		jitter := float64(int(hash(code, day)%5) - 2)
		out[code] = contractx.WeatherReading{
			City:         a.City,
			TemperatureC: c.Temps[month] + jitter,
			Condition:    c.Conditions[month],
			Description:  describeWeather(c.Conditions[month], c.Temps[month]+jitter),
		}
	}
	return out, nil
}

func describeWeather(condition string, temp float64) string {
	feel := "mild"
	switch {
	case temp >= 35:
		feel = "very hot"
	case temp >= 28:
		feel = "hot"
	case temp < 5:
		feel = "freezing"
	case temp < 15:
		feel = "cold"
	}
	return feel + " and " + strings.ToLower(condition)
}
