package tool

import (
	"context"
	"testing"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

func suggestions(t *testing.T, res contractx.ToolResult) []contractx.DestinationSuggestion {
	t.Helper()
	if res.IsError {
		t.Fatalf("unexpected error: %v", res.Payload)
	}
	out, ok := res.Payload["destinations"].([]contractx.DestinationSuggestion)
	if !ok {
		t.Fatalf("unexpected destinations type %T", res.Payload["destinations"])
	}
	return out
}

func TestWeatherDestinations(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, newFakeFacades())
	c := statex.ConversationContext{UserOriginAirport: "RUH"}

	res := d.Dispatch(context.Background(), call("find_weather_destinations", `{"weather_preference":"Sunny"}`, c))
	got := suggestions(t, res)
	if res.UIHint != contractx.UIDestinationSuggestion {
		t.Fatalf("unexpected hint: %s", res.UIHint)
	}
	if len(got) != 2 || got[0].Code != "DXB" || got[1].Code != "JED" {
		t.Fatalf("sunny destinations should be DXB then JED, got %+v", got)
	}
	for _, s := range got {
		if s.Weather == nil || s.LowestFare == nil || s.FlightNumber == "" {
			t.Fatalf("suggestion not enriched: %+v", s)
		}
	}

	res = d.Dispatch(context.Background(), call("find_weather_destinations", `{"weather_preference":"mild","max_results":1}`, c))
	got = suggestions(t, res)
	if len(got) != 1 || got[0].Code != "AHB" {
		t.Fatalf("mild should be AHB, got %+v", got)
	}

	res = d.Dispatch(context.Background(), call("find_weather_destinations", `{"weather_preference":"tropical storm","max_results":2}`, c))
	got = suggestions(t, res)
	if len(got) != 2 || got[0].Code != "DXB" {
		t.Fatalf("unknown preference should behave as any ordered by popularity, got %+v", got)
	}
}

func TestCheapestFlights(t *testing.T) {
	t.Parallel()

	f := newFakeFacades()
	d := newTestDispatcher(t, f)

	res := d.Dispatch(context.Background(), call("find_cheapest_flights",
		`{"origin":"ruh","date_from":"2025-06-11","date_to":"2025-06-13"}`, statex.ConversationContext{}))
	got := suggestions(t, res)
	if res.UIHint != contractx.UICheapestFlights {
		t.Fatalf("unexpected hint: %s", res.UIHint)
	}
	if res.Payload["dateFrom"] != "2025-06-11" || res.Payload["dateTo"] != "2025-06-13" {
		t.Fatalf("unexpected window: %v..%v", res.Payload["dateFrom"], res.Payload["dateTo"])
	}
	if len(got) != 3 || got[0].Code != "AHB" || got[2].Code != "DXB" {
		t.Fatalf("unexpected order: %+v", got)
	}
	// The fake discounts by day of month modulo 7, so the 13th is cheapest.
	if got[0].FareDate != "2025-06-13" || got[0].LowestFare.Amount != 294 {
		t.Fatalf("unexpected cheapest fare: %+v", got[0])
	}
	if calls := f.searchCalls.Load(); calls != 9 {
		t.Fatalf("expected 3 routes x 3 days = 9 searches, got %d", calls)
	}

	res = d.Dispatch(context.Background(), call("find_cheapest_flights",
		`{"origin":"RUH","date_from":"2025-07-01","date_to":"2025-09-01"}`, statex.ConversationContext{}))
	suggestions(t, res)
	if res.Payload["dateTo"] != "2025-07-14" {
		t.Fatalf("window should be capped at 14 days, got %v", res.Payload["dateTo"])
	}

	res = d.Dispatch(context.Background(), call("find_cheapest_flights", `{"origin":"RUH"}`, statex.ConversationContext{}))
	suggestions(t, res)
	if res.Payload["dateFrom"] != "2025-06-11" || res.Payload["dateTo"] != "2025-06-17" {
		t.Fatalf("default window should be tomorrow plus six days, got %v..%v", res.Payload["dateFrom"], res.Payload["dateTo"])
	}
}

func TestPopularDestinations(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, newFakeFacades())
	c := statex.ConversationContext{UserOriginAirport: "RUH"}

	res := d.Dispatch(context.Background(), call("get_popular_destinations", `{}`, c))
	got := suggestions(t, res)
	if len(got) != 3 || got[0].Code != "DXB" || got[1].Code != "JED" || got[2].Code != "AHB" {
		t.Fatalf("unexpected popularity order: %+v", got)
	}

	res = d.Dispatch(context.Background(), call("get_popular_destinations", `{"travel_type":"BEACH"}`, c))
	got = suggestions(t, res)
	if len(got) != 1 || got[0].Code != "JED" {
		t.Fatalf("beach should only match JED, got %+v", got)
	}
	if next := c.Apply(res.ContextUpdate); next.CurrentScreen != screenDiscover || next.UserOriginAirport != "RUH" {
		t.Fatalf("unexpected context: %+v", next)
	}

	res = d.Dispatch(context.Background(), call("get_popular_destinations", `{"origin":"XXX"}`, c))
	if got := suggestions(t, res); len(got) != 0 {
		t.Fatalf("an origin without routes yields no suggestions, got %+v", got)
	}
}
