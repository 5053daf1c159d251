package tool

import (
	"context"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

func (h *handlers) cancelPassenger(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	result, err := h.f.Manage.CancelPassenger(ctx, pnr, inv.Args.String("passenger_name"))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"cancellation": result},
		Context: pnrUpdate(pnr, screenManageBooking),
	}, nil
}

func (h *handlers) changeFees(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	quote, err := h.f.Manage.CalculateChangeFees(ctx, pnr, inv.Args.String("new_flight_number"))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"quote": quote},
		Context: pnrUpdate(pnr, screenManageBooking),
	}, nil
}

func (h *handlers) changeFlight(ctx context.Context, inv Invocation) (Outcome, error) {
	booking, err := h.f.Manage.ChangeFlight(ctx, contractx.ChangeFlightRequest{
		PNR:             inv.Args.String("pnr"),
		NewFlightNumber: inv.Args.String("new_flight_number"),
		PassengerName:   inv.Args.String("passenger_name"),
	})
	if err != nil {
		return Outcome{}, err
	}
	update := pnrUpdate(booking.PNR, screenConfirmation)
	update.LastFlightNumber = statex.Str(booking.Flight.FlightNumber)
	return Outcome{
		Payload: map[string]any{"booking": booking},
		Context: update,
	}, nil
}

func (h *handlers) seatMap(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	m, err := h.f.Ancillary.SeatMap(ctx, pnr)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"seatMap": m},
		Context: pnrUpdate(pnr, screenSeatSelection),
	}, nil
}

func (h *handlers) changeSeat(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	assignment, err := h.f.Ancillary.AssignSeat(ctx, contractx.SeatRequest{
		PNR:           pnr,
		PassengerName: inv.Args.String("passenger_name"),
		Seat:          inv.Args.String("new_seat"),
		Preference:    contractx.SeatPreference(inv.Args.String("preference")),
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"assignment": assignment},
		Context: pnrUpdate(pnr, screenSeatSelection),
	}, nil
}

func (h *handlers) meals(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	meals, err := h.f.Ancillary.Meals(ctx, pnr)
	if err != nil {
		return Outcome{}, err
	}
	if meals == nil {
		meals = []contractx.Meal{}
	}
	return Outcome{
		Payload: map[string]any{"pnr": pnr, "meals": meals, "count": len(meals)},
		Context: pnrUpdate(pnr, screenAncillaries),
	}, nil
}

func (h *handlers) addMeal(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	receipt, err := h.f.Ancillary.AddMeal(ctx, pnr, inv.Args.String("passenger_name"), inv.Args.String("meal_code"))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"receipt": receipt},
		Context: pnrUpdate(pnr, screenAncillaries),
	}, nil
}

func (h *handlers) addBaggage(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	receipt, err := h.f.Ancillary.AddBaggage(ctx, pnr, inv.Args.String("passenger_name"), inv.Args.Int("weight_kg"))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"receipt": receipt},
		Context: pnrUpdate(pnr, screenAncillaries),
	}, nil
}

func (h *handlers) checkIn(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	passes, err := h.f.CheckIn.CheckIn(ctx, pnr, inv.Args.String("passenger_name"))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"boardingPasses": passes, "count": len(passes)},
		Context: pnrUpdate(pnr, screenBoardingPass),
	}, nil
}

func (h *handlers) boardingPass(ctx context.Context, inv Invocation) (Outcome, error) {
	pnr := inv.Args.String("pnr")
	pass, err := h.f.CheckIn.BoardingPass(ctx, pnr, inv.Args.String("passenger_name"))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Payload: map[string]any{"boardingPasses": []contractx.BoardingPass{pass}, "count": 1},
		Context: pnrUpdate(pnr, screenBoardingPass),
	}, nil
}
