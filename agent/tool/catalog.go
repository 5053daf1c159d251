package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
)

// Name is a tool identifier from the closed catalog.
type Name string

const (
	SearchFlights           Name = "search_flights"
	SelectFlight            Name = "select_flight"
	GetSavedTravelers       Name = "get_saved_travelers"
	CreateBooking           Name = "create_booking"
	GetBooking              Name = "get_booking"
	CancelSpecificPassenger Name = "cancel_specific_passenger"
	CalculateChangeFees     Name = "calculate_change_fees"
	ChangeFlight            Name = "change_flight"
	GetSeatMap              Name = "get_seat_map"
	ChangeSeat              Name = "change_seat"
	GetAvailableMeals       Name = "get_available_meals"
	AddMeal                 Name = "add_meal"
	AddBaggage              Name = "add_baggage"
	CheckIn                 Name = "check_in"
	GetBoardingPass         Name = "get_boarding_pass"
	FindWeatherDestinations Name = "find_weather_destinations"
	FindCheapestFlights     Name = "find_cheapest_flights"
	GetPopularDestinations  Name = "get_popular_destinations"
)

// AllNames lists the catalog in presentation order.
var AllNames = []Name{
	SearchFlights,
	SelectFlight,
	GetSavedTravelers,
	CreateBooking,
	GetBooking,
	CancelSpecificPassenger,
	CalculateChangeFees,
	ChangeFlight,
	GetSeatMap,
	ChangeSeat,
	GetAvailableMeals,
	AddMeal,
	AddBaggage,
	CheckIn,
	GetBoardingPass,
	FindWeatherDestinations,
	FindCheapestFlights,
	GetPopularDestinations,
}

// Invocation is what a handler receives once arguments are extracted.
type Invocation struct {
	Tool    Name
	Args    Args
	Context statex.ConversationContext
	Now     time.Time
}

// Outcome is a handler's success value. Context, when set, is the pointer
// update the caller should persist for the next turn.
type Outcome struct {
	Payload map[string]any
	Context *statex.ContextUpdate
}

type (
	Handler func(ctx context.Context, inv Invocation) (Outcome, error)
	// Guard checks a cross-turn precondition before arguments are extracted.
	Guard func(c statex.ConversationContext) error
)

type Definition struct {
	Name        Name
	Description string
	Spec        ArgumentSpec
	UIHint      contractx.UIHint
	Guard       Guard
	Handler     Handler
}

// Registry is the read-only tool table. It has no mutators; build a new one
// to change the catalog.
type Registry struct {
	defs  map[Name]Definition
	order []Name
}

// NewRegistry fails unless every catalog name has exactly one definition with
// a handler and a UI hint.
func NewRegistry(defs ...Definition) (*Registry, error) {
	known := make(map[Name]struct{}, len(AllNames))
	for _, n := range AllNames {
		known[n] = struct{}{}
	}

	r := &Registry{defs: make(map[Name]Definition, len(defs))}
	for _, d := range defs {
		if _, ok := known[d.Name]; !ok {
			return nil, fmt.Errorf("%w: %q is not in the catalog", contractx.ErrValidation, d.Name)
		}
		if _, dup := r.defs[d.Name]; dup {
			return nil, fmt.Errorf("%w: %q registered twice", contractx.ErrValidation, d.Name)
		}
		if d.Handler == nil {
			return nil, fmt.Errorf("%w: %q has no handler", contractx.ErrValidation, d.Name)
		}
		if d.UIHint == "" {
			return nil, fmt.Errorf("%w: %q has no ui hint", contractx.ErrValidation, d.Name)
		}
		r.defs[d.Name] = d
	}
	for _, n := range AllNames {
		if _, ok := r.defs[n]; !ok {
			return nil, fmt.Errorf("%w: %q has no definition", contractx.ErrValidation, n)
		}
		r.order = append(r.order, n)
	}
	return r, nil
}

func MustNewRegistry(defs ...Definition) *Registry {
	r, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[Name(name)]
	return d, ok
}

// Definitions returns the definitions in catalog order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.defs[n])
	}
	return out
}

// ToolInfos describes the catalog for eino chat models.
func (r *Registry) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, d := range r.Definitions() {
		infos = append(infos, &schema.ToolInfo{
			Name:        string(d.Name),
			Desc:        d.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(paramInfos(d.Spec)),
		})
	}
	return infos
}

// JSONSchema returns the JSON Schema object for a tool's arguments.
func (d Definition) JSONSchema() map[string]any {
	return objectSchema(d.Spec)
}

func paramInfos(spec ArgumentSpec) map[string]*schema.ParameterInfo {
	params := make(map[string]*schema.ParameterInfo, len(spec))
	for _, f := range spec {
		params[f.Name] = paramInfo(f)
	}
	return params
}

// Fields that can fall back to context or a default are never required from
// the model's point of view.
func plannerRequired(f FieldSpec) bool {
	return f.IsRequired && f.Context == "" && f.Default.Source == DefaultNone
}

func paramInfo(f FieldSpec) *schema.ParameterInfo {
	p := &schema.ParameterInfo{Desc: f.Description, Required: plannerRequired(f)}
	switch f.Kind {
	case KindInt:
		p.Type = schema.Integer
	case KindEnum:
		p.Type = schema.String
		p.Enum = f.Variants
	case KindArray:
		p.Type = schema.Array
		p.ElemInfo = &schema.ParameterInfo{Type: schema.Object, SubParams: paramInfos(f.Elem)}
	case KindObject:
		p.Type = schema.Object
		p.SubParams = paramInfos(f.Elem)
	default:
		p.Type = schema.String
	}
	return p
}

func objectSchema(spec ArgumentSpec) map[string]any {
	props := make(map[string]any, len(spec))
	required := []string{}
	for _, f := range spec {
		props[f.Name] = fieldSchema(f)
		if plannerRequired(f) {
			required = append(required, f.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func fieldSchema(f FieldSpec) map[string]any {
	s := map[string]any{}
	if f.Description != "" {
		s["description"] = f.Description
	}
	switch f.Kind {
	case KindInt:
		s["type"] = "integer"
		if len(f.Allowed) > 0 {
			s["enum"] = f.Allowed
		} else if f.hasRange() {
			s["minimum"], s["maximum"] = f.Min, f.Max
		}
	case KindEnum:
		s["type"] = "string"
		s["enum"] = f.Variants
	case KindArray:
		s["type"] = "array"
		s["items"] = objectSchema(f.Elem)
		if f.MaxItems > 0 {
			s["maxItems"] = f.MaxItems
		}
	case KindObject:
		for k, v := range objectSchema(f.Elem) {
			s[k] = v
		}
	default:
		s["type"] = "string"
	}
	return s
}
