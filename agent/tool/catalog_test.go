package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

func TestNewCatalogCoversEveryTool(t *testing.T) {
	t.Parallel()

	reg, err := NewCatalog(newFakeFacades().facades())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defs := reg.Definitions()
	if len(defs) != len(AllNames) {
		t.Fatalf("expected %d definitions, got %d", len(AllNames), len(defs))
	}
	for i, d := range defs {
		if d.Name != AllNames[i] {
			t.Fatalf("definition %d is %s, want %s", i, d.Name, AllNames[i])
		}
		if d.UIHint == "" || d.Handler == nil || d.Description == "" {
			t.Fatalf("incomplete definition for %s", d.Name)
		}
	}
	if _, ok := reg.Lookup("unknown_tool_xyz"); ok {
		t.Fatal("lookup of an unknown tool must fail")
	}
}

func TestNewCatalogRequiresFacades(t *testing.T) {
	t.Parallel()

	f := newFakeFacades().facades()
	f.Weather = nil
	if _, err := NewCatalog(f); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRegistryExhaustiveness(t *testing.T) {
	t.Parallel()

	defs := Definitions(newFakeFacades().facades())

	if _, err := NewRegistry(defs[1:]...); err == nil {
		t.Fatal("a missing tool must fail registry construction")
	}
	if _, err := NewRegistry(append(defs, defs[0])...); err == nil {
		t.Fatal("a duplicate tool must fail registry construction")
	}

	stray := Definition{
		Name:    "math.evaluate",
		UIHint:  contractx.UIFlightList,
		Handler: func(context.Context, Invocation) (Outcome, error) { return Outcome{}, nil },
	}
	if _, err := NewRegistry(append(defs, stray)...); err == nil {
		t.Fatal("a name outside the catalog must fail registry construction")
	}
}

func TestToolInfos(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(Definitions(newFakeFacades().facades())...)
	infos := reg.ToolInfos()
	if len(infos) != len(AllNames) {
		t.Fatalf("expected %d tool infos, got %d", len(AllNames), len(infos))
	}
	if infos[0].Name != string(SearchFlights) {
		t.Fatalf("unexpected first tool: %s", infos[0].Name)
	}
	for _, info := range infos {
		if info.ParamsOneOf == nil {
			t.Fatalf("%s has no parameter schema", info.Name)
		}
	}
}

func TestJSONSchemaRequiredFields(t *testing.T) {
	t.Parallel()

	reg := MustNewRegistry(Definitions(newFakeFacades().facades())...)

	def, _ := reg.Lookup(string(SearchFlights))
	got := def.JSONSchema()
	required, _ := got["required"].([]string)
	if len(required) != 1 || required[0] != "destination" {
		t.Fatalf("search_flights should only require destination, got %v", required)
	}

	def, _ = reg.Lookup(string(GetBooking))
	required, _ = def.JSONSchema()["required"].([]string)
	if len(required) != 0 {
		t.Fatalf("pnr falls back to context and must not be required for the model, got %v", required)
	}

	def, _ = reg.Lookup(string(CreateBooking))
	props := def.JSONSchema()["properties"].(map[string]any)
	passengers := props["passengers"].(map[string]any)
	if passengers["type"] != "array" || passengers["maxItems"] != MaxPassengers {
		t.Fatalf("unexpected passengers schema: %v", passengers)
	}
	items := passengers["items"].(map[string]any)
	itemRequired := items["required"].([]string)
	if len(itemRequired) != 5 {
		t.Fatalf("expected 5 required passenger fields, got %v", itemRequired)
	}
}
