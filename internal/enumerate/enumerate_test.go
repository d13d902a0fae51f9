package enumerate

import (
	"reflect"
	"testing"
)

func TestUnitKey_String(t *testing.T) {
	geom := UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}
	if got, want := geom.String(), "26/2010/county"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	pop := UnitKey{FIPS: "26", Vintage: "2010", Level: "county", Table: "P1"}
	if got, want := pop.String(), "26/2010/county/P1"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestUnitKey_GeometryKey(t *testing.T) {
	pop := UnitKey{FIPS: "26", Vintage: "2020", Level: "tract", Table: "P2"}
	want := UnitKey{FIPS: "26", Vintage: "2020", Level: "tract"}
	if got := pop.GeometryKey(); got != want {
		t.Fatalf("GeometryKey() = %v, want %v", got, want)
	}
	if !pop.IsPopulation() {
		t.Fatal("a unit with a table is a population unit")
	}
	if want.IsPopulation() {
		t.Fatal("a unit without a table is a geometry unit")
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    UnitKey
		wantErr bool
	}{
		{name: "slash_geometry", in: "26/2010/county", want: UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}},
		{name: "slash_population", in: "26/2010/county/P1", want: UnitKey{FIPS: "26", Vintage: "2010", Level: "county", Table: "P1"}},
		{name: "tab_geometry", in: "26\t2010\tcounty", want: UnitKey{FIPS: "26", Vintage: "2010", Level: "county"}},
		{name: "tab_population", in: "26\t2010\tcounty\tP1\n", want: UnitKey{FIPS: "26", Vintage: "2010", Level: "county", Table: "P1"}},
		{name: "too_few_fields", in: "26/2010", wantErr: true},
		{name: "too_many_fields", in: "26/2010/county/P1/x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseKey(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q) returned error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseKey(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseKey_RoundTripsFields(t *testing.T) {
	keys := []UnitKey{
		{FIPS: "26", Vintage: "2020", Level: "state"},
		{FIPS: "72", Vintage: "2010", Level: "tract", Table: "P4"},
	}
	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", k.String(), err)
		}
		if got != k {
			t.Fatalf("round trip mismatch: got %v, want %v", got, k)
		}
	}
}

func TestPlan_Units_JurisdictionMajorOrder(t *testing.T) {
	p := Plan{
		Jurisdictions: []string{"26", "27"},
		Vintages:      []string{"2010", "2020"},
		Levels:        []string{"state", "county"},
	}

	want := []UnitKey{
		{FIPS: "26", Vintage: "2010", Level: "state"},
		{FIPS: "26", Vintage: "2010", Level: "county"},
		{FIPS: "26", Vintage: "2020", Level: "state"},
		{FIPS: "26", Vintage: "2020", Level: "county"},
		{FIPS: "27", Vintage: "2010", Level: "state"},
		{FIPS: "27", Vintage: "2010", Level: "county"},
		{FIPS: "27", Vintage: "2020", Level: "state"},
		{FIPS: "27", Vintage: "2020", Level: "county"},
	}
	if got := p.Units(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Units() = %v, want %v", got, want)
	}
}

func TestPlan_Units_TablesExpandInnermost(t *testing.T) {
	p := Plan{
		Jurisdictions: []string{"26"},
		Vintages:      []string{"2020"},
		Levels:        []string{"county", "tract"},
		Tables:        []string{"P1", "P2"},
	}

	want := []UnitKey{
		{FIPS: "26", Vintage: "2020", Level: "county", Table: "P1"},
		{FIPS: "26", Vintage: "2020", Level: "county", Table: "P2"},
		{FIPS: "26", Vintage: "2020", Level: "tract", Table: "P1"},
		{FIPS: "26", Vintage: "2020", Level: "tract", Table: "P2"},
	}
	if got := p.Units(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Units() = %v, want %v", got, want)
	}
}

func TestPlan_Units_DropsUnpublishedDatasets(t *testing.T) {
	// California has no 2020 VTDs; both vintages keep their county datasets.
	p := Plan{
		Jurisdictions: []string{"06"},
		Vintages:      []string{"2010", "2020"},
		Levels:        []string{"county", "vtd"},
	}

	want := []UnitKey{
		{FIPS: "06", Vintage: "2010", Level: "county"},
		{FIPS: "06", Vintage: "2010", Level: "vtd"},
		{FIPS: "06", Vintage: "2020", Level: "county"},
	}
	if got := p.Units(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Units() = %v, want %v", got, want)
	}
}

func TestPlan_Units_TribalAllowList(t *testing.T) {
	// Virginia tribal areas exist only in 2020; Ohio has none in either.
	p := Plan{
		Jurisdictions: []string{"39", "51"},
		Vintages:      []string{"2010", "2020"},
		Levels:        []string{"aiannh"},
	}

	want := []UnitKey{
		{FIPS: "51", Vintage: "2020", Level: "aiannh"},
	}
	if got := p.Units(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Units() = %v, want %v", got, want)
	}
}

func TestPlan_Units_Exclusions(t *testing.T) {
	p := Plan{
		Jurisdictions: []string{"26", "27"},
		Vintages:      []string{"2020"},
		Levels:        []string{"state", "county"},
		Exclude: []Exclusion{
			{FIPS: "27", Level: "county"},
		},
	}

	want := []UnitKey{
		{FIPS: "26", Vintage: "2020", Level: "state"},
		{FIPS: "26", Vintage: "2020", Level: "county"},
		{FIPS: "27", Vintage: "2020", Level: "state"},
	}
	if got := p.Units(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Units() = %v, want %v", got, want)
	}
}

func TestPlan_Units_WildcardExclusion(t *testing.T) {
	p := Plan{
		Jurisdictions: []string{"26"},
		Vintages:      []string{"2010", "2020"},
		Levels:        []string{"state", "vtd"},
		Exclude: []Exclusion{
			{Level: "vtd"}, // every jurisdiction, every vintage
		},
	}

	for _, u := range p.Units() {
		if u.Level == "vtd" {
			t.Fatalf("excluded level enumerated: %v", u)
		}
	}
}

func TestPlan_Units_Deterministic(t *testing.T) {
	p := Plan{
		Jurisdictions: []string{"26", "55"},
		Vintages:      []string{"2010", "2020"},
		Levels:        []string{"state", "county", "vtd"},
		Tables:        []string{"P1"},
	}
	first := p.Units()
	for i := 0; i < 5; i++ {
		if got := p.Units(); !reflect.DeepEqual(got, first) {
			t.Fatalf("enumeration not deterministic on pass %d", i)
		}
	}
}
