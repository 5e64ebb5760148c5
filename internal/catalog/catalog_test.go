package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yourorg/flightdesk/pkg/types"
)

func TestDefaultCities(t *testing.T) {
	c := Default()
	want := []string{"Chicago", "Los Angeles", "Miami", "New York", "Seattle"}
	if diff := cmp.Diff(want, c.Cities()); diff != "" {
		t.Fatalf("cities mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupReturnsOffersInCatalogOrder(t *testing.T) {
	c := Default()
	offers, err := c.Lookup("New York", "Miami")
	if err != nil {
		t.Fatal(err)
	}
	want := []types.Offer{
		{Airline: "SunAir", Departure: "06:45", Price: 189, Duration: "3h 15m"},
		{Airline: "TropicWings", Departure: "16:20", Price: 209, Duration: "3h 05m"},
	}
	if diff := cmp.Diff(want, offers); diff != "" {
		t.Fatalf("offers mismatch (-want +got):\n%s", diff)
	}
}

func TestLookupIsDirected(t *testing.T) {
	c := Default()
	if _, err := c.Lookup("Miami", "New York"); err != nil {
		t.Fatalf("Miami to New York should exist: %v", err)
	}
	// Seattle to Los Angeles exists, the reverse only via the Los Angeles entry.
	if _, err := c.Lookup("Miami", "Chicago"); !errors.Is(err, ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestLookupRejectsSameCity(t *testing.T) {
	c := Default()
	if _, err := c.Lookup("Miami", "Miami"); !errors.Is(err, ErrSameCity) {
		t.Fatalf("expected ErrSameCity, got %v", err)
	}
	// Same check applies to cities absent from the catalog.
	if _, err := c.Lookup("Atlantis", "atlantis"); !errors.Is(err, ErrSameCity) {
		t.Fatalf("expected ErrSameCity for unknown city, got %v", err)
	}
}

func TestMatchDeclaredOrder(t *testing.T) {
	c := Default()
	city, ok := c.Match("i want to leave from new york please")
	if !ok || city != "New York" {
		t.Fatalf("got %q ok=%v", city, ok)
	}
	if _, ok := c.Match("somewhere over the rainbow"); ok {
		t.Fatalf("expected no match")
	}

	// Overlapping names resolve to the first declared city.
	overlap := New([]Route{
		{From: "York", To: "New York", Offers: []types.Offer{{Airline: "A", Departure: "08:00", Price: 1, Duration: "1h"}}},
	})
	if city, _ := overlap.Match("new york"); city != "York" {
		t.Fatalf("expected first-declared city York, got %q", city)
	}
}

func TestDestinationsExcludeOrigin(t *testing.T) {
	c := Default()
	for _, d := range c.Destinations("Miami") {
		if d == "Miami" {
			t.Fatalf("destinations contain origin")
		}
	}
	if got := len(c.Destinations("Miami")); got != 4 {
		t.Fatalf("expected 4 destinations, got %d", got)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `routes:
  - from: Springfield
    to: Shelbyville
    offers:
      - airline: MonoRail Air
        departure: "09:00"
        price: 99
        duration: 1h 05m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	offers, err := c.Lookup("Springfield", "Shelbyville")
	if err != nil {
		t.Fatal(err)
	}
	if len(offers) != 1 || offers[0].Airline != "MonoRail Air" {
		t.Fatalf("unexpected offers %+v", offers)
	}
}

func TestLoadRejectsBadCatalog(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty":     "routes: []\n",
		"no offers": "routes:\n  - from: A\n    to: B\n    offers: []\n",
		"bad price": "routes:\n  - from: A\n    to: B\n    offers:\n      - airline: X\n        departure: \"08:00\"\n        price: 0\n        duration: 1h\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name+".yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
