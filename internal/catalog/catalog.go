package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yourorg/flightdesk/pkg/types"
)

var (
	ErrSameCity      = errors.New("origin and destination are the same city")
	ErrRouteNotFound = errors.New("no route between the given cities")
)

// Catalog holds the static route table. Routes are directed: a route from
// A to B does not imply one from B to A.
type Catalog struct {
	routes   map[string]map[string][]types.Offer
	declared []string
}

// Route is one directed city pair with its offers, as read from a catalog file.
type Route struct {
	From   string        `yaml:"from"`
	To     string        `yaml:"to"`
	Offers []types.Offer `yaml:"offers"`
}

type catalogFile struct {
	Routes []Route `yaml:"routes"`
}

// New builds a catalog from routes in declared order.
func New(routes []Route) *Catalog {
	c := &Catalog{routes: make(map[string]map[string][]types.Offer)}
	seen := make(map[string]struct{})
	declare := func(city string) {
		if _, ok := seen[city]; ok {
			return
		}
		seen[city] = struct{}{}
		c.declared = append(c.declared, city)
	}
	for _, r := range routes {
		declare(r.From)
		declare(r.To)
		if c.routes[r.From] == nil {
			c.routes[r.From] = make(map[string][]types.Offer)
		}
		c.routes[r.From][r.To] = append(c.routes[r.From][r.To], r.Offers...)
	}
	return c
}

// Load reads a YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cf.Routes) == 0 {
		return nil, errors.New("catalog has no routes")
	}
	for _, r := range cf.Routes {
		if strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "" {
			return nil, errors.New("catalog route missing from/to city")
		}
		if len(r.Offers) == 0 {
			return nil, fmt.Errorf("route %s to %s has no offers", r.From, r.To)
		}
		for _, o := range r.Offers {
			if o.Price <= 0 {
				return nil, fmt.Errorf("route %s to %s: offer price must be positive", r.From, r.To)
			}
		}
	}
	return New(cf.Routes), nil
}

// Cities returns every known city, sorted.
func (c *Catalog) Cities() []string {
	out := append([]string(nil), c.declared...)
	sort.Strings(out)
	return out
}

// Destinations returns every known city except origin, sorted.
func (c *Catalog) Destinations(origin string) []string {
	out := make([]string, 0, len(c.declared))
	for _, city := range c.Cities() {
		if city != origin {
			out = append(out, city)
		}
	}
	return out
}

// Lookup returns the offers for the directed pair in catalog order.
// Equal cities are rejected before any catalog access, so the check holds
// even for cities with no routes at all.
func (c *Catalog) Lookup(origin, destination string) ([]types.Offer, error) {
	if strings.EqualFold(origin, destination) {
		return nil, ErrSameCity
	}
	dests, ok := c.routes[origin]
	if !ok {
		return nil, ErrRouteNotFound
	}
	offers, ok := dests[destination]
	if !ok {
		return nil, ErrRouteNotFound
	}
	return offers, nil
}

// Match scans the city list for the first city whose name occurs in text,
// case-insensitively. Cities are scanned in declared order, not alphabetical,
// so an overlapping name matches whichever city was declared first.
func (c *Catalog) Match(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, city := range c.declared {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city, true
		}
	}
	return "", false
}

// Default returns the built-in demo catalog.
func Default() *Catalog {
	return New([]Route{
		{From: "New York", To: "Los Angeles", Offers: []types.Offer{
			{Airline: "SkyWings", Departure: "08:00", Price: 299, Duration: "5h 30m"},
			{Airline: "AeroFly", Departure: "14:30", Price: 329, Duration: "5h 45m"},
			{Airline: "CloudJet", Departure: "19:15", Price: 279, Duration: "5h 20m"},
		}},
		{From: "New York", To: "Miami", Offers: []types.Offer{
			{Airline: "SunAir", Departure: "06:45", Price: 189, Duration: "3h 15m"},
			{Airline: "TropicWings", Departure: "16:20", Price: 209, Duration: "3h 05m"},
		}},
		{From: "New York", To: "Chicago", Offers: []types.Offer{
			{Airline: "WindyCity Express", Departure: "10:30", Price: 159, Duration: "2h 45m"},
			{Airline: "GreatLakes Air", Departure: "18:45", Price: 179, Duration: "2h 30m"},
		}},
		{From: "Los Angeles", To: "New York", Offers: []types.Offer{
			{Airline: "EastCoast Air", Departure: "07:00", Price: 319, Duration: "5h 15m"},
			{Airline: "TransContinental", Departure: "12:45", Price: 289, Duration: "5h 25m"},
		}},
		{From: "Los Angeles", To: "Seattle", Offers: []types.Offer{
			{Airline: "PacificWings", Departure: "09:15", Price: 149, Duration: "2h 40m"},
			{Airline: "NorthWest Air", Departure: "15:30", Price: 169, Duration: "2h 50m"},
		}},
		{From: "Miami", To: "New York", Offers: []types.Offer{
			{Airline: "Atlantic Express", Departure: "11:20", Price: 199, Duration: "3h 10m"},
			{Airline: "Coastal Air", Departure: "17:40", Price: 219, Duration: "3h 20m"},
		}},
		{From: "Chicago", To: "New York", Offers: []types.Offer{
			{Airline: "Midwest Express", Departure: "08:30", Price: 169, Duration: "2h 35m"},
			{Airline: "Central Air", Departure: "14:15", Price: 189, Duration: "2h 40m"},
		}},
		{From: "Seattle", To: "Los Angeles", Offers: []types.Offer{
			{Airline: "Coast to Coast", Departure: "13:00", Price: 159, Duration: "2h 45m"},
			{Airline: "Western Wings", Departure: "20:30", Price: 139, Duration: "2h 55m"},
		}},
	})
}
