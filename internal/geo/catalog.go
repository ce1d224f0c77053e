// Package geo holds the fixed set of login locations and the address ranges
// considered native to each of them.
package geo

import (
	"fmt"
	"net/netip"
	"sync"
	"time"

	// Embedded zone database so catalog timezones resolve on hosts without one.
	_ "time/tzdata"
)

// Location is a named place logins can originate from.
type Location struct {
	Name        string         `json:"city" yaml:"city"`
	CountryCode string         `json:"country_iso_code" yaml:"country_iso_code"`
	Lat         float64        `json:"lat" yaml:"lat"`
	Lon         float64        `json:"lon" yaml:"lon"`
	Timezone    string         `json:"timezone" yaml:"timezone"`
	CIDRs       []netip.Prefix `json:"cidrs" yaml:"-"`

	zoneOnce sync.Once
	zone     *time.Location
	zoneErr  error
}

// Zone returns the location's timezone.
func (l *Location) Zone() (*time.Location, error) {
	l.zoneOnce.Do(func() {
		l.zone, l.zoneErr = time.LoadLocation(l.Timezone)
	})
	return l.zone, l.zoneErr
}

// CIDRStrings renders the address ranges for display.
func (l *Location) CIDRStrings() []string {
	out := make([]string, len(l.CIDRs))
	for i, p := range l.CIDRs {
		out[i] = p.String()
	}
	return out
}

func prefixes(cidrs ...string) []netip.Prefix {
	out := make([]netip.Prefix, len(cidrs))
	for i, c := range cidrs {
		out[i] = netip.MustParsePrefix(c)
	}
	return out
}

// Cloud provider blocks per city; the comment names the owner of each range.
var catalog = []*Location{
	{Name: "New York", CountryCode: "US", Lat: 40.7128, Lon: -74.0060, Timezone: "America/New_York",
		CIDRs: prefixes("34.74.0.0/16", "52.56.0.0/15")}, // Google, AWS
	{Name: "San Francisco", CountryCode: "US", Lat: 37.7749, Lon: -122.4194, Timezone: "America/Los_Angeles",
		CIDRs: prefixes("13.56.0.0/16", "129.146.0.0/17")}, // AWS, Oracle
	{Name: "London", CountryCode: "GB", Lat: 51.5074, Lon: -0.1278, Timezone: "Europe/London",
		CIDRs: prefixes("3.8.0.0/15", "167.99.128.0/17")}, // AWS, DigitalOcean
	{Name: "Berlin", CountryCode: "DE", Lat: 52.5200, Lon: 13.4050, Timezone: "Europe/Berlin",
		CIDRs: prefixes("18.194.0.0/15", "162.55.0.0/16")}, // AWS, Hetzner
	{Name: "Tokyo", CountryCode: "JP", Lat: 35.6895, Lon: 139.6917, Timezone: "Asia/Tokyo",
		CIDRs: prefixes("13.112.0.0/13", "47.244.0.0/16")}, // AWS, Alibaba
	{Name: "Sydney", CountryCode: "AU", Lat: -33.8688, Lon: 151.2093, Timezone: "Australia/Sydney",
		CIDRs: prefixes("3.104.0.0/14", "35.244.0.0/16")}, // AWS, Google
	{Name: "Toronto", CountryCode: "CA", Lat: 43.6511, Lon: -79.3470, Timezone: "America/Toronto",
		CIDRs: prefixes("15.222.0.0/15", "52.228.0.0/15")}, // AWS, Azure
	{Name: "São Paulo", CountryCode: "BR", Lat: -23.5505, Lon: -46.6333, Timezone: "America/Sao_Paulo",
		CIDRs: prefixes("18.228.0.0/14", "35.247.0.0/17")}, // AWS, Google
	{Name: "Singapore", CountryCode: "SG", Lat: 1.3521, Lon: 103.8198, Timezone: "Asia/Singapore",
		CIDRs: prefixes("13.228.0.0/15", "128.199.128.0/17")}, // AWS, DigitalOcean
	{Name: "Johannesburg", CountryCode: "ZA", Lat: -26.2041, Lon: 28.0473, Timezone: "Africa/Johannesburg",
		CIDRs: prefixes("13.244.0.0/15", "196.54.0.0/16")}, // AWS, Google
}

// Catalog returns the shared location list. Callers must not modify it.
func Catalog() []*Location {
	return catalog
}

// Lookup finds a catalog location by name.
func Lookup(name string) (*Location, bool) {
	for _, l := range catalog {
		if l.Name == name {
			return l, true
		}
	}
	return nil, false
}

// Validate checks that every location has a loadable timezone and at least one
// IPv4 range large enough for RandomHost. A failure here is a catalog defect.
func Validate(locations []*Location) error {
	if len(locations) < 2 {
		return fmt.Errorf("catalog needs at least 2 locations, has %d", len(locations))
	}
	seen := make(map[string]bool, len(locations))
	for _, l := range locations {
		if seen[l.Name] {
			return fmt.Errorf("duplicate location %q", l.Name)
		}
		seen[l.Name] = true

		if _, err := l.Zone(); err != nil {
			return fmt.Errorf("location %s: invalid timezone %q: %w", l.Name, l.Timezone, err)
		}
		if len(l.CIDRs) == 0 {
			return fmt.Errorf("location %s: no address ranges", l.Name)
		}
		for _, p := range l.CIDRs {
			if !p.Addr().Is4() {
				return fmt.Errorf("location %s: %s is not IPv4", l.Name, p)
			}
			if p.Masked() != p {
				return fmt.Errorf("location %s: %s has host bits set", l.Name, p)
			}
			if HostCount(p) < minBlockSize {
				return fmt.Errorf("location %s: %w: %s", l.Name, ErrPrefixTooSmall, p)
			}
		}
	}
	return nil
}
