package enrichment

import (
	"net"

	geoip2 "github.com/oschwald/geoip2-golang"
)

type Location struct {
	Country string
	City    string
}

// GeoIPLocator resolves IP addresses to country and city using a GeoIP2/GeoLite2 City database.
type GeoIPLocator struct {
	db *geoip2.Reader
}

// NewGeoIPLocator opens the database at dbPath.
func NewGeoIPLocator(dbPath string) (*GeoIPLocator, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &GeoIPLocator{db: db}, nil
}

func (g *GeoIPLocator) Close() error {
	return g.db.Close()
}

// Locate returns an empty Location for private, invalid or unknown addresses.
func (g *GeoIPLocator) Locate(ipStr string) Location {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return Location{}
	}

	record, err := g.db.City(ip)
	if err != nil {
		return Location{}
	}

	return Location{
		Country: record.Country.IsoCode,
		City:    record.City.Names["en"],
	}
}
