package activities

import (
	"net"
	"strings"

	"log/slog"

	"leadpulse/internal/pkg/geoip"
)

// UnknownCountry marks client contexts whose IP could not be resolved.
const UnknownCountry = "__unknown_country__"

// GetCountryFromIP resolves an IP address to a lowercase ISO country code or
// UnknownCountry. Resolution is optional: without a GeoLite database every
// lookup yields UnknownCountry.
func GetCountryFromIP(ipAddress string) string {
	logger := slog.Default()

	geoDB := geoip.GetGeoDB()
	if geoDB == nil {
		return UnknownCountry
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		logger.Debug("Failed to parse IP address", slog.String("ip_address", ipAddress))
		return UnknownCountry
	}

	record, err := geoDB.Country(ip)
	if err != nil {
		logger.Error("Error looking up country for IP",
			slog.String("ip_address", ipAddress),
			slog.Any("error", err))
		return UnknownCountry
	}

	if record.Country.IsoCode == "" || record.Country.IsoCode == "--" {
		return UnknownCountry
	}

	return strings.ToLower(record.Country.IsoCode)
}
