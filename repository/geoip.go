package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
	"pet-gate-service/cache"
)

type GeoIp struct {
	cli      *httpcli.Client
	url      string
	cache    *cache.Cache
	duration time.Duration
}

func NewGeoIp(cli *httpcli.Client, url string, cacheDuration time.Duration) GeoIp {
	return GeoIp{
		cli:      cli,
		url:      url,
		cache:    cache.New(),
		duration: cacheDuration,
	}
}

type lookupCountryRequest struct {
	Ip string `json:"ip"`
}

type lookupCountryResponse struct {
	CountryCode string `json:"countryCode"`
}

// Lookup returns an ISO country code for the ip, empty when the geo
// service doesn't know it.
func (r GeoIp) Lookup(ctx context.Context, ip string) (string, error) {
	cached, ok := r.cache.Get(ip)
	if ok {
		return string(cached), nil
	}

	resp := lookupCountryResponse{}
	_, err := r.cli.Post(r.url).
		JsonRequestBody(lookupCountryRequest{Ip: ip}).
		JsonResponseBody(&resp).
		StatusCodeToError().
		Do(ctx)
	if err != nil {
		return "", errors.WithMessage(err, "call geoip service")
	}

	r.cache.Set(ip, []byte(resp.CountryCode), r.duration)

	return resp.CountryCode, nil
}
