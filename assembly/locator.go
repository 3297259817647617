package assembly

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/log"
	"pet-gate-service/conf"
	"pet-gate-service/middleware"
	"pet-gate-service/proxy"
	"pet-gate-service/repository"
	"pet-gate-service/service"
)

type Locator struct {
	logger log.Logger
}

func NewLocator(logger log.Logger) Locator {
	return Locator{
		logger: logger,
	}
}

func (l Locator) Handler(config conf.Remote, locations []conf.Location, redisCli redis.UniversalClient) (http.Handler, error) {
	sessionCache := repository.NewSessionCache(time.Duration(config.Auth.CacheInSec) * time.Second)
	sessionRepo := repository.NewSession(httpcli.New(), config.Auth.Url)
	authentication := service.NewAuthentication(sessionCache, sessionRepo)

	geoIpRepo := repository.NewGeoIp(httpcli.New(), config.GeoIp.Url, time.Duration(config.GeoIp.CacheInSec)*time.Second)
	geo := service.NewGeo(geoIpRepo, config.RateLimit.Geo, l.logger)

	policies, err := service.NewPolicies(config.RateLimit)
	if err != nil {
		return nil, errors.WithMessage(err, "new policies")
	}

	counter := repository.NewCounter(redisCli, config.RateLimit.GetStoreTimeout())
	burst := service.NewBurst(repository.NewBurst(counter), config.RateLimit.Burst, l.logger)
	quota := service.NewQuota(policies, geo, repository.NewQuota(counter), l.logger)
	admission := service.NewAdmission(burst, quota)

	mux := http.NewServeMux()
	for _, location := range locations {
		targetUrl, err := url.Parse(location.TargetUrl)
		if err != nil {
			return nil, errors.WithMessagef(err, "parse target url for '%s'", location.PathPrefix)
		}
		proxyFunc := proxy.NewHttp(targetUrl, time.Duration(config.Http.ProxyTimeoutInSec)*time.Second)

		handler := middleware.Chain(
			proxyFunc,
			middleware.RequestId(),
			middleware.Logger(l.logger, config.Logging.RequestLogEnable, config.Logging.BodyLogEnable),
			middleware.ErrorHandler(l.logger),
			middleware.Authenticate(authentication, l.logger),
			middleware.RateLimit(admission),
		)
		if location.SkipLimits {
			handler = middleware.Chain(
				proxyFunc,
				middleware.RequestId(),
				middleware.Logger(l.logger, config.Logging.RequestLogEnable, config.Logging.BodyLogEnable),
				middleware.ErrorHandler(l.logger),
			)
		}

		entrypoint := middleware.Entrypoint(
			config.Http.MaxRequestBodySizeInMb*1024*1024, //nolint:gomnd
			handler,
			location.PathPrefix,
			l.logger,
		)
		mux.Handle(fmt.Sprintf("%s/", location.PathPrefix), entrypoint)
	}

	return mux, nil
}
