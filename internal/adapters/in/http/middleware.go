package http

import (
	"strconv"
	"strings"
	"time"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

const driverContextKey = "dispatch.driver"

// Metrics counts requests by route template, so /tasks/{id} paths share one series.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().Status
		if err != nil {
			status = statusOf(err)
		}
		method := c.Request().Method

		metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(started).Seconds())
		return err
	}
}

// authenticateDriver resolves the bearer token to a driver and stores it on
// the context. Missing, malformed and unknown tokens are all rejected alike.
func (s *Server) authenticateDriver(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return driver.ErrInvalidAccessToken
		}
		query, err := queries.NewAuthenticateDriverQuery(token)
		if err != nil {
			return err
		}
		d, err := s.h.AuthenticateDriver.Handle(c.Request().Context(), query)
		if err != nil {
			return err
		}
		c.Set(driverContextKey, d)
		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentDriver(c echo.Context) (queries.DriverView, error) {
	d, ok := c.Get(driverContextKey).(queries.DriverView)
	if !ok {
		return queries.DriverView{}, driver.ErrInvalidAccessToken
	}
	return d, nil
}
