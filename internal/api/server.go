// Package api exposes the fee engine over JSON HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clubworks/memberfees/internal/service"
	"github.com/clubworks/memberfees/internal/storage"
)

// Options configures the HTTP server.
type Options struct {
	Addr           string
	DisableReqLogs bool
	Store          storage.Store
	Fees           *service.FeeService
	Membership     *service.MembershipService
}

// Server is the HTTP boundary of the fee engine.
type Server struct {
	opts *Options
	app  *echo.Echo
}

// NewServer builds the echo application and registers all routes.
func NewServer(opts *Options) *Server {
	s := &Server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	s.app.Use(middleware.Recover())

	s.app.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.app.Group("/v1")

	h := &handler{
		store:      s.opts.Store,
		fees:       s.opts.Fees,
		membership: s.opts.Membership,
	}

	v1.POST("/households", h.createHousehold)
	v1.GET("/households", h.listHouseholds)
	v1.GET("/households/:id", h.getHousehold)
	v1.DELETE("/households/:id", h.deleteHousehold)

	v1.POST("/persons", h.createPerson)
	v1.GET("/persons", h.listPersons)
	v1.GET("/persons/:id", h.getPerson)
	v1.DELETE("/persons/:id", h.deletePerson)
	v1.PUT("/persons/:id/household", h.movePersonHousehold)
	v1.POST("/persons/:id/recalculate", h.recalculatePerson)
	v1.GET("/persons/:id/enrollments", h.listPersonEnrollments)
	v1.GET("/persons/:id/state-changes", h.listPersonStateChanges)

	v1.POST("/sports", h.createSport)
	v1.GET("/sports", h.listSports)
	v1.GET("/sports/:id", h.getSport)
	v1.PUT("/sports/:id/active", h.setSportActive)
	v1.POST("/sports/:id/fees", h.addFeeChange)
	v1.GET("/sports/:id/fees", h.listFeeHistory)

	v1.POST("/enrollments", h.joinSport)
	v1.POST("/enrollments/end", h.leaveSport)

	v1.GET("/settings", h.getSettings)
	v1.PUT("/settings", h.updateSettings)

	v1.GET("/fees/person/:id", h.personAnnual)
	v1.GET("/fees/household/:id", h.householdAnnual)
	v1.GET("/fees/sport/:id", h.sportAnnual)
	v1.GET("/fees/club", h.allSportsAnnual)
	v1.GET("/fees/persons", h.allPersonsAnnual)
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	return s.app.Start(s.opts.Addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}
