package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"courtside/docs" //required to generate swagger docs
	"courtside/internal/activity"
	"courtside/internal/auth"
	"courtside/internal/booking"
	"courtside/internal/mailer"
	"courtside/internal/ratelimiter"
	"courtside/internal/stats"
	"courtside/internal/store"
)

type application struct {
	config        config
	store         store.Storage
	bookings      *booking.Service
	activities    *activity.Service
	stats         *stats.Service
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	secret          string
	refreshSecret   string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/facilities", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createFacilityHandler)
			r.Get("/", app.listOwnedFacilitiesHandler)

			r.Route("/{facilityID}", func(r chi.Router) {
				r.Get("/", app.getFacilityHandler)
				r.Patch("/", app.updateFacilityHandler)
				r.Delete("/", app.retireFacilityHandler)
				r.Post("/photos", app.uploadFacilityPhotoHandler)
				r.Delete("/photos", app.deleteFacilityPhotoHandler)
				r.Get("/slots", app.listFacilitySlotsHandler)
			})
		})

		r.Route("/slot-requests", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createSlotRequestHandler)
			r.Get("/", app.listMySlotRequestsHandler)

			r.Route("/{requestID}", func(r chi.Router) {
				r.Get("/", app.getSlotRequestHandler)
				r.Post("/approve", app.approveSlotRequestHandler)
				r.Post("/reject", app.rejectSlotRequestHandler)
				r.Post("/cancel", app.cancelSlotRequestHandler)
				r.Patch("/payment", app.updateSlotPaymentHandler)
			})
		})

		r.Route("/activities", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/", app.createActivityHandler)

			r.Route("/{activityID}", func(r chi.Router) {
				r.Get("/", app.getActivityHandler)
				r.Post("/cancel", app.cancelActivityHandler)
				r.Get("/players", app.getActivityPlayersHandler)
				r.Post("/join", app.createJoinRequestHandler)
				r.Get("/requests", app.listJoinRequestsHandler)
				r.Post("/requests/{requestID}/approve", app.approveJoinRequestHandler)
				r.Post("/requests/{requestID}/reject", app.rejectJoinRequestHandler)
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/revenue", app.ownerRevenueHandler)
			r.Get("/today", app.ownerTodayHandler)
			r.Get("/slot-requests", app.ownerSlotRequestsHandler)
			r.Get("/pending-joins", app.organizerPendingJoinsHandler)
		})

		r.With(app.AuthTokenMiddleware).Post("/users/logout", app.logoutHandler)
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}
