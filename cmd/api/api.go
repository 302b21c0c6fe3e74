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

	"bakehouse/docs" //required to register generated swagger docs
	"bakehouse/internal/assist"
	"bakehouse/internal/auth"
	"bakehouse/internal/mailer"
	"bakehouse/internal/ratelimiter"
	"bakehouse/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	media         mediaStore
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   *ratelimiter.FixedWindowRateLimiter
	chat          responder
	assistant     responder
}

// responder is what the chat handlers need from the assist pipeline; the
// indirection keeps handler tests free of real stores.
type responder interface {
	Respond(ctx context.Context, text string) (*assist.Result, error)
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	assistant   assistantConfig
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
	addr        string
	maxConns    int32
	maxIdleTime string
}

type assistantConfig struct {
	apiKey  string
	model   string
	baseURL string
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
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		// Public storefront
		r.Get("/products", app.listProductsHandler)
		r.Get("/products/{productID}", app.getProductHandler)
		r.Get("/subcategories", app.listSubcategoriesHandler)
		r.Get("/blogs", app.listBlogsHandler)
		r.Get("/blogs/{blogID}", app.getBlogHandler)

		r.Post("/chat", app.chatHandler)
		r.Post("/assistant", app.assistantHandler)

		// Shopper routes
		r.Group(func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/logout", app.logoutHandler)
			r.Get("/profile", app.profileHandler)
			r.Post("/coupons/validate", app.validateCouponHandler)
			r.Route("/orders", func(r chi.Router) {
				r.Post("/", app.createOrderHandler)
				r.Get("/", app.listMyOrdersHandler)
				r.Post("/{orderID}/rating", app.rateOrderHandler)
			})
		})

		// Back office
		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Use(app.RequireAdmin)

			r.Get("/dashboard", app.dashboardHandler)
			r.Get("/users", app.listUsersHandler)

			r.Route("/products", func(r chi.Router) {
				r.Post("/", app.createProductHandler)
				r.Patch("/{productID}", app.updateProductHandler)
				r.Delete("/{productID}", app.deleteProductHandler)
				r.Post("/{productID}/images", app.uploadProductImagesHandler)
			})
			r.Route("/subcategories", func(r chi.Router) {
				r.Post("/", app.createSubcategoryHandler)
				r.Patch("/{subcategoryID}", app.updateSubcategoryHandler)
				r.Delete("/{subcategoryID}", app.deleteSubcategoryHandler)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", app.listOrdersHandler)
				r.Patch("/{orderID}/status", app.updateOrderStatusHandler)
			})
			r.Route("/coupons", func(r chi.Router) {
				r.Post("/", app.createCouponHandler)
				r.Get("/", app.listCouponsHandler)
				r.Patch("/{couponID}", app.updateCouponHandler)
				r.Delete("/{couponID}", app.deleteCouponHandler)
			})
			r.Route("/blogs", func(r chi.Router) {
				r.Post("/", app.createBlogHandler)
				r.Patch("/{blogID}", app.updateBlogHandler)
				r.Delete("/{blogID}", app.deleteBlogHandler)
			})
		})
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

	if err := <-shutdown; err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
