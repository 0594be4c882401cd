package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/record"
	"github.com/trezcool/preskool/core/user"
)

type (
	Deps struct {
		Records record.Repository
		UserSvc *user.Service
		Logger  core.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		conf *core.Config
		deps Deps
		app  *echo.Echo
		auth *authenticator

		validate   *validator.Validate
		translator ut.Translator
	}
)

var _ Server = (*server)(nil)

// NewServer builds the API; signalShutdown is called when a handler hits a core shutdown error.
func NewServer(conf *core.Config, signalShutdown func(), deps Deps) Server {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger{}
	}
	if signalShutdown == nil {
		signalShutdown = func() {}
	}
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)

	s := &server{
		conf:       conf,
		deps:       deps,
		app:        echo.New(),
		auth:       newAuthenticator(conf),
		validate:   validate,
		translator: translator,
	}
	s.setup(signalShutdown)
	return s
}

func (s *server) setup(signalShutdown func()) {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.translator, signalShutdown)
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	registerAuthAPI(v1, s.auth, s.deps.UserSvc, s.validate)
	registerRecordAPI(v1, s.auth.middleware(), s.deps.Records, s.deps.Logger)
}

func (s *server) Start() error {
	return s.app.Start(s.conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, success("Welcome to "+s.conf.AppName+" API!"))
}
