// Package di wires the dashboard's dependencies with a dig.Container.
package di

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echodash "github.com/amitkumarsingh01/GlobalEdutech-Admin/apps/dashboard/echo"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
	logsvc "github.com/amitkumarsingh01/GlobalEdutech-Admin/services/logger"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/services/restapi"
)

// ServerParams are the dependencies of the dashboard echodash.Server.
type ServerParams struct {
	dig.In
	Conf      *core.Config
	Logger    core.Logger
	Registry  *resource.Registry
	Service   *resource.Service
	Validator *resource.Validator
	Sessions  *session.Manager
	Auth      session.Authenticator
	Metrics   *restapi.Metrics
	Client    *restapi.Client
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DASHBOARD : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newOptions(p ServerParams) *echodash.Options {
	return &echodash.Options{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Registry:     p.Registry,
		Service:      p.Service,
		Validator:    p.Validator,
		Sessions:     p.Sessions,
		Auth:         p.Auth,
		Metrics:      p.Metrics,
		AssetBaseURL: p.Client.BaseURL(),
	}
}

// New returns a new dependency injection dig.Container.
func New(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(resource.DefaultRegistry))
	must(c.Provide(restapi.NewMetrics))
	must(c.Provide(restapi.NewClient))
	must(c.Provide(func(client *restapi.Client) resource.Backend { return client }))
	must(c.Provide(func(client *restapi.Client) session.Authenticator { return client }))
	must(c.Provide(resource.NewService))
	must(c.Provide(resource.NewValidator))
	must(c.Provide(session.NewManager))
	must(c.Provide(newOptions))
	must(c.Provide(echodash.NewServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
