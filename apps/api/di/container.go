// Package di assembles the API's dependency graph with go.uber.org/dig.
package di

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/activity"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/resource"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

const dbSetupTimeout = 30 * time.Second

type (
	Repositories struct {
		dig.Out

		Users      user.Repository
		Activities activity.Repository
		Resources  resource.Repository
		Closer     io.Closer
	}

	ServerParams struct {
		dig.In

		Conf        *core.Config
		Logger      core.Logger
		Validate    *validator.Validate
		Translator  ut.Translator
		Tokens      echoapi.TokenVerifier
		Metrics     *echoapi.Metrics
		UserSvc     user.Service
		ActivitySvc activity.Service
		ResourceSvc resource.Service
		Shutdown    chan os.Signal
	}
)

func newLogrus(conf *core.Config) *logrus.Logger {
	return logsvc.NewLogrus(os.Stdout, conf)
}

func newLogger(std *logrus.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(std, conf)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	return validate, translator
}

func newRepositories(conf *core.Config, logger core.Logger) (Repositories, error) {
	if conf.Storage != core.StoragePostgres {
		logger.Warn("using the in-memory store; data will not survive a restart")
		db := inmemdb.Open()
		return Repositories{
			Users:      inmemdb.NewUserRepository(db),
			Activities: inmemdb.NewActivityRepository(db),
			Resources:  inmemdb.NewResourceRepository(db),
			Closer:     db,
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbSetupTimeout)
	defer cancel()

	db, err := database.Open(ctx, conf)
	if err != nil {
		return Repositories{}, errors.Wrap(err, "setting up database")
	}
	if err = database.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return Repositories{}, errors.Wrap(err, "setting up database")
	}
	return Repositories{
		Users:      sqlxrepos.NewUserRepository(db),
		Activities: sqlxrepos.NewActivityRepository(db),
		Resources:  sqlxrepos.NewResourceRepository(db),
		Closer:     db,
	}, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, os.Stdout)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTokenIssuer(tm *auth.TokenManager) user.TokenIssuer     { return tm }
func newTokenVerifier(tm *auth.TokenManager) echoapi.TokenVerifier { return tm }

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newMetrics(reg *prometheus.Registry) *echoapi.Metrics {
	return echoapi.NewMetrics(reg)
}

func newShutdownChan() chan os.Signal {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	return shutdown
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(p.Conf.Server.Address, p.Shutdown, &echoapi.Deps{
		Conf:        p.Conf,
		Logger:      p.Logger,
		Validate:    p.Validate,
		Translator:  p.Translator,
		Tokens:      p.Tokens,
		Metrics:     p.Metrics,
		UserSvc:     p.UserSvc,
		ActivitySvc: p.ActivitySvc,
		ResourceSvc: p.ResourceSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogrus))
	must(c.Provide(newLogger))
	must(c.Provide(newValidator))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(auth.NewTokenManagerFromConfig))
	must(c.Provide(newTokenIssuer))
	must(c.Provide(newTokenVerifier))
	must(c.Provide(newRegistry))
	must(c.Provide(newMetrics))
	must(c.Provide(user.NewService))
	must(c.Provide(activity.NewService))
	must(c.Provide(resource.NewService))
	must(c.Provide(newShutdownChan))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
