package main

import (
	"context"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/database"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

func main() {
	std := logsvc.NewLogrus(os.Stderr, &core.Config{Debug: true})

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatal(err)
	}
	logger := logsvc.NewRollbarLogger(logsvc.NewLogrus(os.Stderr, conf), conf)
	ctx := context.Background()

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	cli := commandLine{out: os.Stdout, validate: validate}
	var usrRepo user.Repository

	if conf.Storage == core.StoragePostgres {
		db, err := database.Open(ctx, conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer db.Close()

		usrRepo = sqlxrepos.NewUserRepository(db)
		cli.ensureSchema = func(ctx context.Context) error { return database.EnsureSchema(ctx, db) }
	} else {
		usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
		cli.ensureSchema = func(context.Context) error {
			return errors.Errorf("storage %q has no schema", conf.Storage)
		}
	}
	cli.usrSvc = user.NewService(usrRepo, auth.NewTokenManagerFromConfig(conf), nil, conf)

	if err = cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
