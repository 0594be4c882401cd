package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/trezcool/preskool/apps/devapi/echo"
	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/record"
	"github.com/trezcool/preskool/core/user"
	"github.com/trezcool/preskool/services/logger"
	"github.com/trezcool/preskool/storage/database"
)

// devapi serves the records the admin client works on, backed by an in-memory or Postgres store.
func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	repos, err := database.Open(conf.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	usrSvc := user.NewService(repos.Users)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, database %q", conf.Build, conf.Database.Engine))
	defer logger.Info("Application stopped")

	if conf.Server.Seed {
		if err = seed(conf, repos, usrSvc); err != nil {
			logger.Fatal(fmt.Sprintf("seeding: %v", err), err)
		}
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		conf,
		func() { shutdown <- syscall.SIGTERM },
		echoapi.Deps{
			Records: repos.Records,
			UserSvc: usrSvc,
			Logger:  logger,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API listening on " + conf.Server.Address)
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

// seed loads sample records into an empty store and makes sure the admin account exists.
func seed(conf *core.Config, repos *database.Repositories, usrSvc *user.Service) error {
	ctx := context.Background()

	existing, err := repos.Records.List(ctx, "sections", nil)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		if err = record.Seed(ctx, repos.Records); err != nil {
			return err
		}
	}

	_, err = usrSvc.EnsureAdmin(conf.Admin.Username, conf.Admin.Password)
	return err
}
