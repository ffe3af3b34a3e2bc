// Package main boots the order service HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/salescrm/order-service/internal/config"
	"github.com/salescrm/order-service/internal/events"
	httpapi "github.com/salescrm/order-service/internal/http"
	"github.com/salescrm/order-service/internal/ledger"
	"github.com/salescrm/order-service/internal/obs"
	"github.com/salescrm/order-service/internal/orders"
	"github.com/salescrm/order-service/internal/ranking"
	"github.com/salescrm/order-service/internal/store"
)

func openStore(cfg config.Config) (store.Store, error) {
	if cfg.StoreDriver == "memory" {
		return store.NewMemory(), nil
	}
	return store.OpenSQLite(cfg.SQLitePath)
}

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting", "store_driver", cfg.StoreDriver)

	st, err := openStore(cfg)
	if err != nil {
		obs.Logger.Error("store_open_error", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var pub events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		conn, amqpPub, err := events.SetupAMQP(cfg.AMQPURL, cfg.EventsExchange)
		if err != nil {
			obs.Logger.Error("amqp_setup_error", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		pub = amqpPub
		obs.Logger.Info("amqp_connected", "exchange", cfg.EventsExchange)
	}

	dispatcher := events.NewDispatcher(cfg, events.NewQueue(128), pub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)

	svc := orders.NewService(st, ledger.New(st), dispatcher)
	rankings := ranking.New(st, cfg.TopClientsLimit, cfg.TopSellersLimit)

	app := httpapi.NewApp(cfg, st, svc, rankings, dispatcher)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", dispatcher.BacklogSize(), "worker_count", dispatcher.WorkerCount())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := dispatcher.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	dispatcher.Stop()
	obs.Logger.Info("service_stopped")
}
