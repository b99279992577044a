package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepkv93/workout-auth-service/internal/di"
)

func main() {
	a, err := di.InitializeApp()
	if err != nil {
		log.Fatal(err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Serve() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case err := <-serveErr:
		if err != nil {
			a.Logger.Error("http server stopped", "error", err)
		}
	}

	if err := a.Shutdown(context.Background()); err != nil {
		a.Logger.Error("shutdown completed with errors", "error", err)
		os.Exit(1)
	}
}
