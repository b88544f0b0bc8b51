package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fieldops/internal/app"
	"fieldops/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("загрузка конфига: %v", err)
	}

	ctx := context.Background()

	a := app.New(cfg)
	if err := a.Init(ctx); err != nil {
		log.Fatalf("инициализация: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
	}()

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			log.Printf("сервер: %v", err)
		}
	}

	a.Shutdown(ctx)
}
