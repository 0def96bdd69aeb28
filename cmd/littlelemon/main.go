package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drstein77/littlelemon/internal/app"
	"github.com/drstein77/littlelemon/internal/config"
)

func main() {
	const shutdownTimeout = 5 * time.Second

	args := os.Args[1:]
	migrate := len(args) > 0 && args[0] == "migrate"
	if migrate {
		args = args[1:]
	}

	option := config.NewOptions()
	if err := option.ParseFlags(flag.CommandLine, args); err != nil {
		log.Fatalln(err)
	}

	// Create a root context with the possibility of cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := app.NewServer(ctx, option)
	if err != nil {
		log.Fatalln(err)
	}

	if migrate {
		if err := server.Migrate(); err != nil {
			log.Fatalln("migrate:", err)
		}
		return
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signalCh
		server.Log.Info(fmt.Sprintf("Received signal: %+v", sig))

		// Cancel in-flight loads, then stop serving
		cancel()
		server.Shutdown(shutdownTimeout)
	}()

	if err := server.Serve(); err != nil {
		log.Fatalln(err)
	}
}
