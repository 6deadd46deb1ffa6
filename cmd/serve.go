package cmd

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/config"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/logger"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/score"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/server"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/session"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr      string
	advertise bool
	strategy  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a drawing session over websocket",
	Run:   serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Address to listen on (default from settings)")
	serveCmd.Flags().BoolVar(&serveFlags.advertise, "advertise", false, "Announce the server on the local network")
	serveCmd.Flags().StringVar(&serveFlags.strategy, "strategy", "", "Scoring strategy")
}

func serve(cmd *cobra.Command, args []string) {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal("Failed to load settings: ", err)
	}
	if serveFlags.addr != "" {
		settings.ListenAddr = serveFlags.addr
	}
	if cmd.Flags().Changed("advertise") {
		settings.Advertise = serveFlags.advertise
	}
	if serveFlags.strategy != "" {
		settings.Strategy = serveFlags.strategy
	}

	strategy, err := score.New(settings.Strategy, settings.Scoring())
	if err != nil {
		log.Fatal(err)
	}
	table, err := loadShapes(settings)
	if err != nil {
		log.Fatal(err)
	}

	sess := session.New(session.Options{Strategy: strategy, Shapes: table, Padding: settings.CanvasPadding})
	defer sess.Close()

	ln, err := net.Listen("tcp", settings.ListenAddr)
	if err != nil {
		log.Fatal("Failed to listen: ", err)
	}
	log.Printf("Listening on %s", ln.Addr())

	if settings.Advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		mdnsServer, err := server.Advertise(port)
		if err != nil {
			log.Printf("Failed to advertise: %v", err)
		} else {
			defer mdnsServer.Shutdown()
			logger.Get().Info("advertising", "service", server.ServiceType, "port", port)
		}
	}

	httpServer := &http.Server{
		Handler:           server.New(sess, table.Names()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Server failed: ", err)
	}
	log.Printf("Shutting down")
}
