// Web server for the webinar registration page
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-webinarform/internal/config"
	"github.com/go-while/go-webinarform/internal/web"
)

// webFlags holds the command-line overrides for the web config
type webFlags struct {
	port          int
	ssl           bool
	certFile      string
	keyFile       string
	autocertHosts string
	autocertCache string
	blockBots     bool
}

var (
	// command-line flags
	configFile string
	pprofAddr  string
	flags      webFlags
)

var appVersion = "-unset-"

const shutdownTimeout = 10 * time.Second

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&configFile, "config", "", "YAML config file (optional, defaults are used without it)")
	flag.IntVar(&flags.port, "webport", 0, "Web server port (default: 11980 (no ssl), 19443 (webssl) or 443 (autocert))")
	flag.BoolVar(&flags.ssl, "webssl", false, "Enable SSL")
	flag.StringVar(&flags.certFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&flags.keyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&flags.autocertHosts, "autocert", "", "comma separated hostnames to request Let's Encrypt certificates for (implies -webssl)")
	flag.StringVar(&flags.autocertCache, "autocert-cache", "", "directory to cache ACME certificates (default: data/autocert)")
	flag.BoolVar(&flags.blockBots, "blockbots", false, "Reject requests from known scrapers and scanners with 403")
	flag.StringVar(&pprofAddr, "pprof", "", "start pprof web listener on this address (e.g. 127.0.0.1:51111)")
	flag.Parse()

	log.Printf("Starting go-webinarform: Web Server (version: %s)", appVersion)

	mainConfig, err := config.LoadFile(configFile)
	if err != nil {
		log.Fatalf("[WEB]: Error loading config: %v", err)
	}
	mainConfig.AppVersion = appVersion
	webConfig := &mainConfig.Server.Web

	applyFlags(webConfig, flags)
	log.Printf("[WEB]: Using WEB configuration: %#v", webConfig)

	if err := webConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid web configuration: %v", err)
	}
	if err := web.VerifyDocument(web.Document()); err != nil {
		log.Fatalf("[WEB]: %v", err)
	}

	if pprofAddr != "" {
		p := prof.NewProf()
		go p.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof listening on %s", pprofAddr)
	}

	protocol := "http"
	if webConfig.TerminatesTLS() {
		protocol = "https"
	}
	hostname := "localhost"
	if mainConfig.Server.Hostname != "" {
		hostname = mainConfig.Server.Hostname
	}
	log.Printf("[WEB]: Starting go-webinarform web server on %s://%s:%d", protocol, hostname, webConfig.ListenPort)

	server := web.NewServer(webConfig)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error during shutdown: %v (uptime %s)", err, server.Uptime().Round(time.Second))
		return
	}
	log.Printf("[WEB]: Graceful shutdown completed (uptime %s)", server.Uptime().Round(time.Second))
} // end main

// applyFlags overrides cfg with the command-line flags that were set
func applyFlags(cfg *config.WebConfig, f webFlags) {
	if f.ssl {
		cfg.SSL = true
		log.Printf("[WEB]: SSL enabled via command-line flag")
	}
	if f.autocertHosts != "" {
		cfg.SSL = true
		cfg.AutocertHosts = nil
		for _, host := range strings.Split(f.autocertHosts, ",") {
			if host = strings.TrimSpace(host); host != "" {
				cfg.AutocertHosts = append(cfg.AutocertHosts, host)
			}
		}
		log.Printf("[WEB]: Autocert hosts set: %v", cfg.AutocertHosts)
	}
	if f.autocertCache != "" {
		cfg.AutocertCacheDir = f.autocertCache
	}
	switch {
	case f.port > 0:
		cfg.ListenPort = f.port
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", cfg.ListenPort)
	case cfg.ListenPort != config.DefaultListenPort:
		// port came from the config file
	case len(cfg.AutocertHosts) > 0:
		cfg.ListenPort = config.AutocertPort
	case cfg.SSL:
		cfg.ListenPort = config.DefaultTLSPort
	}
	if f.certFile != "" {
		cfg.CertFile = f.certFile
		log.Printf("[WEB]: SSL cert file set: %s", cfg.CertFile)
	}
	if f.keyFile != "" {
		cfg.KeyFile = f.keyFile
		log.Printf("[WEB]: SSL key file set: %s", cfg.KeyFile)
	}
	if f.blockBots {
		cfg.BlockBots = true
	}
}
