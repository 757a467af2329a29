// Package web provides the HTTP server for go-webinarform
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-webinarform/internal/config"
	"golang.org/x/crypto/acme/autocert"
)

// WebServer represents the web server
type WebServer struct {
	Router        *gin.Engine
	Config        *config.WebConfig
	StartTime     time.Time // Track server start time for uptime calculations
	robotsTxtPath string    // Path to robots.txt file if it exists

	trustedProxies []*net.IPNet

	mux     sync.Mutex
	httpSrv *http.Server
}

// loopback and private ranges (nginx, etc.)
var trustedProxies = []string{"127.0.0.1/32", "::1/128", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

// NewServer creates a new web server instance
func NewServer(webconfig *config.WebConfig) *WebServer {
	if webconfig.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &WebServer{
		Router: router,
		Config: webconfig,
	}

	router.Use(server.ApacheLogFormat(), gin.Recovery())

	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("[WEB]: Warning: failed to set trusted proxies: %v", err)
	}
	for _, cidr := range trustedProxies {
		if _, ipnet, err := net.ParseCIDR(cidr); err == nil {
			server.trustedProxies = append(server.trustedProxies, ipnet)
		}
	}

	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// SSL headers only when the app terminates TLS itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.TerminatesTLS() {
		secureConfig.SSLRedirect = true
		secureConfig.SSLProxyHeaders = map[string]string{"X-Forwarded-Proto": "https"}
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	router.Use(secure.New(secureConfig))

	if webconfig.RobotsTxt != "" {
		if _, err := os.Stat(webconfig.RobotsTxt); err == nil {
			server.robotsTxtPath = webconfig.RobotsTxt
			log.Printf("[WEB]: Found robots.txt file at: %s", webconfig.RobotsTxt)
		}
	}

	router.Use(server.ReverseProxyMiddleware())
	if webconfig.BlockBots {
		router.Use(server.BotDetectionMiddleware())
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/", s.homePage)
	s.Router.HEAD("/", s.homePageHead)

	// the page has no icon, answer without a body to keep browsers quiet
	s.Router.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	s.Router.GET("/robots.txt", func(c *gin.Context) {
		if s.robotsTxtPath != "" {
			c.File(s.robotsTxtPath)
		} else {
			c.String(http.StatusOK, "User-agent: *\nDisallow:\n")
		}
	})
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

// Start starts the web server with SSL support if configured.
// It blocks until the server stops and returns http.ErrServerClosed after Shutdown.
func (s *WebServer) Start() error {
	addr := ":" + strconv.Itoa(s.Config.ListenPort)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mux.Lock()
	s.httpSrv = srv
	s.StartTime = time.Now()
	s.mux.Unlock()

	switch {
	case len(s.Config.AutocertHosts) > 0:
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(s.Config.AutocertHosts...),
			Cache:      autocert.DirCache(s.Config.AutocertCacheDir),
		}
		srv.TLSConfig = manager.TLSConfig()
		log.Printf("[WEB]: Starting HTTPS server on %s (autocert: %s)", addr, strings.Join(s.Config.AutocertHosts, ","))
		return srv.ListenAndServeTLS("", "")
	case s.Config.SSL:
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", addr)
		return srv.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
	default:
		log.Printf("[WEB]: Starting HTTP server on %s", addr)
		return srv.ListenAndServe()
	}
}

// Shutdown gracefully stops a server started with Start
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	srv := s.httpSrv
	s.mux.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Uptime returns the time since Start was called, zero if not started
func (s *WebServer) Uptime() time.Duration {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime)
}

var badBots = []string{"acunetix", "ahref", "census", "chatgpt", "crawler", "curl", "go-http",
	"httrack", "mj12", "paloalto", "python", "semrush", "wget"}

// BotDetectionMiddleware rejects requests from well-known scrapers and scanners
func (s *WebServer) BotDetectionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := strings.ToLower(c.GetHeader("User-Agent"))
		for _, pattern := range badBots {
			if strings.Contains(userAgent, pattern) {
				log.Printf("[WEB]: Bot blocked: %s from %s", c.GetHeader("User-Agent"), c.ClientIP())
				c.String(http.StatusForbidden, "403")
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// isTrustedProxy reports whether the direct peer of the request is a trusted proxy
func (s *WebServer) isTrustedProxy(c *gin.Context) bool {
	ip := net.ParseIP(c.RemoteIP())
	if ip == nil {
		return false
	}
	for _, ipnet := range s.trustedProxies {
		if ipnet.Contains(ip) {
			return true
		}
	}
	return false
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy.
// Headers from untrusted peers are ignored.
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.isTrustedProxy(c) {
			c.Next()
			return
		}

		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

// ApacheLogFormat writes one combined-log-format line per request
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}
