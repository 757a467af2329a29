package main

import (
	"testing"

	"github.com/go-while/go-webinarform/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestApplyFlags(t *testing.T) {
	testCases := []struct {
		name   string
		start  func(*config.WebConfig)
		flags  webFlags
		expect func(*config.WebConfig)
	}{
		{
			name:   "no flags keeps defaults",
			expect: func(cfg *config.WebConfig) {},
		},
		{
			name:  "webssl moves default port",
			flags: webFlags{ssl: true, certFile: "fullchain.pem", keyFile: "privkey.pem"},
			expect: func(cfg *config.WebConfig) {
				cfg.SSL = true
				cfg.ListenPort = config.DefaultTLSPort
				cfg.CertFile = "fullchain.pem"
				cfg.KeyFile = "privkey.pem"
			},
		},
		{
			name:  "webssl keeps port from config file",
			start: func(cfg *config.WebConfig) { cfg.ListenPort = 18443 },
			flags: webFlags{ssl: true},
			expect: func(cfg *config.WebConfig) {
				cfg.SSL = true
				cfg.ListenPort = 18443
			},
		},
		{
			name:  "webport wins over webssl default",
			flags: webFlags{ssl: true, port: 8443},
			expect: func(cfg *config.WebConfig) {
				cfg.SSL = true
				cfg.ListenPort = 8443
			},
		},
		{
			name:  "autocert implies ssl and port 443",
			flags: webFlags{autocertHosts: "webinar.example.org, www.webinar.example.org,", autocertCache: "/var/cache/acme"},
			expect: func(cfg *config.WebConfig) {
				cfg.SSL = true
				cfg.ListenPort = config.AutocertPort
				cfg.AutocertHosts = []string{"webinar.example.org", "www.webinar.example.org"}
				cfg.AutocertCacheDir = "/var/cache/acme"
			},
		},
		{
			name:  "autocert replaces hosts from config file",
			start: func(cfg *config.WebConfig) { cfg.AutocertHosts = []string{"old.example.org"} },
			flags: webFlags{autocertHosts: "new.example.org"},
			expect: func(cfg *config.WebConfig) {
				cfg.SSL = true
				cfg.ListenPort = config.AutocertPort
				cfg.AutocertHosts = []string{"new.example.org"}
			},
		},
		{
			name:   "blockbots",
			flags:  webFlags{blockBots: true},
			expect: func(cfg *config.WebConfig) { cfg.BlockBots = true },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := config.NewDefaultConfig().Server.Web
			if tc.start != nil {
				tc.start(&got)
			}
			want := got
			want.AutocertHosts = append([]string(nil), got.AutocertHosts...)
			tc.expect(&want)

			applyFlags(&got, tc.flags)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
			if tc.flags.certFile != "" || tc.flags.autocertHosts != "" {
				if err := got.Validate(); err != nil {
					t.Errorf("Validate() after flags: %v", err)
				}
			}
		})
	}
}
