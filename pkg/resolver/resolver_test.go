package resolver

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startDNSServer runs a local UDP DNS server that answers A queries for
// the given names and NXDOMAIN for everything else.
func startDNSServer(t *testing.T, records map[string]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, req *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(req)

		name := req.Question[0].Name
		if ip, ok := records[name]; ok {
			rr, err := dns.NewRR(fmt.Sprintf("%s 60 IN A %s", name, ip))
			if err == nil {
				m.Answer = append(m.Answer, rr)
			}
		} else {
			m.Rcode = dns.RcodeNameError
		}
		w.WriteMsg(m)
	})

	srv := &dns.Server{PacketConn: pc, Handler: mux}
	go srv.ActivateAndServe()
	t.Cleanup(func() { srv.Shutdown() })

	return pc.LocalAddr().String()
}

func newTestResolver(server string, retries int) *Resolver {
	return New(Config{
		Resolvers:  []string{server},
		Retries:    retries,
		RetryDelay: 10 * time.Millisecond,
		Timeout:    1,
	})
}

func TestResolveOutcomes(t *testing.T) {
	server := startDNSServer(t, map[string]string{
		"www.example.com.":  "192.0.2.10",
		"mail.example.com.": "192.0.2.11",
	})

	tests := []struct {
		name         string
		fqdn         string
		wantResolved bool
	}{
		{"known A record", "www.example.com", true},
		{"second known record", "mail.example.com", true},
		{"nxdomain", "doesnotexist123.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newTestResolver(server, 1).Resolve(context.Background(), tt.fqdn)
			if out.FQDN != tt.fqdn {
				t.Errorf("FQDN = %q, want %q", out.FQDN, tt.fqdn)
			}
			if out.Resolved != tt.wantResolved {
				t.Errorf("Resolved = %v, want %v", out.Resolved, tt.wantResolved)
			}
		})
	}
}

func TestResolveRetriesExhausted(t *testing.T) {
	server := startDNSServer(t, nil)

	start := time.Now()
	out := newTestResolver(server, 3).Resolve(context.Background(), "www.example.com")
	if out.Resolved {
		t.Error("expected no resolution")
	}
	// Two retry delays between three attempts.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected retry delays, finished in %v", elapsed)
	}
}

func TestNewDefaults(t *testing.T) {
	r := New(Config{})
	if r.Retries() != 3 {
		t.Errorf("Retries() = %d, want 3", r.Retries())
	}
	if len(r.resolvers) != len(DefaultResolvers) {
		t.Errorf("resolvers = %v, want defaults", r.resolvers)
	}
	if r.client.Timeout != 3*time.Second {
		t.Errorf("client timeout = %v, want 3s", r.client.Timeout)
	}
}
