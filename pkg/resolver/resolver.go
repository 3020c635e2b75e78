package resolver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"

	"github.com/zarni99/subsweep/pkg/retry"
)

// Outcome is the reachability verdict for a single FQDN.
type Outcome struct {
	FQDN     string
	Resolved bool
}

type Config struct {
	Resolvers  []string
	Retries    int
	RetryDelay time.Duration
	Timeout    int
}

var DefaultResolvers = []string{
	"8.8.8.8:53",
	"8.8.4.4:53",
	"1.1.1.1:53",
	"9.9.9.9:53",
	"208.67.222.222:53",
}

type Resolver struct {
	client    *dns.Client
	resolvers []string
	retries   int
	delay     time.Duration
	next      uint32
}

func New(cfg Config) *Resolver {
	resolvers := cfg.Resolvers
	if len(resolvers) == 0 {
		resolvers = DefaultResolvers
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3
	}

	c := new(dns.Client)
	c.Timeout = time.Duration(cfg.Timeout) * time.Second

	return &Resolver{
		client:    c,
		resolvers: resolvers,
		retries:   cfg.Retries,
		delay:     cfg.RetryDelay,
	}
}

func (r *Resolver) Retries() int {
	return r.retries
}

// Resolve queries for A records until one attempt succeeds or the retry
// budget runs out. NXDOMAIN and transient lookup failures are treated the
// same: no resolution this attempt.
func (r *Resolver) Resolve(ctx context.Context, fqdn string) Outcome {
	err := retry.Do(ctx, r.retries, r.delay, func() error {
		return r.lookupA(fqdn)
	})
	return Outcome{
		FQDN:     fqdn,
		Resolved: err == nil,
	}
}

func (r *Resolver) lookupA(fqdn string) error {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(fqdn), dns.TypeA)
	m.RecursionDesired = true

	server := r.resolvers[int(atomic.AddUint32(&r.next, 1))%len(r.resolvers)]
	resp, _, err := r.client.Exchange(m, server)
	if err != nil {
		return err
	}

	for _, answer := range resp.Answer {
		if _, ok := answer.(*dns.A); ok {
			return nil
		}
	}
	return fmt.Errorf("no A records for %s", fqdn)
}
