package engine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/zarni99/subsweep/pkg/httpprobe"
	"github.com/zarni99/subsweep/pkg/metrics"
	"github.com/zarni99/subsweep/pkg/resolver"
	"github.com/zarni99/subsweep/pkg/store"
	"github.com/zarni99/subsweep/pkg/wordlist"
)

// Resolver decides whether an FQDN resolves in DNS.
type Resolver interface {
	Resolve(ctx context.Context, fqdn string) resolver.Outcome
}

// Prober decides whether a resolved FQDN serves live HTTP.
type Prober interface {
	Probe(ctx context.Context, fqdn string) httpprobe.Outcome
}

type Config struct {
	Domain        string
	WordlistPath  string
	OutputDir     string
	MaxConcurrent int
	RateLimit     float64
	Silent        bool
}

type Summary struct {
	Processed     int
	DNSHits       int
	HTTPHits      int
	PersistErrors int
	Elapsed       time.Duration
}

// Engine wires the candidate stream through the admission gate, the DNS
// and HTTP stages, the store and the counters.
type Engine struct {
	cfg      Config
	resolver Resolver
	prober   Prober
}

func New(cfg Config, res Resolver, prober Prober) *Engine {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	return &Engine{cfg: cfg, resolver: res, prober: prober}
}

// Run streams the wordlist through the pipeline and blocks until every
// admitted candidate has finished. The wordlist is checked before the
// output files are truncated, so a missing wordlist never clobbers the
// results of an earlier run.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	total, err := wordlist.Count(e.cfg.WordlistPath)
	if err != nil {
		return Summary{}, err
	}

	st, err := store.New(e.cfg.OutputDir, e.cfg.Domain)
	if err != nil {
		return Summary{}, err
	}
	defer st.Close()

	if !e.cfg.Silent {
		fmt.Printf("[%s] Loaded %s entries from wordlist\n",
			color.CyanString("INFO"),
			color.GreenString("%d", total))
	}

	tracker := metrics.NewTracker(total)
	bar := e.newBar(total)

	var limiter *rate.Limiter
	if e.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(e.cfg.RateLimit), 1)
	}

	// Admission gate: the streaming read blocks here whenever
	// MaxConcurrent candidates are in flight, which also bounds how many
	// candidates exist in memory at once.
	sem := make(chan struct{}, e.cfg.MaxConcurrent)
	var wg sync.WaitGroup

	streamErr := wordlist.Stream(ctx, e.cfg.WordlistPath, e.cfg.Domain, func(c wordlist.Candidate) {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
		}
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			e.process(ctx, c, st, tracker, bar)
		}()
	})

	wg.Wait()

	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	snap := tracker.Snapshot()
	counts := st.Counts()
	summary := Summary{
		Processed:     snap.Processed,
		DNSHits:       counts.DNS,
		HTTPHits:      counts.HTTP,
		PersistErrors: counts.PersistErrors,
		Elapsed:       snap.Elapsed,
	}

	if streamErr != nil {
		return summary, streamErr
	}

	if !e.cfg.Silent {
		e.printSummary(summary)
	}
	return summary, nil
}

func (e *Engine) process(ctx context.Context, c wordlist.Candidate, st *store.Store, tracker *metrics.Tracker, bar *progressbar.ProgressBar) {
	fqdn := c.FQDN()

	dnsHit := false
	httpHit := false

	if out := e.resolver.Resolve(ctx, fqdn); out.Resolved {
		dnsHit = true
		st.RecordDNSHit(fqdn)

		if probe := e.prober.Probe(ctx, fqdn); probe.Live {
			httpHit = true
			st.RecordHTTPHit(fqdn)
		}
	}

	snap := tracker.Done(dnsHit, httpHit)
	if bar != nil {
		bar.Add(1)
		bar.Describe(fmt.Sprintf("dns:%d http:%d", snap.DNSHits, snap.HTTPHits))
	}
}

func (e *Engine) newBar(total int) *progressbar.ProgressBar {
	if e.cfg.Silent {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("brute-forcing subdomains"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionFullWidth(),
	)
}

func (e *Engine) printSummary(s Summary) {
	fmt.Printf("[%s] Scan complete: %s DNS records, %s live HTTP servers (%d candidates in %s)\n",
		color.CyanString("INFO"),
		color.GreenString("%d", s.DNSHits),
		color.GreenString("%d", s.HTTPHits),
		s.Processed,
		s.Elapsed.Round(time.Second))

	if s.PersistErrors > 0 {
		fmt.Printf("[%s] %d results could not be written to disk\n",
			color.YellowString("WARN"), s.PersistErrors)
	}
}
