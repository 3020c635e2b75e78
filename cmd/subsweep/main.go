package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/zarni99/subsweep/pkg/config"
	"github.com/zarni99/subsweep/pkg/engine"
	"github.com/zarni99/subsweep/pkg/errhandler"
	"github.com/zarni99/subsweep/pkg/httpprobe"
	"github.com/zarni99/subsweep/pkg/portscan"
	"github.com/zarni99/subsweep/pkg/resolver"
	"github.com/zarni99/subsweep/pkg/store"
)

const (
	appName    = "SubSweep"
	appVersion = "1.0.0"

	banner = `
           _
 ___ _   _| |__  _____      _____  ___ _ __
/ __| | | | '_ \/ __\ \ /\ / / _ \/ _ \ '_ \
\__ \ |_| | |_) \__ \\ V  V /  __/  __/ |_) |
|___/\__,_|_.__/|___/ \_/\_/ \___|\___| .__/
                                      |_|
`
)

var (
	configFile    string
	targetDomain  string
	wordlistPath  string
	threads       int
	dnsRetries    int
	httpRetries   int
	httpTimeout   int
	rateLimit     float64
	resolversFlag string
	runScan       bool
	silent        bool

	bannerPrinted bool

	info   = color.HiCyanString
	errMsg = color.HiRedString
)

func init() {
	flag.StringVar(&configFile, "c", "", "Configuration file path (YAML or JSON)")
	flag.StringVar(&targetDomain, "d", "", "Target domain")
	flag.StringVar(&wordlistPath, "w", "", "Wordlist path for brute forcing")
	flag.IntVar(&threads, "t", 0, "Maximum concurrent candidates")
	flag.IntVar(&dnsRetries, "dns-retries", 0, "DNS resolution attempts per candidate")
	flag.IntVar(&httpRetries, "http-retries", 0, "HTTP probe attempts per candidate")
	flag.IntVar(&httpTimeout, "timeout", 0, "HTTP request timeout in seconds")
	flag.Float64Var(&rateLimit, "rate", 0, "Candidates admitted per second (0 = unlimited)")
	flag.StringVar(&resolversFlag, "r", "", "Comma-separated DNS resolvers (ip or ip:port)")
	flag.BoolVar(&runScan, "scan", false, "Run nmap port/vuln scan over resolved subdomains")
	flag.BoolVar(&silent, "silent", false, "Suppress banner and progress output")
}

func main() {
	errhandler.SetPrintBannerFunc(printBanner)
	errhandler.SetupFlagHandling()

	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		printBanner()
		fmt.Printf("%s %v\n", errMsg("ERROR:"), err)
		os.Exit(1)
	}

	if !cfg.Silent {
		printBanner()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.Config{
		Domain:        cfg.Domain,
		WordlistPath:  cfg.Wordlist,
		OutputDir:     cfg.OutputDir,
		MaxConcurrent: cfg.Threads,
		RateLimit:     cfg.RateLimit,
		Silent:        cfg.Silent,
	}, newResolver(cfg), newProber(cfg))

	startTime := time.Now()
	if _, err := eng.Run(ctx); err != nil {
		fmt.Printf("%s %v\n", errMsg("ERROR:"), err)
		os.Exit(1)
	}

	if runScan {
		scanner := portscan.NewScanner(
			store.DNSOnlyPath(cfg.OutputDir, cfg.Domain),
			store.PortScanPath(cfg.OutputDir, cfg.Domain),
		)
		if err := scanner.Run(ctx); err != nil {
			fmt.Printf("%s %v\n", errMsg("ERROR:"), err)
			os.Exit(1)
		}
	}

	if !cfg.Silent {
		fmt.Printf("[%s] Finished in %s\n",
			info("INFO"), formatDuration(time.Since(startTime)))
	}
}

func buildConfig() (config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		loaded, err := config.LoadConfig(configFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	// Flags override config file values when set.
	if targetDomain != "" {
		cfg.Domain = targetDomain
	}
	if wordlistPath != "" {
		cfg.Wordlist = wordlistPath
	}
	if threads > 0 {
		cfg.Threads = threads
	}
	if dnsRetries > 0 {
		cfg.DNSRetries = dnsRetries
	}
	if httpRetries > 0 {
		cfg.HTTPRetries = httpRetries
	}
	if httpTimeout > 0 {
		cfg.HTTPTimeout = httpTimeout
	}
	if rateLimit > 0 {
		cfg.RateLimit = rateLimit
	}
	if resolversFlag != "" {
		cfg.Resolvers = parseResolvers(resolversFlag)
	}
	if silent {
		cfg.Silent = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if !isValidDomain(cfg.Domain) {
		return cfg, fmt.Errorf("invalid target domain: %s", cfg.Domain)
	}
	return cfg, nil
}

func newResolver(cfg config.Config) *resolver.Resolver {
	return resolver.New(resolver.Config{
		Resolvers:  cfg.Resolvers,
		Retries:    cfg.DNSRetries,
		RetryDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		Timeout:    cfg.DNSTimeout,
	})
}

func newProber(cfg config.Config) *httpprobe.Prober {
	return httpprobe.New(httpprobe.Config{
		Retries:    cfg.HTTPRetries,
		RetryDelay: time.Duration(cfg.RetryDelayMs) * time.Millisecond,
		Timeout:    cfg.HTTPTimeout,
	})
}

func parseResolvers(list string) []string {
	var resolvers []string
	for _, r := range strings.Split(list, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if !strings.Contains(r, ":") {
			r += ":53"
		}
		resolvers = append(resolvers, r)
	}
	return resolvers
}

func isValidDomain(domain string) bool {
	if domain == "" {
		return false
	}

	domain = strings.TrimPrefix(strings.TrimPrefix(domain, "http://"), "https://")
	if idx := strings.Index(domain, "/"); idx != -1 {
		domain = domain[:idx]
	}

	parts := strings.Split(domain, ".")
	if len(parts) < 2 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

func printBanner() {
	if bannerPrinted {
		return
	}

	for _, line := range strings.Split(banner, "\n") {
		if line != "" {
			fmt.Println(color.HiCyanString(line))
		}
	}
	fmt.Printf("%s %s\n\n", color.HiMagentaString(appName), color.HiYellowString("v"+appVersion))

	bannerPrinted = true
}
