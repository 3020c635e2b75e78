package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
)

// Store owns the two result tiers and their output files. A hit is
// inserted into the in-memory set and appended to the file under one
// lock, so an FQDN can never be written twice even when two goroutines
// discover it at the same time. The sets are authoritative for counts;
// the files are a durable, line-per-FQDN view in discovery order.
type Store struct {
	dnsOnly    tier
	dnsAndHTTP tier

	errMu         sync.Mutex
	persistErrors int
}

type Counts struct {
	DNS           int
	HTTP          int
	PersistErrors int
}

type tier struct {
	mu   sync.Mutex
	seen map[string]struct{}
	file *os.File
}

func DNSOnlyPath(dir, domain string) string {
	return filepath.Join(dir, domain+"_dns_only.txt")
}

func DNSAndHTTPPath(dir, domain string) string {
	return filepath.Join(dir, domain+"_dns_and_http.txt")
}

func PortScanPath(dir, domain string) string {
	return filepath.Join(dir, domain+"_portscan.txt")
}

// New creates dir if needed and truncates both output files. Any failure
// here is fatal for the run: without the files there is nowhere to
// persist results.
func New(dir, domain string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %v", err)
	}

	dnsFile, err := os.Create(DNSOnlyPath(dir, domain))
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %v", err)
	}
	httpFile, err := os.Create(DNSAndHTTPPath(dir, domain))
	if err != nil {
		dnsFile.Close()
		return nil, fmt.Errorf("failed to create output file: %v", err)
	}

	return &Store{
		dnsOnly:    tier{seen: make(map[string]struct{}), file: dnsFile},
		dnsAndHTTP: tier{seen: make(map[string]struct{}), file: httpFile},
	}, nil
}

// RecordDNSHit inserts fqdn into the DNS-only tier. It reports whether
// the fqdn was newly inserted; repeat calls are no-ops.
func (s *Store) RecordDNSHit(fqdn string) bool {
	return s.record(&s.dnsOnly, fqdn)
}

// RecordHTTPHit inserts fqdn into the DNS+HTTP tier. Callers only invoke
// it after a DNS hit, which keeps this tier a subset of the other.
func (s *Store) RecordHTTPHit(fqdn string) bool {
	return s.record(&s.dnsAndHTTP, fqdn)
}

func (s *Store) record(t *tier, fqdn string) bool {
	inserted, err := t.record(fqdn)
	if err != nil {
		// A failed append must not abort the run. The hit stays in the
		// in-memory set; only the on-disk view is missing the line.
		s.errMu.Lock()
		s.persistErrors++
		s.errMu.Unlock()
		fmt.Fprintf(os.Stderr, "[%s] failed to persist %s: %v\n",
			color.RedString("ERROR"), fqdn, err)
	}
	return inserted
}

func (t *tier) record(fqdn string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[fqdn]; ok {
		return false, nil
	}
	t.seen[fqdn] = struct{}{}

	if _, err := t.file.WriteString(fqdn + "\n"); err != nil {
		return true, err
	}
	// Flush to stable storage so an interrupted run keeps its partial
	// results.
	return true, t.file.Sync()
}

func (s *Store) Counts() Counts {
	s.dnsOnly.mu.Lock()
	dns := len(s.dnsOnly.seen)
	s.dnsOnly.mu.Unlock()

	s.dnsAndHTTP.mu.Lock()
	http := len(s.dnsAndHTTP.seen)
	s.dnsAndHTTP.mu.Unlock()

	s.errMu.Lock()
	persist := s.persistErrors
	s.errMu.Unlock()

	return Counts{DNS: dns, HTTP: http, PersistErrors: persist}
}

func (s *Store) Close() error {
	err := s.dnsOnly.file.Close()
	if cerr := s.dnsAndHTTP.file.Close(); err == nil {
		err = cerr
	}
	return err
}
