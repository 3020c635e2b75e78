package httpprobe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zarni99/subsweep/pkg/retry"
)

type StatusClass int

const (
	StatusUnreachable StatusClass = iota
	StatusOK
	StatusRedirect
	StatusOther
)

func (s StatusClass) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRedirect:
		return "redirect"
	case StatusOther:
		return "other"
	default:
		return "unreachable"
	}
}

// Outcome is the liveness verdict for a single FQDN. Live is true only
// for responses with status 200, 301 or 302.
type Outcome struct {
	FQDN  string
	Live  bool
	Class StatusClass
}

type Config struct {
	Retries    int
	RetryDelay time.Duration
	Timeout    int
}

type Prober struct {
	retries int
	delay   time.Duration
	timeout time.Duration
}

func New(cfg Config) *Prober {
	if cfg.Retries <= 0 {
		cfg.Retries = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5
	}
	return &Prober{
		retries: cfg.Retries,
		delay:   cfg.RetryDelay,
		timeout: time.Duration(cfg.Timeout) * time.Second,
	}
}

func (p *Prober) Retries() int {
	return p.retries
}

// Probe issues a GET to http://{fqdn} and classifies the result. Each
// attempt opens a fresh connection; a non-qualifying status counts as a
// failed attempt and is retried like a connection error.
func (p *Prober) Probe(ctx context.Context, fqdn string) Outcome {
	out := Outcome{FQDN: fqdn, Class: StatusUnreachable}

	err := retry.Do(ctx, p.retries, p.delay, func() error {
		status, err := p.fetch(ctx, fqdn)
		if err != nil {
			return err
		}
		switch status {
		case http.StatusOK:
			out.Class = StatusOK
		case http.StatusMovedPermanently, http.StatusFound:
			out.Class = StatusRedirect
		default:
			out.Class = StatusOther
			return fmt.Errorf("status %d not live", status)
		}
		return nil
	})

	out.Live = err == nil
	return out
}

func (p *Prober) fetch(ctx context.Context, fqdn string) (int, error) {
	client := &http.Client{
		Timeout: p.timeout,
		Transport: &http.Transport{
			DisableKeepAlives: true,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Report 301/302 as-is instead of following them.
			return http.ErrUseLastResponse
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+fqdn, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}
