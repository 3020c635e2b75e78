package portscan

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Scanner is a thin wrapper around the external nmap binary. It reads
// subdomains from an input file (the natural feed is the DNS-only output
// of an enumeration run), resolves each to an IP and appends the raw
// nmap report to the output file. Targets are scanned sequentially with
// a randomized delay between them.
type Scanner struct {
	inputPath  string
	outputPath string
}

func NewScanner(inputPath, outputPath string) *Scanner {
	return &Scanner{
		inputPath:  inputPath,
		outputPath: outputPath,
	}
}

func (s *Scanner) Run(ctx context.Context) error {
	targets, err := loadTargets(s.inputPath)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Printf("[%s] No subdomains to scan in %s\n",
			color.CyanString("INFO"), s.inputPath)
		return nil
	}

	fmt.Printf("[%s] Resolving and scanning %s subdomains\n",
		color.CyanString("INFO"),
		color.GreenString("%d", len(targets)))

	for i, target := range targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ip, err := resolveIP(target)
		if err != nil {
			fmt.Printf("[%s] %s did not resolve, skipping\n",
				color.YellowString("WARN"), target)
			continue
		}

		s.scan(ctx, target, ip)

		if i < len(targets)-1 {
			// Random gap between targets to stay low-profile.
			delay := time.Duration(5+rand.Intn(11)) * time.Second
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	fmt.Printf("[%s] Scanning complete, results saved in %s\n",
		color.CyanString("INFO"), s.outputPath)
	return nil
}

func loadTargets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subdomain file: %v", err)
	}
	defer file.Close()

	var targets []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			targets = append(targets, line)
		}
	}
	return targets, scanner.Err()
}

func resolveIP(host string) (string, error) {
	addrs, err := net.LookupHost(host)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no addresses for %s", host)
	}
	return addrs[0], nil
}

// buildArgs assembles the nmap invocation with randomized source port,
// decoy count and packet padding.
func buildArgs(ip string) []string {
	sourcePorts := []int{53, 123, 443, 8080}
	dataLengths := []int{16, 32, 64}

	sourcePort := sourcePorts[rand.Intn(len(sourcePorts))]
	decoys := 3 + rand.Intn(4)
	dataLength := dataLengths[rand.Intn(len(dataLengths))]

	return []string{
		"-sS", "-p-", "-T2", "-Pn", "--open", "-sV", "--script=vuln",
		"--source-port", strconv.Itoa(sourcePort),
		"-D", fmt.Sprintf("RND:%d", decoys),
		"--data-length", strconv.Itoa(dataLength),
		"--disable-arp-ping",
		"-oN", "-",
		ip,
	}
}

func (s *Scanner) scan(ctx context.Context, subdomain, ip string) {
	fmt.Printf("[%s] Scanning %s (%s)\n",
		color.CyanString("SCAN"), subdomain, ip)

	cmd := exec.CommandContext(ctx, "nmap", buildArgs(ip)...)
	out, err := cmd.Output()
	if err != nil {
		fmt.Printf("[%s] nmap failed for %s: %v\n",
			color.YellowString("WARN"), subdomain, err)
		return
	}

	if err := s.appendReport(subdomain, ip, out); err != nil {
		fmt.Printf("[%s] failed to save report for %s: %v\n",
			color.RedString("ERROR"), subdomain, err)
		return
	}

	fmt.Printf("[%s] Scan complete for %s\n", color.GreenString("DONE"), subdomain)
}

func (s *Scanner) appendReport(subdomain, ip string, report []byte) error {
	f, err := os.OpenFile(s.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n\n[SCAN RESULTS FOR %s (%s)]\n", subdomain, ip); err != nil {
		return err
	}
	if _, err := f.Write(report); err != nil {
		return err
	}
	_, err = fmt.Fprintf(f, "\n%s\n", strings.Repeat("=", 80))
	return err
}
