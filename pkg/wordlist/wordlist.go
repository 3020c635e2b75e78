package wordlist

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Candidate is one wordlist entry paired with the target domain.
type Candidate struct {
	Word   string
	Domain string
}

func (c Candidate) FQDN() string {
	return c.Word + "." + c.Domain
}

func skip(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

// Count returns the number of candidate lines in the wordlist without
// keeping any of them in memory. Blank lines and comments are not counted.
func Count(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read wordlist: %v", err)
	}
	defer file.Close()

	total := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if !skip(strings.TrimSpace(scanner.Text())) {
			total++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read wordlist: %v", err)
	}
	return total, nil
}

// Stream reads the wordlist line by line and calls fn once per candidate,
// in file order. The whole file is never loaded at once, so fn may block
// (e.g. on an admission gate) to apply backpressure to the read.
func Stream(ctx context.Context, path, domain string, fn func(Candidate)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read wordlist: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		word := strings.TrimSpace(scanner.Text())
		if skip(word) {
			continue
		}
		fn(Candidate{Word: word, Domain: domain})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read wordlist: %v", err)
	}
	return nil
}
