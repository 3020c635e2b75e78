package errhandler

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var PrintBannerFunc func()

func SetPrintBannerFunc(f func()) {
	PrintBannerFunc = f
}

// SetupFlagHandling replaces the default flag error output with a short
// colorized usage line; -h and --help still get the full flag listing.
func SetupFlagHandling() {
	r, w, _ := os.Pipe()
	originalStderr := os.Stderr
	os.Stderr = w

	originalUsage := flag.Usage
	flag.Usage = func() {
		os.Stderr = originalStderr

		for _, arg := range os.Args {
			if arg == "-h" || arg == "--help" {
				originalUsage()
				return
			}
		}

		if PrintBannerFunc != nil {
			PrintBannerFunc()
		}

		usageText := color.HiCyanString("Usage:") + " " +
			color.HiWhiteString("./subsweep") + " " +
			color.HiYellowString("-d") + " " +
			color.HiGreenString("example.com") + " " +
			color.HiYellowString("-w") + " " +
			color.HiGreenString("wordlist.txt")

		helpText := color.HiCyanString("Use") + " " +
			color.HiYellowString("-h") + " " +
			color.HiCyanString("for detailed help information")

		fmt.Println(usageText)
		fmt.Println(helpText)
		os.Exit(2)
	}

	go func() {
		_, _ = io.ReadAll(r)
		_ = r.Close()
	}()
}
