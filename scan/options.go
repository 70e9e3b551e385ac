// Package scan runs the method reference analysis over a tree of Java sources
package scan

import (
	"runtime"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("lambdaref.scan")

// MinLanguageLevel is the first Java release with method references
const MinLanguageLevel = 8

// Options configure a scan
type Options struct {
	// Include and Exclude are doublestar globs matched against slash
	// separated paths relative to each scanned root. An empty Include
	// accepts every .java file.
	Include []string
	Exclude []string
	// Workers bounds the number of files parsed or analyzed at once
	Workers int
	// LanguageLevel is the Java release the sources target
	LanguageLevel int
	// Strict aborts on resolver faults instead of skipping the lambda
	Strict bool
}

// DefaultOptions returns the options used when no configuration is given
func DefaultOptions() Options {
	return Options{
		Workers:       runtime.NumCPU(),
		LanguageLevel: 17,
	}
}

func (o Options) workers() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}
