package misc

import (
	"fmt"

	"github.com/BrugadaSyndrome/bslogger"
)

const (
	Fatal Severity = iota
	Error
	Warning
	Info
	Debug
)

type Severity int

func (s Severity) String() string {
	if s < Fatal || s > Debug {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return []string{
		"Fatal", "Error", "Warning", "Info", "Debug",
	}[s]
}

// Reporter is the part of a logger CheckError writes to.
type Reporter interface {
	Fatal(message string)
	Error(message string)
	Warning(message string)
	Info(message string)
	Debug(message string)
}

// CheckError reports err to logger at the given severity. A nil err is ignored.
func CheckError(err error, logger bslogger.Logger, severity Severity) {
	Report(err, &logger, severity)
}

// Report routes a non-nil err to reporter. An unknown severity is reported as
// an error naming it rather than ending the process.
func Report(err error, reporter Reporter, severity Severity) {
	if err == nil {
		return
	}
	switch severity {
	case Fatal:
		reporter.Fatal(err.Error())
	case Error:
		reporter.Error(err.Error())
	case Warning:
		reporter.Warning(err.Error())
	case Info:
		reporter.Info(err.Error())
	case Debug:
		reporter.Debug(err.Error())
	default:
		reporter.Error(fmt.Sprintf("%s: %s", severity, err))
	}
}
