package logger

import (
	"fmt"
	"log"
	"os"
	"regexp"
)

const calldepth = 3

const (
	ColorNC        = "\x1b[0m" // No Color
	ColorGreen     = "\x1b[0;32m"
	ColorCyan      = "\x1b[0;36m"
	ColorRed       = "\x1b[0;31m"
	ColorLightRed  = "\x1b[1;31m"
	ColorLightGrey = "\x1b[0;37m"
)

var (
	Silent           bool
	Verbose          bool
	Color            bool
	stdOutLogger     = log.New(os.Stdout, "", 0)
	stdOutWarnLogger = log.New(os.Stdout, "WARNING: ", 0)
	stdErrLogger     = log.New(os.Stderr, "ERROR: ", 0)
)

func StdErrOutput(b []byte) (n int, err error) {
	if Color {
		b = append([]byte(ColorRed), b...)
		b = append(b, ColorNC...)
	}
	return os.Stderr.Write(b)
}

// Writer adapts a plain output func to io.Writer. To colorize error logs,
// pass StdErrOutput: Writer(StdErrOutput) implements io.Writer.
type Writer func(b []byte) (n int, err error)

func (w Writer) Write(b []byte) (n int, err error) {
	return w(b)
}

func Error(v ...interface{}) {
	logTo(stdErrLogger, ColorRed, v...)
}

func Errorf(format string, v ...interface{}) {
	logfTo(stdErrLogger, ColorRed, format, v...)
}

func Warn(v ...interface{}) {
	logTo(stdOutWarnLogger, ColorLightRed, v...)
}

func Warnf(format string, v ...interface{}) {
	logfTo(stdOutWarnLogger, ColorLightRed, format, v...)
}

func Heading(v ...interface{}) {
	if !Silent {
		logTo(stdOutLogger, ColorGreen, v...)
	}
}

func Headingf(format string, v ...interface{}) {
	if !Silent {
		logfTo(stdOutLogger, ColorGreen, format, v...)
	}
}

func Info(v ...interface{}) {
	if !Silent {
		logTo(stdOutLogger, ColorCyan, v...)
	}
}

func Infof(format string, v ...interface{}) {
	if !Silent {
		logfTo(stdOutLogger, ColorCyan, format, v...)
	}
}

func Debug(v ...interface{}) {
	if Verbose && !Silent {
		logTo(stdOutLogger, ColorLightGrey, v...)
	}
}

func Debugf(format string, v ...interface{}) {
	if Verbose && !Silent {
		logfTo(stdOutLogger, ColorLightGrey, format, v...)
	}
}

func logTo(l *log.Logger, color string, v ...interface{}) {
	msg := fmt.Sprint(v...)
	if Color {
		msg = colorizeMessage(color, msg)
	}
	l.Output(calldepth, msg)
}

func logfTo(l *log.Logger, color, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if Color {
		msg = colorizeMessage(color, msg)
	}
	l.Output(calldepth, msg)
}

func colorizeMessage(color, s string) string {
	whitespace := regexp.MustCompile(`\s*$`)
	trimmed := whitespace.ReplaceAllString(s, "")
	trailing := whitespace.FindString(s)

	return color + trimmed + ColorNC + trailing
}
