package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

const bannerWidth = 50

// Logger prints progress and result messages for the user. When disabled,
// everything except Always is dropped.
type Logger struct {
	out     io.Writer
	enabled bool

	success *color.Color
	warning *color.Color
	failure *color.Color
	muted   *color.Color
}

func NewLogger(out io.Writer, enabled bool) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		out:     out,
		enabled: enabled,
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
		muted:   color.New(color.FgHiBlack),
	}
}

func (l *Logger) LogInfo(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	fmt.Fprintf(l.out, format+"\n", args...)
}

func (l *Logger) LogSuccess(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.success.Fprintf(l.out, format+"\n", args...)
}

func (l *Logger) LogWarning(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.warning.Fprintf(l.out, format+"\n", args...)
}

func (l *Logger) LogError(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.failure.Fprintf(l.out, format+"\n", args...)
}

// Always prints regardless of the enabled switch.
func (l *Logger) Always(format string, args ...interface{}) {
	fmt.Fprintf(l.out, format+"\n", args...)
}

func (l *Logger) LogBanner(char string, format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	rule := strings.Repeat(char, bannerWidth)
	fmt.Fprintln(l.out, rule)
	fmt.Fprintf(l.out, format+"\n", args...)
	fmt.Fprintln(l.out, rule)
}

func (l *Logger) LogDownloaded(filePath string, size int64) {
	if !l.enabled {
		return
	}
	rule := strings.Repeat("*", bannerWidth)
	fmt.Fprintln(l.out, rule)
	l.success.Fprintf(l.out, "Successfully downloaded to: %s", filePath)
	l.muted.Fprintf(l.out, " (%s)\n", humanize.Bytes(uint64(size)))
	fmt.Fprintln(l.out, rule)
}

func (l *Logger) LogRequest(r *http.Request) {
	if !l.enabled {
		return
	}
	userAgent := r.Header.Get(UserAgentHeader)
	if userAgent == "" {
		userAgent = "Unknown"
	}
	fmt.Fprintf(l.out, "API Request: %s %s - User-Agent: %s\n", r.Method, r.URL.Path, userAgent)
}

func (l *Logger) LogResponse(r *http.Request, start time.Time) {
	if !l.enabled {
		return
	}
	l.muted.Fprintf(l.out, "API Response: %s %s - %v\n", r.Method, r.URL.Path, time.Since(start))
}

func (l *Logger) LogNotFound(method, path string) {
	l.LogWarning("API: 404 - Not Found: %s %s", method, path)
}

func (l *Logger) LogJSONError(err error) {
	l.LogError("Error encoding JSON response: %v", err)
}
