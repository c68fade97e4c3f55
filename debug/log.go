// Package debug writes a categorized trace log for diagnosing interaction
// bugs. Disabled unless PIANOROLL_DEBUG is set or Enable is called.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	file    *os.File
	enabled bool

	counters = make(map[string]int)
)

func init() {
	if os.Getenv("PIANOROLL_DEBUG") != "" {
		Enable()
	}
}

// Enable starts logging to ~/.config/go-pianoroll/debug.log.
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".config", "go-pianoroll")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	file = f
	enabled = true
	write("debug", "=== logging started ===")
	return nil
}

// Disable stops logging and closes the file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	enabled = false
}

// Log writes a message under a category.
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

// LogEvery logs only every n-th call with the same category+format. Use for
// high-frequency events like mousemove.
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	key := category + format
	counters[key]++
	if counters[key]%n != 0 {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

// write assumes mu is held. Flushes immediately so logs survive a crash.
func write(category, msg string) {
	if file == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, category, msg)
	file.Sync()
}
