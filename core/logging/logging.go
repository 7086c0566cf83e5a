package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu sync.RWMutex

	// Logger is the package-wide default. Components accept an injected
	// *zap.Logger and fall back to this one.
	Logger = zap.Must(zap.NewProduction())
)

// SetLogger replaces the package-wide default logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	Logger = l
}

// Default returns the current package-wide logger.
func Default() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return Logger
}
