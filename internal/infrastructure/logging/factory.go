package logging

import (
	"fmt"
	"sync"
)

// LoggerFactory facilita la creación de diferentes tipos de loggers
type LoggerFactory struct {
	baseLogger Logger
}

// NewLoggerFactory crea una nueva factory de loggers
func NewLoggerFactory(config *LoggerConfig) (*LoggerFactory, error) {
	baseLogger, err := NewLogrusLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create base logger: %w", err)
	}
	return &LoggerFactory{baseLogger: baseLogger}, nil
}

// LoggerSet contiene todos los loggers especializados
type LoggerSet struct {
	Base        Logger
	HTTP        HTTPLogger
	ExternalAPI ExternalAPILogger
	Cache       CacheLogger
	Ticker      TickerLogger
}

// GetLoggerSet retorna un set completo de loggers especializados
func (f *LoggerFactory) GetLoggerSet() *LoggerSet {
	return &LoggerSet{
		Base:        f.baseLogger,
		HTTP:        NewHTTPLogger(f.baseLogger),
		ExternalAPI: NewExternalAPILogger(f.baseLogger),
		Cache:       NewCacheLogger(f.baseLogger),
		Ticker:      NewTickerLogger(f.baseLogger),
	}
}

var (
	globalMu      sync.RWMutex
	globalLoggers *LoggerSet
)

// InitializeGlobalLoggers inicializa los loggers globales
func InitializeGlobalLoggers(config *LoggerConfig) error {
	factory, err := NewLoggerFactory(config)
	if err != nil {
		return fmt.Errorf("failed to initialize global loggers: %w", err)
	}

	globalMu.Lock()
	globalLoggers = factory.GetLoggerSet()
	globalMu.Unlock()
	return nil
}

// GetGlobalLoggers retorna todos los loggers globales, con defaults si nadie los inicializó
func GetGlobalLoggers() *LoggerSet {
	globalMu.RLock()
	set := globalLoggers
	globalMu.RUnlock()
	if set != nil {
		return set
	}

	_ = InitializeGlobalLoggers(DefaultConfig())
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLoggers
}

// GetGlobalLogger retorna el logger base global
func GetGlobalLogger() Logger {
	return GetGlobalLoggers().Base
}
