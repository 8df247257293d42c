// internal/utils/logger/config.go
package logger

import "io"

type Config struct {
	LogFile    string
	MaxSize    int  // мегабайты
	MaxAge     int  // дни
	MaxBackups int  // количество файлов
	Compress   bool // сжимать ротированные файлы
	// Level – debug, info, warn или error. Пусто – info (debug в Development).
	Level       string
	Development bool
	// Console – куда писать человекочитаемые логи. nil отключает консоль
	// (например, когда терминал занят TUI).
	Console io.Writer
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "candy-mint.log",
		MaxSize:     100,  // 100 MB
		MaxAge:      7,    // 7 дней
		MaxBackups:  3,    // 3 файла
		Compress:    true, // сжимать старые логи
		Development: false,
	}
}
