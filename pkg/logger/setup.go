package logger

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Setup builds a logger from CLI-level settings.
func Setup(logLevel string, logJSON bool) Logger {
	var level LogLevel
	switch logLevel {
	case "debug":
		level = DebugLevel
	case "info":
		level = InfoLevel
	case "warn":
		level = WarnLevel
	case "error":
		level = ErrorLevel
	default:
		level = InfoLevel
	}
	return NewLogger(&Config{
		Level:      level,
		JSON:       logJSON,
		TimeFormat: "15:04:05",
	})
}

func GetLoggerConfig(cmd *cobra.Command) (string, bool, error) {
	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return "", false, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return "", false, fmt.Errorf("failed to get log-json flag: %w", err)
	}
	return logLevel, logJSON, nil
}
