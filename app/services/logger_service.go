package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// recentLines is how many log lines are kept in memory for status queries.
const recentLines = 80

// LoggerService handles agent logging: a daily-rotated file under the data
// directory, mirrored to stdout, plus an in-memory ring of recent lines.
type LoggerService struct {
	logDir string

	mu         sync.Mutex // guards the file state and the ring
	logFile    *os.File
	logger     *log.Logger
	currentDay string
	recent     []string
}

// NewLoggerService creates a new logger service writing under dataPath.
func NewLoggerService(dataPath string) *LoggerService {
	service := &LoggerService{logDir: filepath.Join(dataPath, "logs")}
	service.initializeLogger()
	return service
}

func (s *LoggerService) initializeLogger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.logDir, 0755); err != nil {
		log.Printf("Warning: could not create logs directory: %v", err)
		s.logDir = "logs"
		os.MkdirAll(s.logDir, 0755)
	}

	if err := s.rotateLogFile(); err != nil {
		log.Printf("Warning: could not create log file: %v. Logging to stdout only.", err)
		s.logger = log.New(os.Stdout, "", log.LstdFlags)
		return
	}

	multiWriter := io.MultiWriter(os.Stdout, s.logFile)
	s.logger = log.New(multiWriter, "", log.LstdFlags)
}

// rotateLogFile creates a new log file when the day changes. Callers
// must hold mu: logf runs on the drain, poller and socket goroutines at
// once, and an unguarded rollover would double-close the old file.
func (s *LoggerService) rotateLogFile() error {
	today := time.Now().Format("2006-01-02")
	if s.currentDay == today && s.logFile != nil {
		return nil
	}

	if s.logFile != nil {
		s.logFile.Close()
	}

	logFilePath := filepath.Join(s.logDir, today+".log")
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	s.logFile = file
	s.currentDay = today
	if s.logger != nil {
		s.logger.SetOutput(io.MultiWriter(os.Stdout, s.logFile))
	}
	return nil
}

func (s *LoggerService) logf(level, format string, args ...interface{}) {
	line := fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...))

	s.mu.Lock()
	s.rotateLogFile()
	s.logger.Print(line)
	s.recent = append([]string{time.Now().Format("15:04:05") + " " + line}, s.recent...)
	if len(s.recent) > recentLines {
		s.recent = s.recent[:recentLines]
	}
	s.mu.Unlock()
}

// LogInfo logs an informational message.
func (s *LoggerService) LogInfo(format string, args ...interface{}) {
	s.logf("INFO", format, args...)
}

// LogWarning logs a warning.
func (s *LoggerService) LogWarning(format string, args ...interface{}) {
	s.logf("WARN", format, args...)
}

// LogError logs an error.
func (s *LoggerService) LogError(format string, args ...interface{}) {
	s.logf("ERROR", format, args...)
}

// Recent returns the newest log lines, most recent first.
func (s *LoggerService) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}

// Close flushes and closes the log file.
func (s *LoggerService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
}
