package version

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// ServiceName - имя сервиса в логах и health-ответах.
const ServiceName = "order-service"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает хеш коммита сборки.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }

func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}

// Fields возвращает сведения о сборке для стартового лога.
func Fields() log.Fields {
	return log.Fields{
		"service": ServiceName,
		"version": version,
		"commit":  commit,
		"date":    date,
	}
}
