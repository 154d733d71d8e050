package version

import "fmt"

// Заполняются через -ldflags при сборке релиза.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build описывает сведения о сборке сервиса.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// Current возвращает сведения о текущей сборке.
func Current() Build {
	return Build{Version: version, Commit: commit, Date: date}
}

// String форматирует сведения о сборке одной строкой для логов.
func String() string {
	b := Current()
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}
