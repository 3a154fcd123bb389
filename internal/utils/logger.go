package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is shared by every package. Call InitLogger once from main.
var Logger = logrus.New()

// appField stamps every entry with the application name.
type appField string

func (a appField) Levels() []logrus.Level { return logrus.AllLevels }

func (a appField) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["app"]; !ok {
		entry.Data["app"] = string(a)
	}
	return nil
}

// InitLogger reads LOG_LEVEL (default info) and LOG_FORMAT (text or json)
// and writes to stdout. Repeated calls replace the app name.
func InitLogger(appName string) {
	configureLogger(Logger, appName, os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

func configureLogger(l *logrus.Logger, appName string, out io.Writer, levelName, format string) {
	l.SetOutput(out)

	level := logrus.InfoLevel
	if levelName != "" {
		parsed, err := logrus.ParseLevel(strings.ToLower(levelName))
		if err != nil {
			l.Warnf("Invalid LOG_LEVEL %q, using info", levelName)
		} else {
			level = parsed
		}
	}
	l.SetLevel(level)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	hooks := make(logrus.LevelHooks)
	for lvl, hs := range l.Hooks {
		for _, h := range hs {
			if _, ok := h.(appField); !ok {
				hooks[lvl] = append(hooks[lvl], h)
			}
		}
	}
	l.ReplaceHooks(hooks)
	l.AddHook(appField(appName))
}
