package diagnostic

import (
	"github.com/sirupsen/logrus"
)

// Quiet returns a copy of base that only emits warnings and above.
// base is not modified.
func Quiet(base *logrus.Logger) *logrus.Logger {
	if base == nil {
		return nil
	}

	level := base.GetLevel()
	if level > logrus.WarnLevel {
		level = logrus.WarnLevel
	}

	return &logrus.Logger{
		Out:          base.Out,
		Hooks:        base.Hooks,
		Formatter:    base.Formatter,
		ReportCaller: base.ReportCaller,
		Level:        level,
		ExitFunc:     base.ExitFunc,
	}
}
