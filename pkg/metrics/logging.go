package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// ConfigureLogger sets up the standard logrus logger. When app is set, log
// lines are also forwarded to New Relic.
func ConfigureLogger(out io.Writer, level string, app *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if app != nil {
		formatter = NewNewRelicLogFormatter(app, &logrus.JSONFormatter{})
	}
	logrus.SetFormatter(formatter)

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", level).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(parsed)
	}

	logrus.SetOutput(out)
}

// NewRelicLogFormatter is a logrus.Formatter that forwards every entry,
// including all of its fields, to New Relic before formatting it locally.
//
// Based off of: https://github.com/newrelic/go-agent/blob/f1942e10f0819e2c854d5d7289eb0dc1c52a00af/v3/integrations/logcontext-v2/nrlogrus/formatter.go
type NewRelicLogFormatter struct {
	app       *newrelic.Application
	formatter logrus.Formatter
}

func NewNewRelicLogFormatter(app *newrelic.Application, formatter logrus.Formatter) *NewRelicLogFormatter {
	return &NewRelicLogFormatter{
		app:       app,
		formatter: formatter,
	}
}

func (f *NewRelicLogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	logBytes, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}
	b := bytes.NewBuffer(bytes.TrimRight(logBytes, "\n"))

	logData := newrelic.LogData{
		Severity: e.Level.String(),
		Message:  forwardedMessage(e),
	}

	var txn *newrelic.Transaction
	if e.Context != nil {
		txn = newrelic.FromContext(e.Context)
	}

	if txn != nil {
		txn.RecordLog(logData)
		err = newrelic.EnrichLog(b, newrelic.FromTxn(txn))
	} else {
		f.app.RecordLog(logData)
		err = newrelic.EnrichLog(b, newrelic.FromApp(f.app))
	}
	if err != nil {
		return nil, err
	}

	b.WriteString("\n")
	return b.Bytes(), nil
}

func forwardedMessage(e *logrus.Entry) string {
	if len(e.Data) == 0 {
		return e.Message
	}

	errorString := "<nil>"
	fields := make(map[string]interface{}, len(e.Data))
	for k, v := range e.Data {
		if k != logrus.ErrorKey {
			fields[k] = v
			continue
		}
		if typed, ok := v.(error); ok {
			errorString = fmt.Sprintf("%q", typed.Error())
		}
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return e.Message
	}
	return fmt.Sprintf("message=%q, error=%s, data=%s", e.Message, errorString, encoded)
}
