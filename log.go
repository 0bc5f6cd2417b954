package providertree

import (
	"strconv"

	"github.com/sirupsen/logrus"
)

// logger is the narrow slice of logrus.FieldLogger the tree needs. Spec §7
// allows debug-level generation-transition logging and nothing above it, so
// that's the only level this package ever calls.
type logger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
}

func defaultLogger() logger {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	return l
}

func logGenerationTransition(log logger, key string, from, to *int64) {
	log.WithFields(logrus.Fields{
		"provider": key,
		"from":     generationString(from),
		"to":       generationString(to),
	}).Debug("updating resource provider generation")
}

func generationString(g *int64) string {
	if g == nil {
		return "<none>"
	}
	return strconv.FormatInt(*g, 10)
}
