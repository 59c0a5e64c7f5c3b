package explain

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestService_NilDriverDegradesGracefully(t *testing.T) {
	s := New(nil, testLogger())

	assert.NotPanics(t, func() {
		s.Sync(context.Background(), nil)
	})
	assert.Nil(t, s.Related(context.Background(), uuid.New(), 5))
}
