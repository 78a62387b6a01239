package diagnostic

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorUnwrapsKindAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("stage 1: %w", &Error{
		Kind:        ErrArtifactNotFound,
		Op:          "resolve mapping",
		Translation: "MOJANG_TO_SPIGOT",
		Coordinate:  "org.spigotmc:minecraft-server:1.20:maps-mojang@txt",
		Project:     "plugin",
		Err:         cause,
	})

	assert.ErrorIs(t, err, ErrArtifactNotFound)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrRewrite)
	assert.Equal(t, ErrArtifactNotFound, KindOf(err))

	msg := err.Error()
	assert.Contains(t, msg, "translation MOJANG_TO_SPIGOT")
	assert.Contains(t, msg, "coordinate org.spigotmc:minecraft-server:1.20:maps-mojang@txt")
	assert.Contains(t, msg, "project plugin")
}

func TestKindOfUnknown(t *testing.T) {
	assert.Nil(t, KindOf(errors.New("plain")))
}

func TestDiagnosticsCollect(t *testing.T) {
	var d Diagnostics

	d.AddInfo("duplicate_class", "seen twice", "a/B", "")
	d.AddWarning("inheritance_missing", "not resolved", "", "")
	d.AddWarning("inheritance_missing", "still not resolved", "", "")

	assert.Equal(t, 1, d.Count("duplicate_class"))
	assert.Equal(t, 2, d.Count("inheritance_missing"))
	assert.Zero(t, d.Count("other"))

	require.Len(t, d.Infos, 1)
	assert.Equal(t, "[a/B]: [duplicate_class] seen twice", d.Infos[0].String())
	assert.Equal(t, "warning", d.Warnings[0].Severity.String())
	assert.Equal(t, "[inheritance_missing] not resolved", d.Warnings[0].String())

	var none *Diagnostics
	none.AddWarning("ignored", "", "", "")
	none.AddInfo("ignored", "", "", "")
}

func TestQuietDoesNotTouchBase(t *testing.T) {
	var buf bytes.Buffer

	base := logrus.New()
	base.SetOutput(&buf)
	base.SetLevel(logrus.DebugLevel)

	q := Quiet(base)
	q.Info("hidden")
	q.Debug("hidden too")
	q.Warn("shown")

	assert.Equal(t, logrus.DebugLevel, base.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	base.Debug("still verbose")
	assert.Contains(t, buf.String(), "still verbose")
}

func TestQuietKeepsStricterLevel(t *testing.T) {
	base := logrus.New()
	base.SetLevel(logrus.ErrorLevel)

	assert.Equal(t, logrus.ErrorLevel, Quiet(base).GetLevel())
	assert.Nil(t, Quiet(nil))
}
