package logrus

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cachecall"
)

type mapStore struct{ m map[string]string }

func (s *mapStore) Has(_ context.Context, k string) (bool, error) { _, ok := s.m[k]; return ok, nil }
func (s *mapStore) Get(_ context.Context, k string) (*cachecall.Item[string], error) {
	v, ok := s.m[k]
	return cachecall.NewItem(k, v, ok), nil
}
func (s *mapStore) Save(_ context.Context, it *cachecall.Item[string]) error {
	s.m[it.Key()] = it.Value()
	return nil
}
func (s *mapStore) Delete(_ context.Context, k string) error { delete(s.m, k); return nil }

func TestLevelsAndFields(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := LogrusLogger{E: logrus.NewEntry(base)}

	l.Debug("d", cachecall.Fields{"key": "k"})
	l.Info("i", nil)
	l.Warn("w", nil)
	l.Error("e", cachecall.Fields{"err": "boom"})

	require.Len(t, hook.AllEntries(), 4)
	entries := hook.AllEntries()
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "k", entries[0].Data["key"])
	assert.Equal(t, logrus.InfoLevel, entries[1].Level)
	assert.Equal(t, logrus.WarnLevel, entries[2].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[3].Level)
	assert.Equal(t, "boom", entries[3].Data["err"])
}

func TestNoticeFallsBackToInfo(t *testing.T) {
	base, hook := test.NewNullLogger()
	iv, err := cachecall.New(cachecall.Options[string]{
		Store:        &mapStore{m: map[string]string{}},
		Lifetime:     10,
		Producer:     cachecall.Supplier(func(context.Context) (string, error) { return "v", nil }),
		Logger:       LogrusLogger{E: logrus.NewEntry(base)},
		SuccessLevel: cachecall.LevelNotice,
	})
	require.NoError(t, err)

	_, err = iv.Invoke(context.Background(), "k")
	require.NoError(t, err)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "stored in cache", last.Message)
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, 10, last.Data["lifetime"])
}
