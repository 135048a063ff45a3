package robot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *TeachingStore {
	t.Helper()
	s := NewTeachingStore(t.TempDir(), nil)
	s.Sleep = func(time.Duration) {}
	return s
}

func TestRecordReleasesServosAndSamples(t *testing.T) {
	s := newTestStore(t)
	arm := NewSimArm()
	require.NoError(t, arm.SendAngles([]float64{1, 2, 3, 4, 5, 6}, 40))

	rec, err := s.Record(context.Background(), arm, 2*time.Second, 5)
	require.NoError(t, err)
	require.Len(t, rec.Angles, 10)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6}, rec.Angles[0])
	require.True(t, arm.Released())

	loaded, err := s.Load(rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec, loaded)
}

func TestReplayPowersOnAndReplaysAllSamples(t *testing.T) {
	s := newTestStore(t)
	arm := NewSimArm()

	rec := Recording{ID: 1, Angles: [][]float64{
		{1, 0, 0, 0, 0, 0},
		{2, 0, 0, 0, 0, 0},
		{3, 0, 0, 0, 0, 0},
	}}
	require.NoError(t, s.Replay(context.Background(), arm, rec))

	require.Equal(t, []string{
		"power_on",
		"angles:[1 0 0 0 0 0]",
		"angles:[2 0 0 0 0 0]",
		"angles:[3 0 0 0 0 0]",
	}, arm.Trace)
	require.False(t, arm.Released())
}

func TestReplayStopsOnCancel(t *testing.T) {
	s := newTestStore(t)
	arm := NewSimArm()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := Recording{ID: 1, Angles: [][]float64{{1, 0, 0, 0, 0, 0}}}
	err := s.Replay(ctx, arm, rec)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, []string{"power_on"}, arm.Trace)
}

func TestListNewestFirstAndDelete(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []int64{100, 300, 200} {
		require.NoError(t, s.Save(Recording{ID: id, Angles: [][]float64{{0, 0, 0, 0, 0, 0}}}))
	}

	infos, err := s.List()
	require.NoError(t, err)
	require.Len(t, infos, 3)
	require.Equal(t, int64(300), infos[0].ID)
	require.Equal(t, int64(200), infos[1].ID)
	require.Equal(t, int64(100), infos[2].ID)
	require.Equal(t, 1, infos[0].Samples)

	require.NoError(t, s.Delete(200))
	infos, err = s.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	_, err = s.Load(200)
	require.Error(t, err)
}

func TestListEmptyDirIsNotAnError(t *testing.T) {
	s := NewTeachingStore(t.TempDir(), nil)
	infos, err := s.List()
	require.NoError(t, err)
	require.Empty(t, infos)

	s2 := NewTeachingStore(t.TempDir()+"/missing", nil)
	infos, err = s2.List()
	require.NoError(t, err)
	require.Empty(t, infos)
}
