package robot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Recording is one captured teaching session: joint angle samples in
// capture order.
type Recording struct {
	ID     int64       `json:"id"`
	Angles [][]float64 `json:"angles"`
}

// RecordingInfo describes a stored recording.
type RecordingInfo struct {
	ID       int64
	Path     string
	Samples  int
	Modified time.Time
}

// TeachingStore persists teaching recordings as JSON files named
// teaching_<unix>.json under a single directory.
type TeachingStore struct {
	dir    string
	logger *zap.Logger

	Sleep func(d time.Duration)
	now   func() time.Time
}

// NewTeachingStore creates the store, making the directory on demand.
func NewTeachingStore(dir string, logger *zap.Logger) *TeachingStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeachingStore{dir: dir, logger: logger, Sleep: time.Sleep, now: time.Now}
}

// Record releases the servos and samples joint angles at the given rate for
// the given duration, then saves the recording.
func (s *TeachingStore) Record(ctx context.Context, arm Arm, duration time.Duration, sampleRate int) (Recording, error) {
	if sampleRate <= 0 {
		sampleRate = 5
	}
	if err := arm.ReleaseAllServos(); err != nil {
		return Recording{}, fmt.Errorf("teaching: release servos: %w", err)
	}

	rec := Recording{ID: s.now().Unix()}
	interval := time.Second / time.Duration(sampleRate)
	samples := int(duration / interval)
	for i := 0; i < samples; i++ {
		if err := ctx.Err(); err != nil {
			break
		}
		angles, err := arm.GetAngles()
		if err != nil {
			s.logger.Warn("teaching sample failed", zap.Error(err))
			continue
		}
		rec.Angles = append(rec.Angles, angles)
		s.Sleep(interval)
	}

	if len(rec.Angles) == 0 {
		return Recording{}, fmt.Errorf("teaching: no samples captured")
	}
	if err := s.Save(rec); err != nil {
		return Recording{}, err
	}
	s.logger.Info("teaching recorded", zap.Int64("id", rec.ID), zap.Int("samples", len(rec.Angles)))
	return rec, nil
}

// Save writes a recording to disk.
func (s *TeachingStore) Save(rec Recording) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("teaching: %w", err)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("teaching: %w", err)
	}
	return os.WriteFile(s.path(rec.ID), data, 0o644)
}

// Load reads a stored recording by id.
func (s *TeachingStore) Load(id int64) (Recording, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return Recording{}, fmt.Errorf("teaching %d: %w", id, err)
	}
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return Recording{}, fmt.Errorf("teaching %d: %w", id, err)
	}
	return rec, nil
}

// Replay powers the arm back on and replays a recording at high speed.
func (s *TeachingStore) Replay(ctx context.Context, arm Arm, rec Recording) error {
	if err := arm.PowerOn(); err != nil {
		return fmt.Errorf("teaching replay: %w", err)
	}
	s.Sleep(time.Second)
	for i, angles := range rec.Angles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := arm.SendAngles(angles, 80); err != nil {
			return fmt.Errorf("teaching replay: %w", err)
		}
		if i%3 == 0 {
			s.Sleep(50 * time.Millisecond)
		}
	}
	return nil
}

// List returns stored recordings, newest first.
func (s *TeachingStore) List() ([]RecordingInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("teaching: %w", err)
	}

	var out []RecordingInfo
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "teaching_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, "teaching_"), ".json"), 10, 64)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		rec, err := s.Load(id)
		if err != nil {
			continue
		}
		out = append(out, RecordingInfo{
			ID:       id,
			Path:     filepath.Join(s.dir, name),
			Samples:  len(rec.Angles),
			Modified: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Delete removes a stored recording.
func (s *TeachingStore) Delete(id int64) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("teaching %d: %w", id, err)
	}
	return nil
}

func (s *TeachingStore) path(id int64) string {
	return filepath.Join(s.dir, fmt.Sprintf("teaching_%d.json", id))
}
