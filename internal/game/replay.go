package game

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrReplayNotFound is returned when no live or saved replay exists for a game.
	ErrReplayNotFound = errors.New("replay not found")
	// ErrReplayCorrupt is returned when a saved replay fails verification.
	ErrReplayCorrupt = errors.New("replay is corrupt")
	// ErrReplaysDisabled is returned by replay lookups when no replay directory is configured.
	ErrReplaysDisabled = errors.New("replay recording is disabled")
)

const (
	replayFileVersion = 1
	replayExt         = ".replay"
)

// Snapshot is the state of a session after one mutation.
type Snapshot struct {
	GameID      string     `json:"game_id"`
	Sequence    int        `json:"sequence"`
	Action      string     `json:"action"`
	Mana        int        `json:"mana"`
	DeckSize    int        `json:"deck_size"`
	Hand        []CardView `json:"hand"`
	Battlefield []CardView `json:"battlefield"`
	Graveyard   []CardView `json:"graveyard"`
	Timestamp   time.Time  `json:"timestamp"`
}

// Replay is the snapshot history of one session, oldest first. It is safe to
// read while the session is still appending.
type Replay struct {
	GameID string

	mu        sync.RWMutex
	snapshots []*Snapshot
}

func newReplay(gameID string, snapshots ...*Snapshot) *Replay {
	return &Replay{GameID: gameID, snapshots: snapshots}
}

func (r *Replay) append(s *Snapshot) {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
}

// Len returns the number of snapshots.
func (r *Replay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots)
}

// At returns snapshot i, or nil when i is out of range.
func (r *Replay) At(i int) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.snapshots) {
		return nil
	}
	return r.snapshots[i]
}

// Last returns the most recent snapshot, or nil for an empty replay.
func (r *Replay) Last() *Snapshot {
	return r.At(r.Len() - 1)
}

// Frames returns at most limit snapshots starting at from. A limit of zero
// or less returns everything after from.
func (r *Replay) Frames(from, limit int) []*Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if from < 0 {
		from = 0
	}
	if from >= len(r.snapshots) {
		return []*Snapshot{}
	}
	end := len(r.snapshots)
	if limit > 0 && from+limit < end {
		end = from + limit
	}
	return append([]*Snapshot(nil), r.snapshots[from:end]...)
}

func (r *Replay) list() []*Snapshot {
	return r.Frames(0, 0)
}

// replayFile is the on-disk form: a gzipped gob of this struct. Checksums
// holds one snapshot hash per snapshot.
type replayFile struct {
	Version   int
	GameID    string
	SavedAt   time.Time
	Snapshots []*Snapshot
	Checksums []string
}

// WriteReplay writes r to <dir>/<game id>.replay. The file is written under a
// temporary name and renamed so readers never see a partial replay.
func WriteReplay(dir string, r *Replay) error {
	snapshots := r.list()
	file := replayFile{
		Version:   replayFileVersion,
		GameID:    r.GameID,
		SavedAt:   time.Now().UTC(),
		Snapshots: snapshots,
		Checksums: make([]string, len(snapshots)),
	}
	for i, s := range snapshots {
		sum, err := s.ComputeChecksum()
		if err != nil {
			return fmt.Errorf("snapshot %d: %w", i, err)
		}
		file.Checksums[i] = sum.Hash
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create replay dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, r.GameID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create replay file: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if err := gob.NewEncoder(zw).Encode(&file); err != nil {
		tmp.Close()
		return fmt.Errorf("encode replay: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("compress replay: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write replay: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, r.GameID+replayExt))
}

// ReadReplay reads a replay written by WriteReplay and verifies every
// snapshot against its stored checksum.
func ReadReplay(dir, gameID string) (*Replay, error) {
	if _, err := uuid.Parse(gameID); err != nil {
		return nil, fmt.Errorf("game %q: %w", gameID, ErrReplayNotFound)
	}

	f, err := os.Open(filepath.Join(dir, gameID+replayExt))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrReplayNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w: %v", gameID, ErrReplayCorrupt, err)
	}
	defer zr.Close()

	var file replayFile
	if err := gob.NewDecoder(zr).Decode(&file); err != nil {
		return nil, fmt.Errorf("game %s: %w: %v", gameID, ErrReplayCorrupt, err)
	}
	if file.Version != replayFileVersion {
		return nil, fmt.Errorf("game %s: unsupported replay version %d", gameID, file.Version)
	}
	if file.GameID != gameID || len(file.Checksums) != len(file.Snapshots) {
		return nil, fmt.Errorf("game %s: %w: header mismatch", gameID, ErrReplayCorrupt)
	}
	for i, s := range file.Snapshots {
		ok, err := s.VerifyChecksum(&SerializationChecksum{Hash: file.Checksums[i]})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("game %s: snapshot %d: %w: checksum mismatch", gameID, i, ErrReplayCorrupt)
		}
	}

	r := newReplay(file.GameID, file.Snapshots...)
	if err := VerifyReplay(r); err != nil {
		return nil, fmt.Errorf("game %s: %w: %v", gameID, ErrReplayCorrupt, err)
	}
	return r, nil
}

type recording struct {
	replay *Replay
	active bool
}

// ReplayRecorder collects snapshots of live sessions and writes them to dir
// when a session ends.
type ReplayRecorder struct {
	logger *zap.Logger
	dir    string

	mu         sync.RWMutex
	recordings map[string]*recording
}

// NewReplayRecorder creates a recorder that saves into dir.
func NewReplayRecorder(logger *zap.Logger, dir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:     logger,
		dir:        dir,
		recordings: make(map[string]*recording),
	}
}

// Track starts, or resumes, recording gameID.
func (rr *ReplayRecorder) Track(gameID string) {
	rr.mu.Lock()
	rec, ok := rr.recordings[gameID]
	if !ok {
		rec = &recording{replay: newReplay(gameID)}
		rr.recordings[gameID] = rec
	}
	rec.active = true
	rr.mu.Unlock()

	rr.logger.Debug("recording replay", zap.String("game_id", gameID))
}

// Stop stops recording gameID and keeps what was recorded so far.
func (rr *ReplayRecorder) Stop(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if rec, ok := rr.recordings[gameID]; ok {
		rec.active = false
	}
}

// Active reports whether snapshots of gameID are being recorded.
func (rr *ReplayRecorder) Active(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	rec, ok := rr.recordings[gameID]
	return ok && rec.active
}

// Record appends s to the replay of gameID while recording is active.
func (rr *ReplayRecorder) Record(gameID string, s *Snapshot) {
	rr.mu.RLock()
	rec, ok := rr.recordings[gameID]
	active := ok && rec.active
	rr.mu.RUnlock()

	if active {
		rec.replay.append(s)
	}
}

// Replay returns the in-memory replay of gameID.
func (rr *ReplayRecorder) Replay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	rec, ok := rr.recordings[gameID]
	if !ok {
		return nil, false
	}
	return rec.replay, true
}

// Save writes the replay of gameID to disk and drops it from memory.
func (rr *ReplayRecorder) Save(gameID string) error {
	rr.mu.Lock()
	rec, ok := rr.recordings[gameID]
	delete(rr.recordings, gameID)
	rr.mu.Unlock()

	if !ok {
		return fmt.Errorf("game %s: %w", gameID, ErrReplayNotFound)
	}
	if err := WriteReplay(rr.dir, rec.replay); err != nil {
		return fmt.Errorf("save replay %s: %w", gameID, err)
	}

	rr.logger.Info("replay saved",
		zap.String("game_id", gameID),
		zap.Int("snapshots", rec.replay.Len()),
		zap.String("dir", rr.dir),
	)
	return nil
}

// Load reads a saved replay of gameID.
func (rr *ReplayRecorder) Load(gameID string) (*Replay, error) {
	return ReadReplay(rr.dir, gameID)
}

// Forget drops the replay of gameID without saving it.
func (rr *ReplayRecorder) Forget(gameID string) {
	rr.mu.Lock()
	delete(rr.recordings, gameID)
	rr.mu.Unlock()
}
