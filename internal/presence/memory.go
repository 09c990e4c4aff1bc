package presence

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store with the same expiry semantics as
// RedisStore. It backs tests and redis-less dev runs. Markers are kept as
// deadlines and checked lazily on read, so nothing sweeps in the background
// here either.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	markers map[int64]time.Time          // user -> marker deadline
	global  map[int64]struct{}           // global online set
	rooms   map[int64]map[int64]struct{} // room -> online set

	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		markers: make(map[int64]time.Time),
		global:  make(map[int64]struct{}),
		rooms:   make(map[int64]map[int64]struct{}),
		now:     time.Now,
	}
}

func (s *MemoryStore) Heartbeat(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[userID] = s.now().Add(s.ttl)
	s.global[userID] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveGlobal(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.markers, userID)
	delete(s.global, userID)
	return nil
}

func (s *MemoryStore) RoomJoin(ctx context.Context, userID, roomID int64) error {
	s.mu.Lock()
	rs, ok := s.rooms[roomID]
	if !ok {
		rs = make(map[int64]struct{})
		s.rooms[roomID] = rs
	}
	rs[userID] = struct{}{}
	s.mu.Unlock()

	return s.Heartbeat(ctx, userID)
}

func (s *MemoryStore) RoomLeave(_ context.Context, userID, roomID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rs, ok := s.rooms[roomID]; ok {
		delete(rs, userID)
		if len(rs) == 0 {
			delete(s.rooms, roomID)
		}
	}
	return nil
}

func (s *MemoryStore) ListAliveGlobal(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcile(s.global), nil
}

func (s *MemoryStore) ListAliveRoom(_ context.Context, roomID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.rooms[roomID]
	if !ok {
		return nil, nil
	}
	alive := s.reconcile(rs)
	if len(rs) == 0 {
		delete(s.rooms, roomID)
	}
	return alive, nil
}

// reconcile filters a set against live markers, deleting stale members in
// place. Caller holds the lock.
func (s *MemoryStore) reconcile(set map[int64]struct{}) []int64 {
	now := s.now()
	alive := make([]int64, 0, len(set))
	for uid := range set {
		if deadline, ok := s.markers[uid]; ok && now.Before(deadline) {
			alive = append(alive, uid)
			continue
		}
		delete(s.markers, uid)
		delete(set, uid)
	}
	return alive
}
