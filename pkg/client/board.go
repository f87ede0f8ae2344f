package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dutyroster/schedule-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ReorderDelay is the quiet period before a reorder is persisted
const ReorderDelay = 1000 * time.Millisecond

// Reorderer persists display positions
type Reorderer interface {
	Reorder(ctx context.Context, kind models.ItemKind, updates []models.OrderUpdate) error
}

// Board is the admin editor's view of a content tree. Reorders apply to the local tree at once
// and are saved after ReorderDelay; each mission list and step list has its own timer.
type Board struct {
	mu        sync.RWMutex
	tree      []models.Level
	store     Reorderer
	debouncer *Debouncer
	delay     time.Duration
	timeout   time.Duration
	logger    *logrus.Logger
}

// NewBoard creates a board over a tree fetched from the server
func NewBoard(tree []models.Level, store Reorderer, logger *logrus.Logger) *Board {
	return &Board{
		tree:      tree,
		store:     store,
		debouncer: NewDebouncer(),
		delay:     ReorderDelay,
		timeout:   DefaultTimeout,
		logger:    logger,
	}
}

// Tree returns a copy of the current tree
func (b *Board) Tree() []models.Level {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return cloneTree(b.tree)
}

// SetTree replaces the tree, e.g. after a refresh
func (b *Board) SetTree(tree []models.Level) {
	b.mu.Lock()
	b.tree = tree
	b.mu.Unlock()
}

// ReorderMissions puts a level's missions in the given id order
func (b *Board) ReorderMissions(levelID int64, ids []int64) error {
	b.mu.Lock()
	level := b.findLevel(levelID)
	if level == nil {
		b.mu.Unlock()
		return fmt.Errorf("level %d not on board", levelID)
	}

	index := make(map[int64]models.Mission, len(level.Missions))
	for _, m := range level.Missions {
		index[m.ID] = m
	}
	if !samePermutation(ids, len(level.Missions), func(id int64) bool { _, ok := index[id]; return ok }) {
		b.mu.Unlock()
		return fmt.Errorf("ids must list every mission of level %d exactly once", levelID)
	}

	reordered := make([]models.Mission, len(ids))
	for pos, id := range ids {
		m := index[id]
		m.DisplayOrder = pos
		reordered[pos] = m
	}
	level.Missions = reordered
	updates := orderUpdates(ids)
	b.mu.Unlock()

	b.persist(fmt.Sprintf("missions:%d", levelID), models.ItemMission, updates)
	return nil
}

// ReorderSteps puts a mission's steps in the given id order
func (b *Board) ReorderSteps(levelID, missionID int64, ids []int64) error {
	b.mu.Lock()
	mission := b.findMission(levelID, missionID)
	if mission == nil {
		b.mu.Unlock()
		return fmt.Errorf("mission %d not on board under level %d", missionID, levelID)
	}

	index := make(map[int64]models.Step, len(mission.Steps))
	for _, s := range mission.Steps {
		index[s.ID] = s
	}
	if !samePermutation(ids, len(mission.Steps), func(id int64) bool { _, ok := index[id]; return ok }) {
		b.mu.Unlock()
		return fmt.Errorf("ids must list every step of mission %d exactly once", missionID)
	}

	reordered := make([]models.Step, len(ids))
	for pos, id := range ids {
		s := index[id]
		s.DisplayOrder = pos
		reordered[pos] = s
	}
	mission.Steps = reordered
	updates := orderUpdates(ids)
	b.mu.Unlock()

	b.persist(fmt.Sprintf("steps:%d:%d", levelID, missionID), models.ItemStep, updates)
	return nil
}

// Flush saves pending reorders now
func (b *Board) Flush() {
	b.debouncer.Flush()
}

// Close saves pending reorders and stops the board
func (b *Board) Close() {
	b.debouncer.Flush()
	b.debouncer.Stop()
}

// persist failures are logged only; the next refresh shows the server's order
func (b *Board) persist(key string, kind models.ItemKind, updates []models.OrderUpdate) {
	b.debouncer.Trigger(key, b.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()

		if err := b.store.Reorder(ctx, kind, updates); err != nil {
			b.logger.WithFields(logrus.Fields{
				"target": key,
				"error":  err.Error(),
			}).Warn("Failed to save order")
			return
		}
		b.logger.WithField("target", key).Debug("Order saved")
	})
}

func (b *Board) findLevel(levelID int64) *models.Level {
	for i := range b.tree {
		if b.tree[i].ID == levelID {
			return &b.tree[i]
		}
	}
	return nil
}

func (b *Board) findMission(levelID, missionID int64) *models.Mission {
	level := b.findLevel(levelID)
	if level == nil {
		return nil
	}
	for i := range level.Missions {
		if level.Missions[i].ID == missionID {
			return &level.Missions[i]
		}
	}
	return nil
}

func samePermutation(ids []int64, size int, known func(int64) bool) bool {
	if len(ids) != size {
		return false
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] || !known(id) {
			return false
		}
		seen[id] = true
	}
	return true
}

func orderUpdates(ids []int64) []models.OrderUpdate {
	updates := make([]models.OrderUpdate, len(ids))
	for pos, id := range ids {
		updates[pos] = models.OrderUpdate{ID: id, DisplayOrder: pos}
	}
	return updates
}

func cloneTree(tree []models.Level) []models.Level {
	out := make([]models.Level, len(tree))
	for i, level := range tree {
		out[i] = level
		out[i].Missions = make([]models.Mission, len(level.Missions))
		for j, mission := range level.Missions {
			out[i].Missions[j] = mission
			out[i].Missions[j].Steps = append([]models.Step(nil), mission.Steps...)
		}
	}
	return out
}
