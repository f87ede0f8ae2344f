package client

import (
	"context"
	"errors"
	"sync"

	"github.com/dutyroster/schedule-backend/internal/models"
)

// Completer records completions
type Completer interface {
	SetCompletion(ctx context.Context, req *models.SetCompletionRequest) error
}

type itemKey struct {
	kind models.ItemKind
	id   int64
}

// Checklist is one guest's completion state for one date. Toggles apply locally first.
// Every local write gets a version; a snapshot fetched before a write cannot undo it, whether
// or not the server has acknowledged the write yet.
type Checklist struct {
	mu      sync.Mutex
	store   Completer
	guestID int64
	date    string // empty means the server's today
	tree    []models.Level
	done    map[itemKey]bool
	pending map[itemKey]uint64 // unacknowledged writes
	written map[itemKey]uint64 // version of the last local write per item
	version uint64
}

// NewChecklist creates a checklist over a tree
func NewChecklist(store Completer, guestID int64, date string, tree []models.Level) *Checklist {
	return &Checklist{
		store:   store,
		guestID: guestID,
		date:    date,
		tree:    tree,
		done:    make(map[itemKey]bool),
		pending: make(map[itemKey]uint64),
		written: make(map[itemKey]uint64),
	}
}

// SetTree replaces the tree, e.g. after the schedule was refreshed
func (c *Checklist) SetTree(tree []models.Level) {
	c.mu.Lock()
	c.tree = tree
	c.mu.Unlock()
}

// Tree returns the current tree
func (c *Checklist) Tree() []models.Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTree(c.tree)
}

// StepDone reports the local state of a step
func (c *Checklist) StepDone(stepID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done[itemKey{models.ItemStep, stepID}]
}

// MissionDone reports the derived completion of a mission
func (c *Checklist) MissionDone(missionID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	mission := c.findMission(missionID)
	if mission == nil {
		return false
	}
	return models.MissionComplete(*mission, c.overlay())
}

// ToggleStep flips a step and sends the new state
func (c *Checklist) ToggleStep(ctx context.Context, stepID int64) error {
	key := itemKey{models.ItemStep, stepID}
	c.mu.Lock()
	target := !c.done[key]
	v := c.apply(key, target)
	c.mu.Unlock()

	return c.send(ctx, key, target, v)
}

// ToggleMission flips a mission. A mission without steps toggles its own record; otherwise
// all of its steps are set to the opposite of "all steps complete".
func (c *Checklist) ToggleMission(ctx context.Context, missionID int64) error {
	c.mu.Lock()
	mission := c.findMission(missionID)
	if mission == nil {
		c.mu.Unlock()
		return errors.New("mission not in checklist")
	}

	type change struct {
		key     itemKey
		version uint64
	}
	var changes []change
	var target bool

	if len(mission.Steps) == 0 {
		key := itemKey{models.ItemMission, missionID}
		target = !c.done[key]
		changes = append(changes, change{key, c.apply(key, target)})
	} else {
		target = !models.MissionComplete(*mission, c.overlay())
		for _, step := range mission.Steps {
			key := itemKey{models.ItemStep, step.ID}
			if c.done[key] != target {
				changes = append(changes, change{key, c.apply(key, target)})
			}
		}
	}
	c.mu.Unlock()

	var errs []error
	for _, ch := range changes {
		if err := c.send(ctx, ch.key, target, ch.version); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Version returns the current write version. Capture it before fetching a snapshot and pass
// it to Reconcile.
func (c *Checklist) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Reconcile merges a server snapshot fetched when the checklist was at version since. Items
// written locally after since, and items with an unacknowledged toggle, keep their local
// value; everything else takes the server's.
func (c *Checklist) Reconcile(snapshot *models.ProgressResponse, since uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make(map[itemKey]bool, len(snapshot.Steps)+len(snapshot.Missions))
	for _, id := range snapshot.Steps {
		next[itemKey{models.ItemStep, id}] = true
	}
	for _, id := range snapshot.Missions {
		next[itemKey{models.ItemMission, id}] = true
	}
	keep := func(key itemKey) {
		if c.done[key] {
			next[key] = true
		} else {
			delete(next, key)
		}
	}
	for key := range c.pending {
		keep(key)
	}
	for key, v := range c.written {
		if v > since {
			keep(key)
		}
	}
	c.done = next
}

// PendingCount returns the number of unacknowledged toggles
func (c *Checklist) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Completion summarises the local state against the tree
func (c *Checklist) Completion() models.Completion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.ComputeCompletion(c.tree, c.overlay())
}

// apply sets the local value and returns the version of this write; callers hold mu
func (c *Checklist) apply(key itemKey, value bool) uint64 {
	c.version++
	if value {
		c.done[key] = true
	} else {
		delete(c.done, key)
	}
	c.pending[key] = c.version
	c.written[key] = c.version
	return c.version
}

// send writes one item. On failure the local value is rolled back unless a newer toggle
// of the same item happened meanwhile.
func (c *Checklist) send(ctx context.Context, key itemKey, value bool, version uint64) error {
	err := c.store.SetCompletion(ctx, &models.SetCompletionRequest{
		GuestID:     c.guestID,
		ItemID:      key.id,
		ItemType:    key.kind,
		IsCompleted: value,
		Date:        c.date,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending[key] != version {
		return err
	}
	delete(c.pending, key)
	if err != nil {
		// the server still holds the value the rolled-back write replaced
		delete(c.written, key)
		if value {
			delete(c.done, key)
		} else {
			c.done[key] = true
		}
	}
	return err
}

func (c *Checklist) overlay() models.ProgressOverlay {
	var steps, missions []int64
	for key := range c.done {
		if key.kind == models.ItemStep {
			steps = append(steps, key.id)
		} else {
			missions = append(missions, key.id)
		}
	}
	return models.NewProgressOverlay(steps, missions)
}

func (c *Checklist) findMission(missionID int64) *models.Mission {
	for i := range c.tree {
		for j := range c.tree[i].Missions {
			if c.tree[i].Missions[j].ID == missionID {
				return &c.tree[i].Missions[j]
			}
		}
	}
	return nil
}
