package adapters

import (
	"context"
	"sync"

	"commune/internal/moderation/models"
	id "commune/pkg/domain"
)

// InMemoryDirectory implements TargetLookup and ContentModeration over maps.
// Used when no database is configured and by the service tests.
type InMemoryDirectory struct {
	mu      sync.RWMutex
	posts   map[id.PostID]id.TerritoryID
	members map[id.TerritoryID]map[id.UserID]struct{}
	hidden  map[id.PostID]struct{}
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		posts:   make(map[id.PostID]id.TerritoryID),
		members: make(map[id.TerritoryID]map[id.UserID]struct{}),
		hidden:  make(map[id.PostID]struct{}),
	}
}

// AddPost registers a post in a territory.
func (d *InMemoryDirectory) AddPost(postID id.PostID, territory id.TerritoryID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posts[postID] = territory
}

// AddMember registers a user as a member of a territory.
func (d *InMemoryDirectory) AddMember(territory id.TerritoryID, userID id.UserID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.members[territory] == nil {
		d.members[territory] = make(map[id.UserID]struct{})
	}
	d.members[territory][userID] = struct{}{}
}

func (d *InMemoryDirectory) TargetExists(ctx context.Context, target models.Target, territory id.TerritoryID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch target.Type {
	case models.TargetPost:
		postID, err := id.ParsePostID(target.ID)
		if err != nil {
			return false, err
		}
		home, ok := d.posts[postID]
		return ok && home == territory, nil
	case models.TargetUser:
		userID, err := id.ParseUserID(target.ID)
		if err != nil {
			return false, err
		}
		_, ok := d.members[territory][userID]
		return ok, nil
	}
	return false, nil
}

func (d *InMemoryDirectory) HidePost(ctx context.Context, postID id.PostID) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, already := d.hidden[postID]; already {
		return false, nil
	}
	d.hidden[postID] = struct{}{}
	return true, nil
}

// IsHidden reports whether the post has been hidden.
func (d *InMemoryDirectory) IsHidden(postID id.PostID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.hidden[postID]
	return ok
}
