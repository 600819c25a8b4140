package bots

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/delphi-social/server/pkg/feedid"
	"github.com/delphi-social/server/pkg/posts"
)

type registryDocument struct {
	Bots map[string]*Bot `json:"bots"`
}

// Registry owns the set of registered bots, persisted the same way the post
// store is: one JSON document, rewritten in full on every mutation. There is
// no cap on how many bots may be registered.
type Registry struct {
	path string

	mu    sync.RWMutex
	bots  map[string]*Bot
	order []string
}

func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{
		path: path,
		bots: map[string]*Bot{},
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, err
	}
	var doc registryDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if doc.Bots != nil {
		r.bots = doc.Bots
	}
	for id := range r.bots {
		r.order = append(r.order, id)
	}
	sort.Slice(r.order, func(i, j int) bool {
		a, b := r.bots[r.order[i]], r.bots[r.order[j]]
		if !a.Timestamp.Equal(b.Timestamp.Time) {
			return a.Timestamp.Before(b.Timestamp.Time)
		}
		return r.order[i] < r.order[j]
	})
	return r, nil
}

func (r *Registry) save() error {
	raw, err := json.MarshalIndent(registryDocument{Bots: r.bots}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, raw, 0644)
}

func (r *Registry) List() []Bot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Bot, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, *r.bots[id])
	}
	return list
}

// Create registers a new, inactive bot. Names clash case-insensitively.
func (r *Registry) Create(name string) (Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		if strings.EqualFold(r.bots[id].Name, name) {
			return Bot{}, ErrBotNameExists
		}
	}

	bot := &Bot{
		Id:        feedid.GenId(),
		Name:      name,
		Timestamp: posts.Now(),
	}
	r.bots[bot.Id] = bot
	r.order = append(r.order, bot.Id)

	if err := r.save(); err != nil {
		return Bot{}, err
	}
	return *bot, nil
}

// Toggle sets the active flag on the first bot matching the name
// case-insensitively.
func (r *Registry) Toggle(name string, active bool) (Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		bot := r.bots[id]
		if strings.EqualFold(bot.Name, name) {
			bot.IsActive = active
			if err := r.save(); err != nil {
				return Bot{}, err
			}
			return *bot, nil
		}
	}
	return Bot{}, ErrBotNotFound
}

func (r *Registry) ClearNonExisting() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := map[string]*Bot{}
	keptOrder := []string{}
	for _, id := range r.order {
		if r.bots[id].IsExisting {
			kept[id] = r.bots[id]
			keptOrder = append(keptOrder, id)
		}
	}
	r.bots = kept
	r.order = keptOrder
	return r.save()
}
