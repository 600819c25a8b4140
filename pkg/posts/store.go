package posts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/delphi-social/server/pkg/feedid"
)

// maxChainDepth bounds the parent walk so a corrupted document with a parent
// cycle can't hang the process.
const maxChainDepth = 10000

type storeDocument struct {
	Tweets map[string]*Post `json:"tweets"`
}

// Store owns the id->post mapping backed by a single JSON document. Every
// mutation rewrites the whole document; the process is assumed to be the only
// writer.
type Store struct {
	path string

	mu     sync.RWMutex
	tweets map[string]*Post
	order  []string // insertion order, tie-breaker for the feed sort
}

func OpenStore(path string) (*Store, error) {
	s := &Store{
		path:   path,
		tweets: map[string]*Post{},
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var doc storeDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if doc.Tweets != nil {
		s.tweets = doc.Tweets
	}
	for id := range s.tweets {
		s.order = append(s.order, id)
	}
	// Map iteration order is random, so rebuild a deterministic insertion
	// order for reloaded documents.
	sort.Slice(s.order, func(i, j int) bool {
		a, b := s.tweets[s.order[i]], s.tweets[s.order[j]]
		if !a.Timestamp.Equal(b.Timestamp.Time) {
			return a.Timestamp.Before(b.Timestamp.Time)
		}
		return s.order[i] < s.order[j]
	})
	return s, nil
}

// save rewrites the backing document. Callers must hold the write lock.
func (s *Store) save() error {
	raw, err := json.MarshalIndent(storeDocument{Tweets: s.tweets}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0644)
}

// Create persists a new post. An unknown parent id is tolerated: the post is
// stored without thread linkage, matching how the feed has always behaved.
func (s *Store) Create(text string, author string, parentId *string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = unwrapDisplayText(text)

	// Detach from the caller's memory.
	if parentId != nil {
		pid := *parentId
		parentId = &pid
	}

	id := feedid.GenId()
	var threadId *string
	if parentId != nil {
		if parent, ok := s.tweets[*parentId]; ok {
			if parent.ThreadId != nil {
				threadId = parent.ThreadId
			} else {
				threadId = parentId
			}
			parent.Responses = append(parent.Responses, id)
		}
	}

	post := &Post{
		Id:        id,
		Text:      text,
		Author:    author,
		Timestamp: Now(),
		ParentId:  parentId,
		ThreadId:  threadId,
		Mentions:  ExtractMentions(text),
		Responses: []string{},
	}
	s.tweets[id] = post
	s.order = append(s.order, id)

	if err := s.save(); err != nil {
		return Post{}, err
	}
	return clonePost(post), nil
}

func (s *Store) Get(id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.tweets[id]
	if !ok {
		return Post{}, ErrPostNotFound
	}
	return clonePost(post), nil
}

// GetAll returns every post, newest first. Equal timestamps keep insertion
// order.
func (s *Store) GetAll() []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]Post, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, clonePost(s.tweets[id]))
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp.Time)
	})
	return all
}

// GetThread returns every post whose thread id matches. The thread root
// itself carries no thread id, so it is not part of the result.
func (s *Store) GetThread(threadId string) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread := []Post{}
	for _, id := range s.order {
		post := s.tweets[id]
		if post.ThreadId != nil && *post.ThreadId == threadId {
			thread = append(thread, clonePost(post))
		}
	}
	return thread
}

// GetChain walks parent links from the given post up to the root and returns
// the chain in chronological (root first) order. The walk stops on a missing
// parent and refuses to revisit a post, so a broken or cyclic document can't
// hang it.
func (s *Store) GetChain(id string) []Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chain := []Post{}
	visited := map[string]bool{}
	current, ok := s.tweets[id]
	for ok && !visited[current.Id] && len(chain) < maxChainDepth {
		visited[current.Id] = true
		chain = append(chain, clonePost(current))
		if current.ParentId == nil {
			break
		}
		current, ok = s.tweets[*current.ParentId]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ThreadContext is the reply chain of a post flattened for prompt building.
type ThreadContext struct {
	Texts   []string
	Authors []string
	Lines   []string
}

// GetThreadContext derives the prompt context for a post from its chain, one
// "@author: text" line per post in chronological order.
func (s *Store) GetThreadContext(id string) ThreadContext {
	chain := s.GetChain(id)

	ctx := ThreadContext{
		Texts:   []string{},
		Authors: []string{},
		Lines:   []string{},
	}
	for _, post := range chain {
		ctx.Texts = append(ctx.Texts, post.Text)
		ctx.Authors = append(ctx.Authors, post.Author)
		ctx.Lines = append(ctx.Lines, fmt.Sprintf("@%s: %s", post.Author, post.Text))
	}
	return ctx
}

// ClearNonExisting drops every post created through the API, keeping seed
// records and whatever relationships they carry.
func (s *Store) ClearNonExisting() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := map[string]*Post{}
	keptOrder := []string{}
	for _, id := range s.order {
		if s.tweets[id].IsExisting {
			kept[id] = s.tweets[id]
			keptOrder = append(keptOrder, id)
		}
	}
	s.tweets = kept
	s.order = keptOrder
	return s.save()
}

func clonePost(p *Post) Post {
	c := *p
	if p.ParentId != nil {
		v := *p.ParentId
		c.ParentId = &v
	}
	if p.ThreadId != nil {
		v := *p.ThreadId
		c.ThreadId = &v
	}
	c.Mentions = append([]string{}, p.Mentions...)
	c.Responses = append([]string{}, p.Responses...)
	return c
}
