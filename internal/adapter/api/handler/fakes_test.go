package handler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"expressivart/internal/domain/entity"
	"expressivart/pkg/errors"
)

type memConversations struct {
	mu   sync.Mutex
	byID map[string]*entity.Conversation
}

func newMemConversations() *memConversations {
	return &memConversations{byID: make(map[string]*entity.Conversation)}
}

func (r *memConversations) GetByID(_ context.Context, id string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *memConversations) FindByArtworkAndBuyer(_ context.Context, artworkID, buyerID string) (*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[entity.ConversationKey(artworkID, buyerID)]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *memConversations) Create(_ context.Context, c *entity.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entity.ConversationKey(c.ArtworkID, c.BuyerID)
	if _, ok := r.byID[key]; ok {
		return errors.Conflict("Conversation already exists", nil)
	}
	c.ID = key
	cp := *c
	r.byID[key] = &cp
	return nil
}

func (r *memConversations) ListByParticipant(_ context.Context, userID string) ([]*entity.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Conversation
	for _, c := range r.byID {
		if c.HasParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memConversations) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return errors.NotFound("Conversation", nil)
	}
	c.UpdatedAt = at
	return nil
}

type memMessages struct {
	mu     sync.Mutex
	byConv map[string][]*entity.Message
	seq    int
}

func newMemMessages() *memMessages {
	return &memMessages{byConv: make(map[string][]*entity.Message)}
}

func (r *memMessages) Create(_ context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if m.ID == "" {
		m.ID = fmt.Sprintf("m%03d", r.seq)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	r.byConv[m.ConversationID] = append(r.byConv[m.ConversationID], &cp)
	return nil
}

func (r *memMessages) ListByConversation(_ context.Context, conversationID string) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Message, 0, len(r.byConv[conversationID]))
	for _, m := range r.byConv[conversationID] {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memMessages) Latest(_ context.Context, conversationID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byConv[conversationID]
	if len(list) == 0 {
		return nil, nil
	}
	cp := *list[len(list)-1]
	return &cp, nil
}

func (r *memMessages) MarkRead(_ context.Context, conversationID, readerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.byConv[conversationID] {
		if m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

type memArtworks struct {
	mu   sync.Mutex
	byID map[string]*entity.Artwork
	seq  int
}

func newMemArtworks(artworks ...*entity.Artwork) *memArtworks {
	r := &memArtworks{byID: make(map[string]*entity.Artwork)}
	for _, a := range artworks {
		r.byID[a.ID] = a
	}
	return r
}

func (r *memArtworks) Create(_ context.Context, a *entity.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("art-new-%d", r.seq)
	}
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}

func (r *memArtworks) GetByID(_ context.Context, id string) (*entity.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Artwork", nil)
	}
	cp := *a
	return &cp, nil
}

func (r *memArtworks) Update(_ context.Context, a *entity.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; !ok {
		return errors.NotFound("Artwork", nil)
	}
	cp := *a
	r.byID[a.ID] = &cp
	return nil
}

func (r *memArtworks) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return errors.NotFound("Artwork", nil)
	}
	delete(r.byID, id)
	return nil
}

func (r *memArtworks) List(_ context.Context, f entity.ArtworkFilter) ([]*entity.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Artwork
	for _, a := range r.byID {
		if f.ArtistID != "" && a.ArtistID != f.ArtistID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Category != "" && a.Category != f.Category {
			continue
		}
		if f.OnlySold != nil && a.IsSold != *f.OnlySold {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(f.Search)) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch f.Sort {
		case entity.SortPriceAsc:
			return out[i].Price < out[j].Price
		case entity.SortPriceDesc:
			return out[i].Price > out[j].Price
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return out, nil
}

type memProfiles struct {
	mu   sync.Mutex
	byID map[string]*entity.Profile
}

func newMemProfiles(profiles ...*entity.Profile) *memProfiles {
	r := &memProfiles{byID: make(map[string]*entity.Profile)}
	for _, p := range profiles {
		r.byID[p.ID] = p
	}
	return r
}

func (r *memProfiles) Create(_ context.Context, p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; ok {
		return errors.Conflict("Profile already exists", nil)
	}
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProfiles) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("Profile", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *memProfiles) GetByEmail(_ context.Context, email string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Profile", nil)
}

func (r *memProfiles) Update(_ context.Context, p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.byID[p.ID] = &cp
	return nil
}

func (r *memProfiles) Summary(ctx context.Context, userID string) (*entity.ProfileSummary, error) {
	p, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.Summary(), nil
}

func (r *memProfiles) Invalidate(string) {}

type memRoles struct {
	mu    sync.Mutex
	roles map[string]bool
}

func newMemRoles() *memRoles {
	return &memRoles{roles: make(map[string]bool)}
}

func (r *memRoles) HasRole(_ context.Context, userID, role string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roles[userID+"_"+role], nil
}

func (r *memRoles) Assign(_ context.Context, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[userID+"_"+role] = true
	return nil
}
