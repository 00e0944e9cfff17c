package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"marketapi/internal/events"
	"marketapi/internal/model"
	"marketapi/internal/repository"
)

type published struct {
	Topic   string
	Payload string
}

// recordingPublisher stands in for the broker.
type recordingPublisher struct {
	mu  sync.Mutex
	got []published
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, ev events.Event) events.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := events.Result{Topic: topic, Payload: ev.Encode(), Err: p.err}
	p.got = append(p.got, published{Topic: topic, Payload: res.Payload})
	return res
}

func (p *recordingPublisher) payloads() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.got))
	for _, g := range p.got {
		out = append(out, g.Payload)
	}
	return out
}

type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(u *model.User) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + u.ID, nil
}

// plainHasher keeps tests fast; the bcrypt hasher has its own tests.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func (plainHasher) Compare(hash, p string) error {
	if hash != "hashed:"+p {
		return errors.New("mismatch")
	}
	return nil
}

// memMediaRepo is an in-memory repository.MediaRepository.
type memMediaRepo struct {
	mu   sync.Mutex
	rows map[string]model.Media
}

func newMemMediaRepo() *memMediaRepo {
	return &memMediaRepo{rows: map[string]model.Media{}}
}

func (r *memMediaRepo) Create(_ context.Context, m *model.Media) (*model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[m.ID] = *m
	out := *m
	return &out, nil
}

func (r *memMediaRepo) FindByID(_ context.Context, id string) (*model.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *memMediaRepo) filter(keep func(model.Media) bool) []model.Media {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Media, 0)
	for _, m := range r.rows {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memMediaRepo) FindByProductID(_ context.Context, productID string) ([]model.Media, error) {
	return r.filter(func(m model.Media) bool { return m.ProductID != nil && *m.ProductID == productID }), nil
}

func (r *memMediaRepo) FindByUserID(_ context.Context, userID string) ([]model.Media, error) {
	return r.filter(func(m model.Media) bool { return m.UserID == userID }), nil
}

func (r *memMediaRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memMediaRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
