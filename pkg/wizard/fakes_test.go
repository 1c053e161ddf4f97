package wizard

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/empresasintegra/leykarin/pkg/model"
)

type fakeSessionStore struct {
	mu     sync.Mutex
	states map[string]*State
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{states: map[string]*State{}}
}

func (f *fakeSessionStore) Get(_ context.Context, sid string) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[sid]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *state
	return &copied, nil
}

func (f *fakeSessionStore) Put(_ context.Context, sid string, state *State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *state
	f.states[sid] = &copied
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, sid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, sid)
	return nil
}

type fakeCatalog struct {
	companies   map[string]*model.Company
	items       map[string]*model.Item
	relations   map[string]*model.CompanyRelation
	timeBuckets map[string]*model.TimeBucket
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		companies:   map[string]*model.Company{},
		items:       map[string]*model.Item{},
		relations:   map[string]*model.CompanyRelation{},
		timeBuckets: map[string]*model.TimeBucket{},
	}
}

func (f *fakeCatalog) CompanyByName(_ context.Context, name string) (*model.Company, error) {
	return f.companies[name], nil
}

func (f *fakeCatalog) Item(_ context.Context, id string) (*model.Item, error) {
	return f.items[id], nil
}

func (f *fakeCatalog) Relation(_ context.Context, id string) (*model.CompanyRelation, error) {
	return f.relations[id], nil
}

func (f *fakeCatalog) TimeBucket(_ context.Context, id string) (*model.TimeBucket, error) {
	return f.timeBuckets[id], nil
}

type fakeComplainants struct {
	byRUT map[string]*model.Complainant
}

func newFakeComplainants() *fakeComplainants {
	return &fakeComplainants{byRUT: map[string]*model.Complainant{}}
}

func (f *fakeComplainants) FindByRUT(_ context.Context, canonical string) (*model.Complainant, error) {
	return f.byRUT[canonical], nil
}

func (f *fakeComplainants) PublicIDExists(context.Context, string) (bool, error) {
	return false, nil
}

type fakeComplaints struct {
	commits      []*Commit
	takenCodes   map[string]bool
	commitErr    error
	complainants *fakeComplainants
}

func newFakeComplaints(complainants *fakeComplainants) *fakeComplaints {
	return &fakeComplaints{takenCodes: map[string]bool{}, complainants: complainants}
}

func (f *fakeComplaints) CodeExists(_ context.Context, code string) (bool, error) {
	return f.takenCodes[code], nil
}

func (f *fakeComplaints) Commit(_ context.Context, commit *Commit) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	if commit.Complainant.ID == uuid.Nil {
		commit.Complainant.ID = uuid.New()
	}
	commit.Complaint.ComplainantID = commit.Complainant.ID
	f.commits = append(f.commits, commit)
	if commit.Complainant.RUT != nil {
		f.complainants.byRUT[*commit.Complainant.RUT] = commit.Complainant
	}
	return nil
}

type fakeObjectStore struct {
	objects map[string][]byte
	deleted []string
}

func (f *fakeObjectStore) Put(_ context.Context, key, _ string, r io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}
