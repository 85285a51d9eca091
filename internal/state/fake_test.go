package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/labctl/labctl/internal/labapi"
)

// fakeService is an in-memory labapi.Service. List calls can be gated so
// tests control completion order.
type fakeService struct {
	mu        sync.Mutex
	labs      []labapi.Lab
	nextID    int
	listCalls map[labapi.FilterKey]int
	calls     []string
	fail      map[string]error

	// blockers holds List calls (1-based, in call order) until the channel
	// is closed. The response is computed before blocking so a held call
	// returns data as it was when the request started.
	listSeq  int
	blockers map[int]chan struct{}
	started  chan labapi.FilterKey
	// holdWrites, when set, parks every mutation until it is closed.
	holdWrites chan struct{}
}

func newFakeService(labs ...labapi.Lab) *fakeService {
	return &fakeService{
		labs:      labs,
		listCalls: make(map[labapi.FilterKey]int),
		fail:      make(map[string]error),
		blockers:  make(map[int]chan struct{}),
	}
}

var errBoom = errors.New("boom")

func (f *fakeService) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeService) record(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	err := f.fail[op]
	hold := f.holdWrites
	f.mu.Unlock()
	if hold != nil && op != "list" && op != "get" {
		<-hold
	}
	return err
}

func (f *fakeService) block(call int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.blockers[call] = ch
	return ch
}

func (f *fakeService) listCount(key labapi.FilterKey) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls[key]
}

func (f *fakeService) List(ctx context.Context, filter labapi.FilterKey) ([]labapi.Lab, error) {
	f.mu.Lock()
	f.listCalls[filter]++
	f.listSeq++
	gate, started := f.blockers[f.listSeq], f.started
	var out []labapi.Lab
	for _, lab := range f.labs {
		if active, ok := filter.IsActive(); ok && lab.IsActive != active {
			continue
		}
		out = append(out, lab)
	}
	out = labapi.CloneLabs(out)
	f.mu.Unlock()

	if started != nil {
		started <- filter
	}
	if gate != nil {
		<-gate
	}
	if err := f.record("list"); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeService) Get(ctx context.Context, id string) (labapi.Lab, error) {
	if err := f.record("get"); err != nil {
		return labapi.Lab{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lab := range f.labs {
		if lab.ID == id {
			return lab, nil
		}
	}
	return labapi.Lab{}, &labapi.TransportError{Op: "get lab", StatusCode: 404}
}

func (f *fakeService) Create(ctx context.Context, draft labapi.CreateLabRequest) (labapi.Lab, error) {
	if err := f.record("create"); err != nil {
		return labapi.Lab{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	lab := labapi.Lab{
		ID:            fmt.Sprintf("new-%d", f.nextID),
		Name:          draft.Name,
		Description:   draft.Description,
		BaseImage:     draft.BaseImage,
		EstimatedTime: draft.EstimatedTime,
		CreatedAt:     "2025-01-01T00:00:00Z",
	}
	f.labs = append(f.labs, lab)
	return lab, nil
}

func (f *fakeService) Update(ctx context.Context, id string, draft labapi.CreateLabRequest) (labapi.Lab, error) {
	if err := f.record("update"); err != nil {
		return labapi.Lab{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, lab := range f.labs {
		if lab.ID == id {
			f.labs[i].Name = draft.Name
			f.labs[i].Description = draft.Description
			f.labs[i].BaseImage = draft.BaseImage
			f.labs[i].EstimatedTime = draft.EstimatedTime
			return f.labs[i], nil
		}
	}
	return labapi.Lab{}, &labapi.TransportError{Op: "update lab", StatusCode: 404}
}

func (f *fakeService) Delete(ctx context.Context, id string) error {
	if err := f.record("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, lab := range f.labs {
		if lab.ID == id {
			f.labs = append(f.labs[:i], f.labs[i+1:]...)
			return nil
		}
	}
	return &labapi.TransportError{Op: "delete lab", StatusCode: 404}
}

func (f *fakeService) ToggleStatus(ctx context.Context, id string) (labapi.Lab, error) {
	if err := f.record("toggle"); err != nil {
		return labapi.Lab{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, lab := range f.labs {
		if lab.ID == id {
			f.labs[i].IsActive = !lab.IsActive
			return f.labs[i], nil
		}
	}
	return labapi.Lab{}, &labapi.TransportError{Op: "toggle lab status", StatusCode: 404}
}
