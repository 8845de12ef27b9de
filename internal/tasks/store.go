package tasks

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskboard-go/internal/storage"
)

// MaxTasks is the fixed capacity of the task list.
const MaxTasks = 30

// BlobKey is the persistence key that holds the encoded list.
const BlobKey = "tasks"

// Outcome reports what a store operation did.
type Outcome int

const (
	OK Outcome = iota
	Inserted
	RejectedDuplicate
	RejectedFull
	RejectedBadIndex
	NoOpSame
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Inserted:
		return "inserted"
	case RejectedDuplicate:
		return "rejected_duplicate"
	case RejectedFull:
		return "rejected_full"
	case RejectedBadIndex:
		return "rejected_bad_index"
	case NoOpSame:
		return "no_op_same"
	default:
		return "unknown"
	}
}

// Changed reports whether the outcome mutated the list.
func (o Outcome) Changed() bool {
	return o == OK || o == Inserted
}

// Store is the bounded task list. Every successful mutation is written
// through to the blob store before the call returns.
type Store struct {
	items [MaxTasks]Task
	n     int

	blobs  storage.BlobStore
	logger *log.Logger
}

// NewStore returns an empty store backed by blobs. A nil blobs disables
// persistence; a nil logger discards log output.
func NewStore(blobs storage.BlobStore, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{blobs: blobs, logger: logger}
}

// Load replaces the list with the persisted blob. A missing or unreadable
// blob leaves the list empty. Entries past capacity are dropped; everything
// else is kept as saved. Load returns the number of tasks loaded.
func (s *Store) Load() int {
	s.n = 0
	if s.blobs == nil {
		return 0
	}
	data, err := s.blobs.Get(BlobKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("no saved tasks")
		} else {
			s.logger.Warn("load tasks failed, starting empty", "err", err)
		}
		return 0
	}
	list, err := Decode(data)
	if err != nil {
		s.logger.Warn("saved tasks unreadable, starting empty", "err", err)
		return 0
	}
	if len(list) > MaxTasks {
		s.logger.Warn("dropped saved tasks past capacity", "count", len(list)-MaxTasks)
		list = list[:MaxTasks]
	}
	s.n = copy(s.items[:], list)
	s.logger.Debug("loaded tasks", "count", s.n)
	return s.n
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return s.n
}

// Full reports whether the list is at capacity.
func (s *Store) Full() bool {
	return s.n == MaxTasks
}

// Valid reports whether i addresses an existing task.
func (s *Store) Valid(i int) bool {
	return i >= 0 && i < s.n
}

// At returns the task at i.
func (s *Store) At(i int) (Task, bool) {
	if !s.Valid(i) {
		return Task{}, false
	}
	return s.items[i], true
}

// Snapshot returns a copy of the list in order.
func (s *Store) Snapshot() []Task {
	out := make([]Task, s.n)
	copy(out, s.items[:s.n])
	return out
}

// Add appends t unless the list already holds a duplicate or is full. The
// duplicate check comes first so a duplicate is reported even on a full list.
func (s *Store) Add(t Task) Outcome {
	t = t.Normalize()
	if IndexOfDuplicate(s.items[:s.n], t) >= 0 {
		s.logger.Debug("add rejected, duplicate", "title", t.Title)
		return RejectedDuplicate
	}
	if s.n == MaxTasks {
		s.logger.Debug("add rejected, list full", "title", t.Title)
		return RejectedFull
	}
	s.items[s.n] = t
	s.n++
	s.save()
	return Inserted
}

// Edit applies p to the task at i. A patch that would make the task a
// duplicate of another one is rejected.
func (s *Store) Edit(i int, p Patch) Outcome {
	if !s.Valid(i) {
		return RejectedBadIndex
	}
	edited := p.Apply(s.items[i])
	for j := 0; j < s.n; j++ {
		if j != i && s.items[j].DuplicateOf(edited) {
			s.logger.Debug("edit rejected, duplicate", "id", i, "title", edited.Title)
			return RejectedDuplicate
		}
	}
	s.items[i] = edited
	s.save()
	return OK
}

// Delete removes the task at i and shifts the rest down.
func (s *Store) Delete(i int) Outcome {
	if !s.Valid(i) {
		return RejectedBadIndex
	}
	copy(s.items[i:s.n-1], s.items[i+1:s.n])
	s.n--
	s.items[s.n] = Task{}
	s.save()
	return OK
}

// ClearAll empties the list.
func (s *Store) ClearAll() Outcome {
	for i := 0; i < s.n; i++ {
		s.items[i] = Task{}
	}
	s.n = 0
	s.save()
	return OK
}

// Reorder moves the task at src to dst, shifting the tasks between them by
// one slot.
func (s *Store) Reorder(src, dst int) Outcome {
	if !s.Valid(src) || !s.Valid(dst) {
		return RejectedBadIndex
	}
	if src == dst {
		return NoOpSame
	}
	moved := s.items[src]
	if src < dst {
		copy(s.items[src:dst], s.items[src+1:dst+1])
	} else {
		copy(s.items[dst+1:src+1], s.items[dst:src])
	}
	s.items[dst] = moved
	s.save()
	return OK
}

// Encode returns the persisted form of the current list.
func (s *Store) Encode() ([]byte, error) {
	return Encode(s.items[:s.n])
}

func (s *Store) save() {
	if s.blobs == nil {
		return
	}
	data, err := s.Encode()
	if err != nil {
		s.logger.Warn("encode tasks failed", "err", err)
		return
	}
	if err := s.blobs.Put(BlobKey, data); err != nil {
		s.logger.Warn("save tasks failed", "err", err)
	}
}
