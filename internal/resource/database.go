package resource

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
)

// ErrNotFound is returned when a name does not resolve to a resource.
var ErrNotFound = errors.New("resource: not found")

type key struct {
	kind Kind
	name string
}

// Database interns resource infos by kind and name and hands out dense
// indices. It is safe for concurrent use; once a world is built it is only
// read.
type Database struct {
	mu     sync.RWMutex
	infos  []Info
	byName map[key]Index
}

// NewDatabase constructs an empty database and optionally seeds it with
// initial infos. The kind of each seeded info must already be set.
func NewDatabase(infos ...Info) *Database {
	db := &Database{byName: make(map[key]Index, len(infos))}
	for _, info := range infos {
		_, _ = db.Register(info.Kind, info) // ignore duplicates during seed
	}
	return db
}

// Register interns info under kind and returns its index. Registering the
// same kind+name twice returns the existing index as long as Max agrees.
func (db *Database) Register(kind Kind, info Info) (Index, error) {
	name := strings.TrimSpace(info.Name)
	if name == "" {
		return 0, errors.New("resource: info missing name")
	}
	if info.Max < 0 {
		return 0, fmt.Errorf("resource: %s %q has negative max", kind, name)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.byName == nil {
		db.byName = make(map[key]Index)
	}

	k := key{kind: kind, name: name}
	if idx, exists := db.byName[k]; exists {
		if db.infos[idx].Max != info.Max {
			return 0, fmt.Errorf("resource: %s %q re-registered with different max", kind, name)
		}
		return idx, nil
	}

	info.Name = name
	info.Kind = kind
	info.Index = Index(len(db.infos))
	db.infos = append(db.infos, info)
	db.byName[k] = info.Index
	return info.Index, nil
}

// Get returns the info for idx.
func (db *Database) Get(idx Index) (Info, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if idx < 0 || int(idx) >= len(db.infos) {
		return Info{}, false
	}
	return db.infos[idx], true
}

// Name returns the display name for idx, or a placeholder for unknown indices.
func (db *Database) Name(idx Index) string {
	info, ok := db.Get(idx)
	if !ok {
		return fmt.Sprintf("resource#%d", idx)
	}
	return info.Name
}

// Lookup resolves a resource by kind and name.
func (db *Database) Lookup(kind Kind, name string) (Info, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	idx, ok := db.byName[key{kind: kind, name: strings.TrimSpace(name)}]
	if !ok {
		return Info{}, false
	}
	return db.infos[idx], true
}

// Find resolves a resource by kind and name, returning an error that
// suggests the closest registered name on a miss.
func (db *Database) Find(kind Kind, name string) (Info, error) {
	if info, ok := db.Lookup(kind, name); ok {
		return info, nil
	}
	if s := db.Suggest(kind, name); s != "" {
		return Info{}, fmt.Errorf("%w: %s %q (did you mean %q?)", ErrNotFound, kind, name, s)
	}
	return Info{}, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}

// Suggest returns the registered name of the given kind closest to name, or
// "" if nothing is close enough to be a plausible typo.
func (db *Database) Suggest(kind Kind, name string) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	target := strings.ToLower(strings.TrimSpace(name))
	best, bestDist := "", -1
	for _, info := range db.infos {
		if info.Kind != kind {
			continue
		}
		dist := levenshtein.ComputeDistance(target, strings.ToLower(info.Name))
		if dist > suggestLimit(len(info.Name)) {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && info.Name < best) {
			best, bestDist = info.Name, dist
		}
	}
	return best
}

func suggestLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// OfKind returns every info of the given kind in index order.
func (db *Database) OfKind(kind Kind) []Info {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var out []Info
	for _, info := range db.infos {
		if info.Kind == kind {
			out = append(out, info)
		}
	}
	return out
}

// Len returns the number of interned resources.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.infos)
}

// Export copies database contents into a slice sorted by kind then name,
// suitable for spoiler output.
func (db *Database) Export() []Info {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if len(db.infos) == 0 {
		return nil
	}
	out := make([]Info, len(db.infos))
	copy(out, db.infos)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}
