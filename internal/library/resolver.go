// Package library tracks which track identities already have a file in the
// output tree and decides where incoming files go.
//
// A Resolver holds two indexes under one mutex: identity to canonical path,
// and canonical path to identity. Every decision reads and updates both in a
// single critical section; the file transfer that follows happens outside
// it.
package library

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/handiism/organisiert/internal/config"
	"github.com/handiism/organisiert/internal/model"
)

// Action is what the organizer should do with a resolved file.
type Action int

const (
	// Place transfers the file to Decision.Path.
	Place Action = iota

	// Duplicate leaves the file untouched.
	Duplicate
)

func (a Action) String() string {
	if a == Place {
		return "place"
	}
	return "duplicate"
}

// Decision is the result of Resolve.
type Decision struct {
	Action Action

	// Path is the destination for Place, or the canonical path of the
	// identity the file duplicates.
	Path string

	// Key is the identity now recorded for Path. Renamed copies get a
	// derived key whose title carries " (N)".
	Key model.MetadataKey

	// Replaces is set by the overwrite policy: the previous canonical file,
	// to be removed once the new file is in place.
	Replaces string

	seq         uint64
	replacedSeq uint64
}

// claim is the owner of a canonical path. seq tells placements apart; seeded
// files have seq 0.
type claim struct {
	key model.MetadataKey
	seq uint64
}

// placement counts the transfers in flight into one path.
type placement struct {
	n    int
	done chan struct{}
}

// Resolver is the identity map shared by all workers of a run.
type Resolver struct {
	mu         sync.Mutex
	identities map[model.MetadataKey]string
	paths      map[string]claim
	seq        uint64

	// pending holds placements whose transfer has not finished yet.
	pending map[string]*placement

	// retiring holds paths given up by the overwrite policy whose file has
	// not been removed yet. They are not handed out again until Retired.
	retiring map[string]struct{}

	occupied func(path string) bool
}

// NewResolver returns an empty Resolver.
//
// occupied, when non-nil, reports whether a path holds a file the Resolver
// does not know about, such as an output file whose tags could not be read.
// Such paths are never handed out.
func NewResolver(occupied func(path string) bool) *Resolver {
	return &Resolver{
		identities: make(map[model.MetadataKey]string),
		paths:      make(map[string]claim),
		pending:    make(map[string]*placement),
		retiring:   make(map[string]struct{}),
		occupied:   occupied,
	}
}

// Seed records a file that already exists in the output tree.
//
// When key is taken by another file the first free rename-derived key is
// used instead, so every existing file stays addressable. The key actually
// recorded is returned.
func (r *Resolver) Seed(key model.MetadataKey, path string) model.MetadataKey {
	path = filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.paths[path]; ok {
		return owner.key
	}
	if _, taken := r.identities[key]; !taken {
		r.claimLocked(key, path, 0)
		return key
	}
	for n := 1; ; n++ {
		derived := key.WithSuffix(n)
		if _, taken := r.identities[derived]; !taken {
			r.claimLocked(derived, path, 0)
			return derived
		}
	}
}

// Resolve decides the destination of source, whose rendered and sanitized
// destination is candidate and whose identity is key.
//
//   - An unknown identity claims candidate and is placed there.
//   - A source that is itself a canonical file is a duplicate.
//   - A known identity follows policy: skip reports a duplicate, rename
//     claims "<stem> (N)<ext>" under a derived key, overwrite takes over the
//     identity and reports the old file in Decision.Replaces.
//
// Two identities never share a path: a candidate already held by a
// different identity, or by a file the Resolver does not know, is moved to
// the first free "<stem> (N)<ext>".
//
// Every Place decision must be followed by Commit or Release.
func (r *Resolver) Resolve(source, candidate string, key model.MetadataKey, policy config.DuplicatePolicy) Decision {
	source = filepath.Clean(source)
	candidate = filepath.Clean(candidate)

	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.paths[source]; ok {
		return Decision{Action: Duplicate, Path: source, Key: owner.key}
	}

	existing, taken := r.identities[key]
	if !taken {
		return r.placeLocked(source, candidate, key)
	}

	switch policy {
	case config.DuplicateRename:
		for n := 1; ; n++ {
			derived := key.WithSuffix(n)
			if _, used := r.identities[derived]; used {
				continue
			}
			path := suffixedPath(candidate, n)
			if r.takenLocked(path, source) {
				continue
			}
			if path == source {
				r.claimLocked(derived, path, 0)
				return Decision{Action: Duplicate, Path: path, Key: derived}
			}
			return r.startLocked(derived, path)
		}
	case config.DuplicateOverwrite:
		previous := r.paths[existing]
		delete(r.identities, key)
		delete(r.paths, existing)
		if candidate == existing {
			// The transfer replaces the file in place.
			return r.startLocked(key, candidate)
		}
		r.retiring[existing] = struct{}{}
		decision := r.placeLocked(source, candidate, key)
		if decision.Action == Duplicate {
			delete(r.retiring, existing)
			return decision
		}
		decision.Replaces = existing
		decision.replacedSeq = previous.seq
		return decision
	default:
		return Decision{Action: Duplicate, Path: existing, Key: key}
	}
}

// Commit marks the transfer of a Place decision as finished.
func (r *Resolver) Commit(d Decision) {
	if d.Action != Place {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishLocked(d.Path)
}

// Release undoes a Place decision whose transfer failed. The identity is
// freed unless another decision took it over meanwhile, and a file the
// decision meant to replace becomes canonical again.
func (r *Resolver) Release(d Decision) {
	if d.Action != Place {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.finishLocked(d.Path)
	if owner, ok := r.paths[d.Path]; ok && owner.seq == d.seq {
		delete(r.paths, d.Path)
		if path, ok := r.identities[d.Key]; ok && path == d.Path {
			delete(r.identities, d.Key)
		}
	}
	if d.Replaces == "" {
		return
	}
	delete(r.retiring, d.Replaces)
	if _, taken := r.identities[d.Key]; taken {
		return
	}
	if _, used := r.paths[d.Replaces]; used {
		return
	}
	r.claimLocked(d.Key, d.Replaces, d.replacedSeq)
}

// Settled returns a channel that is closed once no transfer into path is in
// flight.
func (r *Resolver) Settled(path string) <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pending[filepath.Clean(path)]; ok {
		return p.done
	}
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Retired frees a path reported in Decision.Replaces once its file has been
// removed.
func (r *Resolver) Retired(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.retiring, filepath.Clean(path))
}

// Len returns the number of recorded identities.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.identities)
}

func (r *Resolver) placeLocked(source, candidate string, key model.MetadataKey) Decision {
	path := candidate
	for n := 1; r.takenLocked(path, source); n++ {
		path = suffixedPath(candidate, n)
	}

	// The file already sits where it would be placed.
	if path == source {
		r.claimLocked(key, path, 0)
		return Decision{Action: Duplicate, Path: path, Key: key}
	}
	return r.startLocked(key, path)
}

// takenLocked reports whether path is unavailable for a new placement. The
// source's own location never counts as taken.
func (r *Resolver) takenLocked(path, source string) bool {
	if _, used := r.paths[path]; used {
		return true
	}
	if _, used := r.retiring[path]; used {
		return true
	}
	if _, used := r.pending[path]; used {
		return true
	}
	if path == source {
		return false
	}
	return r.occupied != nil && r.occupied(path)
}

func (r *Resolver) startLocked(key model.MetadataKey, path string) Decision {
	r.seq++
	r.claimLocked(key, path, r.seq)

	p, ok := r.pending[path]
	if !ok {
		p = &placement{done: make(chan struct{})}
		r.pending[path] = p
	}
	p.n++
	return Decision{Action: Place, Path: path, Key: key, seq: r.seq}
}

func (r *Resolver) finishLocked(path string) {
	p, ok := r.pending[path]
	if !ok {
		return
	}
	if p.n--; p.n == 0 {
		close(p.done)
		delete(r.pending, path)
	}
}

func (r *Resolver) claimLocked(key model.MetadataKey, path string, seq uint64) {
	r.identities[key] = path
	r.paths[path] = claim{key: key, seq: seq}
}

// suffixedPath turns "dir/name.ext" into "dir/name (n).ext".
func suffixedPath(path string, n int) string {
	dir, base := filepath.Split(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return dir + fmt.Sprintf("%s (%d)%s", stem, n, ext)
}
