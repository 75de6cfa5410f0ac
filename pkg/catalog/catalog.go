// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package catalog owns the category sets used to classify items: identifier
// lists loaded once from data files, and keyword-derived caches filled lazily
// while items are classified.
package catalog

import (
	"encoding/binary"
	"encoding/hex"
	"slices"
	"sync"

	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/form"
	"lukechampine.com/blake3"
)

const (
	// DefaultMaxWorkers caps the number of files parsed at once
	DefaultMaxWorkers = 8
	// DefaultExtension is the extension of data files inside category folders
	DefaultExtension = ".txt"
)

// 🔧 Options configures where and how the catalog loads its data
type Options struct {
	Dir        string // data directory holding one file or folder per category
	Extension  string // data file extension inside category folders
	MaxWorkers int    // upper bound on parallel file parsers
}

// 📚 Catalog holds every category set
type Catalog struct {
	resolver form.Resolver
	opts     Options

	// both maps are fully populated by New and never change shape
	listed map[category.Category]*idSet
	lazy   map[category.Category]*idSet

	kwMu     sync.RWMutex
	keywords map[category.Category]form.ID
}

// 🏭 New creates an empty catalog resolving identifiers through resolver
func New(resolver form.Resolver, opts Options) *Catalog {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}

	c := &Catalog{
		resolver: resolver,
		opts:     opts,
		listed:   make(map[category.Category]*idSet),
		lazy:     make(map[category.Category]*idSet),
		keywords: make(map[category.Category]form.ID),
	}
	for _, cat := range category.OfKind(category.KindListed) {
		c.listed[cat] = newIDSet()
	}
	for _, cat := range category.OfKind(category.KindKeyword) {
		c.lazy[cat] = newIDSet()
	}
	return c
}

// Options returns the effective options after defaults were applied.
func (c *Catalog) Options() Options {
	return c.opts
}

// 🔍 IsInCategory reports whether id was listed for cat. Always false for
// categories that are not file backed.
func (c *Catalog) IsInCategory(id form.ID, cat category.Category) bool {
	set, ok := c.listed[cat]
	if !ok {
		return false
	}
	return set.has(id)
}

// Len returns the number of identifiers currently known for cat.
func (c *Catalog) Len(cat category.Category) int {
	if set, ok := c.listed[cat]; ok {
		return set.len()
	}
	if set, ok := c.lazy[cat]; ok {
		return set.len()
	}
	return 0
}

// Members returns the identifiers known for cat in ascending order.
func (c *Catalog) Members(cat category.Category) []form.ID {
	if set, ok := c.listed[cat]; ok {
		return set.sorted()
	}
	if set, ok := c.lazy[cat]; ok {
		return set.sorted()
	}
	return nil
}

// 🔒 Fingerprint digests the file-backed sets. Equal inputs give equal
// fingerprints regardless of load order or worker count.
func (c *Catalog) Fingerprint() string {
	h := blake3.New(32, nil)
	var buf [4]byte
	for _, cat := range category.OfKind(category.KindListed) {
		h.Write([]byte(cat.String()))
		for _, id := range c.listed[cat].sorted() {
			binary.BigEndian.PutUint32(buf[:], uint32(id))
			h.Write(buf[:])
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type idSet struct {
	mu  sync.RWMutex
	ids map[form.ID]struct{}
}

func newIDSet() *idSet {
	return &idSet{ids: make(map[form.ID]struct{})}
}

func (s *idSet) has(id form.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

func (s *idSet) add(id form.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

// merge folds a worker's private set in and returns how many ids were new.
func (s *idSet) merge(local map[form.ID]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for id := range local {
		if _, ok := s.ids[id]; !ok {
			s.ids[id] = struct{}{}
			added++
		}
	}
	return added
}

func (s *idSet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *idSet) sorted() []form.ID {
	s.mu.RLock()
	out := make([]form.ID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.RUnlock()
	slices.Sort(out)
	return out
}
