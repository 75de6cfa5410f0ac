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

package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/quickxfer/pkg/category"
	"github.com/walteh/quickxfer/pkg/form"
	"github.com/walteh/quickxfer/pkg/host"
	"gitlab.com/tozd/go/errors"
)

// DefaultIntrinsicTags are the keyword forms backing the keyword categories
// in an unmodded game.
var DefaultIntrinsicTags = map[category.Category]string{
	category.Jewelry:   "0x08F95A~Skyrim.esm", // ArmorJewelry
	category.BookSpell: "0x0937A5~Skyrim.esm", // VendorItemSpellTome
}

// 🏷️ LoadIntrinsicTags resolves the keyword form of every keyword category.
// Every keyword category must resolve; without them classification would be
// silently wrong, so any failure is returned and nothing is installed.
func (c *Catalog) LoadIntrinsicTags(ctx context.Context, refs map[category.Category]string) error {
	logger := zerolog.Ctx(ctx).With().Str("module", "catalog").Logger()

	resolved := make(map[category.Category]form.ID)
	for _, cat := range category.OfKind(category.KindKeyword) {
		literal := strings.TrimSpace(refs[cat])
		if literal == "" {
			return errors.Errorf("no keyword configured for %s", cat)
		}
		id, ok, err := form.ParseAndResolve(c.resolver, literal)
		if err != nil {
			return errors.Errorf("parsing keyword for %s: %w", cat, err)
		}
		if !ok {
			return errors.Errorf("keyword %s for %s not found", literal, cat)
		}
		resolved[cat] = id
		logger.Debug().Str("category", cat.String()).Stringer("keyword", id).Msg("keyword resolved")
	}

	c.kwMu.Lock()
	c.keywords = resolved
	c.kwMu.Unlock()

	logger.Info().Int("keywords", len(resolved)).Msg("intrinsic tags loaded")
	return nil
}

// MustLoadIntrinsicTags is LoadIntrinsicTags that panics on failure.
func (c *Catalog) MustLoadIntrinsicTags(ctx context.Context, refs map[category.Category]string) {
	if err := c.LoadIntrinsicTags(ctx, refs); err != nil {
		panic(err)
	}
}

// Keyword returns the resolved keyword form for cat.
func (c *Catalog) Keyword(cat category.Category) (form.ID, bool) {
	c.kwMu.RLock()
	defer c.kwMu.RUnlock()
	id, ok := c.keywords[cat]
	return id, ok
}

// 🔍 IsByIntrinsicTag reports whether item carries cat's keyword. Positive
// answers are memoized per form and never evicted; negative answers are not
// cached and probe the item again next time.
func (c *Catalog) IsByIntrinsicTag(item host.Item, cat category.Category) bool {
	if item == nil {
		return false
	}
	cache, ok := c.lazy[cat]
	if !ok {
		return false
	}

	id := item.FormID()
	if cache.has(id) {
		return true
	}

	kw, ok := c.Keyword(cat)
	if !ok || !item.HasKeyword(kw) {
		return false
	}
	cache.add(id)
	return true
}
