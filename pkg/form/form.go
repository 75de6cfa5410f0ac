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

// Package form names item definitions in the host's data and parses the
// literal forms used to reference them from text files.
package form

import (
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🔑 ID is the stable integer key of one form in the host's data
type ID uint32

// String renders the id the way the host prints form ids
func (id ID) String() string {
	return fmt.Sprintf("0x%08X", uint32(id))
}

// RefKind tells which literal form a Ref was written in.
type RefKind int

const (
	RefEditorID RefKind = iota // BearPelt
	RefLocal                   // 0x12345~Skyrim.esm
	RefHex                     // 0x00012345
)

func (k RefKind) String() string {
	switch k {
	case RefEditorID:
		return "editor_id"
	case RefLocal:
		return "local"
	case RefHex:
		return "hex"
	default:
		return "unknown"
	}
}

// 📝 Ref is an unresolved reference to a form as written in a data file
type Ref struct {
	Kind     RefKind
	EditorID string // set for RefEditorID
	Plugin   string // set for RefLocal
	Value    uint32 // local id for RefLocal, full id for RefHex
}

func (r Ref) String() string {
	switch r.Kind {
	case RefEditorID:
		return r.EditorID
	case RefLocal:
		return fmt.Sprintf("0x%X~%s", r.Value, r.Plugin)
	default:
		return fmt.Sprintf("0x%08X", r.Value)
	}
}

// 🔍 ParseRef parses one of:
//
//	EditorID
//	0xHEX~Plugin.esp (Plugin.esp~0xHEX is accepted too)
//	0xHEX
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, errors.New("empty reference")
	}

	if left, right, ok := strings.Cut(s, "~"); ok {
		left, right = strings.TrimSpace(left), strings.TrimSpace(right)
		if v, err := parseHex(left); err == nil && right != "" {
			return Ref{Kind: RefLocal, Plugin: right, Value: v}, nil
		}
		if v, err := parseHex(right); err == nil && left != "" {
			return Ref{Kind: RefLocal, Plugin: left, Value: v}, nil
		}
		return Ref{}, errors.Errorf("invalid plugin reference %q: want 0xHEX~Plugin", s)
	}

	if hasHexPrefix(s) {
		v, err := parseHex(s)
		if err != nil {
			return Ref{}, errors.Errorf("invalid hex form id %q: %w", s, err)
		}
		return Ref{Kind: RefHex, Value: v}, nil
	}

	if strings.ContainsFunc(s, isSpace) {
		return Ref{}, errors.Errorf("invalid editor id %q: contains whitespace", s)
	}
	return Ref{Kind: RefEditorID, EditorID: s}, nil
}

func hasHexPrefix(s string) bool {
	return len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func parseHex(s string) (uint32, error) {
	if !hasHexPrefix(s) {
		return 0, errors.Errorf("missing 0x prefix in %q", s)
	}
	v, err := strconv.ParseUint(s[2:], 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
