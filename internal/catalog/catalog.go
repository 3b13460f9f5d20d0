// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"fmt"
	"strings"
)

// =============================================================================
// MERGE POLICY
// =============================================================================

// MergePolicy decides how incoming entries are checked against the catalog.
type MergePolicy int

const (
	// MergeAlwaysCheck drops every incoming entry whose name is already
	// present, including duplicates inside the incoming batch itself.
	MergeAlwaysCheck MergePolicy = iota

	// MergeEmptyFastPath skips the name check when the catalog is empty at
	// the start of the merge, so a batch merged into an empty catalog is
	// kept whole. Later merges are checked as with MergeAlwaysCheck.
	MergeEmptyFastPath
)

// String returns the config spelling of the policy.
func (p MergePolicy) String() string {
	switch p {
	case MergeEmptyFastPath:
		return "empty-fast-path"
	default:
		return "always-check"
	}
}

// ParseMergePolicy parses the config spelling of a policy.
func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always-check":
		return MergeAlwaysCheck, nil
	case "empty-fast-path":
		return MergeEmptyFastPath, nil
	default:
		return MergeAlwaysCheck, fmt.Errorf("unknown merge policy %q (expected always-check or empty-fast-path)", s)
	}
}

// MergeResult counts what a Merge did.
type MergeResult struct {
	Added   int
	Skipped int
}

// Add accumulates another result into r.
func (r *MergeResult) Add(other MergeResult) {
	r.Added += other.Added
	r.Skipped += other.Skipped
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is an ordered collection of entries. Insertion order is load order
// and, under MergeAlwaysCheck, no two entries share a name.
//
// A Catalog is owned by a single session and is not safe for concurrent use.
type Catalog struct {
	entries []Entry
	index   map[string]int
	policy  MergePolicy
}

// New returns an empty catalog using MergeAlwaysCheck.
func New() *Catalog {
	return NewWithPolicy(MergeAlwaysCheck)
}

// NewWithPolicy returns an empty catalog using the given merge policy.
func NewWithPolicy(policy MergePolicy) *Catalog {
	return &Catalog{
		index:  make(map[string]int),
		policy: policy,
	}
}

// Policy returns the merge policy in effect.
func (c *Catalog) Policy() MergePolicy {
	return c.policy
}

// SetPolicy changes the merge policy for later merges.
func (c *Catalog) SetPolicy(policy MergePolicy) {
	c.policy = policy
}

// Merge appends incoming entries in order. An entry whose name is already in
// the catalog is dropped and counted as skipped; the first occurrence wins.
func (c *Catalog) Merge(incoming []Entry) MergeResult {
	var res MergeResult
	check := c.policy == MergeAlwaysCheck || len(c.entries) > 0

	for _, e := range incoming {
		if check {
			if _, exists := c.index[e.Name]; exists {
				res.Skipped++
				continue
			}
		}
		if _, exists := c.index[e.Name]; !exists {
			c.index[e.Name] = len(c.entries)
		}
		c.entries = append(c.entries, e)
		res.Added++
	}
	return res
}

// Clear removes every entry. The policy is kept.
func (c *Catalog) Clear() {
	c.entries = nil
	c.index = make(map[string]int)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the i-th entry in catalog order.
func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Get returns the entry with the given name. When a fast-path merge let a
// duplicate in, the first one is returned.
func (c *Catalog) Get(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Contains reports whether an entry with the given name exists.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// WithPrefix returns, in catalog order, every entry whose name starts with
// prefix. The comparison is case-sensitive.
func (c *Catalog) WithPrefix(prefix string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		if strings.HasPrefix(e.Name, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the entry names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}
