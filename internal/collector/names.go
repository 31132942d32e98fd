package collector

import (
	"sort"
	"strconv"

	"apix/internal/astentity"
	"apix/internal/program"
)

// assignNames gives every entry a name that is unique in the flattened output.
// Exported names are never changed; two entities claiming one export name is an
// internal error. Other entries are processed in sort-key order and get a
// numeric suffix when their name is taken, global, or "default".
func (c *Collector) assignNames() error {
	owner := make(map[string]astentity.EntityID)
	for _, g := range c.res.GlobalNames {
		owner[g] = astentity.NoEntityID
	}
	owner["default"] = astentity.NoEntityID

	for _, e := range c.entries {
		for _, name := range emittableExportNames(e) {
			if prev, ok := owner[name]; ok && prev != e.Entity && prev.IsValid() {
				return internalErrorf("the export name %q is claimed by two different entities", name)
			}
			owner[name] = e.Entity
		}
	}

	free := func(name string, id astentity.EntityID) bool {
		prev, ok := owner[name]
		return !ok || (prev.IsValid() && prev == id)
	}
	unique := func(base string, id astentity.EntityID) string {
		if free(base, id) {
			return base
		}
		for n := 2; ; n++ {
			cand := base + "_" + strconv.Itoa(n)
			if free(cand, id) {
				return cand
			}
		}
	}

	var deferred, forgotten []*DtsEntry
	for _, e := range c.entries {
		switch names := emittableExportNames(e); {
		case !e.Exported:
			forgotten = append(forgotten, e)
		case len(names) == 1 && len(e.ExportNames) == 1:
			e.SetNameForEmit(names[0])
		default:
			deferred = append(deferred, e)
		}
	}
	for _, e := range deferred {
		name := unique(e.OriginalName, e.Entity)
		owner[name] = e.Entity
		e.SetNameForEmit(name)
	}

	sortEntries(forgotten)
	for _, e := range forgotten {
		name := unique(e.OriginalName, e.Entity)
		owner[name] = e.Entity
		e.SetNameForEmit(name)
	}
	return nil
}

// emittableExportNames drops "default" and "export=", which are not declared names.
func emittableExportNames(e *DtsEntry) []string {
	var out []string
	for _, n := range e.ExportNames {
		if n != "default" && n != program.ExportAssignName {
			out = append(out, n)
		}
	}
	return out
}

func (c *Collector) sortEntries() { sortEntries(c.entries) }

// sortEntries orders by sort key, then source path, then offset.
func sortEntries(entries []*DtsEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ka, kb := a.SortKey(), b.SortKey(); ka != kb {
			return ka < kb
		}
		if a.path != b.path {
			return a.path < b.path
		}
		return a.offset < b.offset
	})
}
