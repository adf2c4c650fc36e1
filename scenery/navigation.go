package scenery

import (
	"fmt"
	"iter"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// NavIterator walks the entries that existed when the query was made. A
// scenery reload after the query does not change what it yields. An
// iterator can be consumed once; it does not restart.
type NavIterator struct {
	filter  entities.NavFilter
	entries []entities.NavEntry
	next    int
	yielded int
	err     error
}

// QueryNavigation copies the entries of filter.Types out of the host. Id and
// name fragments are matched as entries are taken. A thread error is
// reported through Err and the iterator yields nothing.
func (s *Service) QueryNavigation(filter entities.NavFilter) *NavIterator {
	it := &NavIterator{filter: filter}
	if err := s.calls.Require("scenery.query_navigation", callctx.Sim...); err != nil {
		it.err = err
		return it
	}

	var refs []entities.NavRef
	types := filter.Types
	if types == entities.NavUnknown {
		types = entities.NavAny
	}
	if types == entities.NavAny {
		for ref := s.host.GetFirstNavAid(); ref != entities.NavNotFound; ref = s.host.GetNextNavAid(ref) {
			refs = append(refs, ref)
		}
	} else {
		// The host keeps entries of one type contiguous.
		for _, t := range types.Types() {
			first := s.host.FindFirstNavAidOfType(t)
			last := s.host.FindLastNavAidOfType(t)
			if first == entities.NavNotFound || last == entities.NavNotFound {
				continue
			}
			for ref := first; ref != entities.NavNotFound; ref = s.host.GetNextNavAid(ref) {
				refs = append(refs, ref)
				if ref == last {
					break
				}
			}
		}
	}

	it.entries = make([]entities.NavEntry, 0, len(refs))
	for _, ref := range refs {
		if entry := s.host.GetNavAidInfo(ref); entry.Ref != entities.NavNotFound {
			it.entries = append(it.entries, entry)
		}
	}
	return it
}

// Next returns the next matching entry. It returns false once the
// snapshot or the filter's limit is exhausted, or on error.
func (it *NavIterator) Next() (entities.NavEntry, bool) {
	if it.err != nil {
		return entities.NavEntry{}, false
	}
	if it.filter.Limit > 0 && it.yielded >= it.filter.Limit {
		it.next = len(it.entries)
		return entities.NavEntry{}, false
	}
	for it.next < len(it.entries) {
		entry := it.entries[it.next]
		it.next++
		if !it.filter.Matches(entry) {
			continue
		}
		it.yielded++
		return entry, true
	}
	return entities.NavEntry{}, false
}

// All returns the remaining entries as a sequence. Entries already taken
// by Next or a previous range are not seen again.
func (it *NavIterator) All() iter.Seq[entities.NavEntry] {
	return func(yield func(entities.NavEntry) bool) {
		for {
			entry, ok := it.Next()
			if !ok || !yield(entry) {
				return
			}
		}
	}
}

// Len returns the size of the snapshot, before fragment matching.
func (it *NavIterator) Len() int { return len(it.entries) }

// Err returns the error that stopped the iterator, if any.
func (it *NavIterator) Err() error { return it.err }

// FindNearest returns the entry of one of types nearest to lat/lon.
func (s *Service) FindNearest(types entities.NavType, lat, lon float32) (entities.NavEntry, error) {
	if err := s.calls.Require("scenery.find_nearest", callctx.Sim...); err != nil {
		return entities.NavEntry{}, err
	}
	ref := s.host.FindNavAid("", "", &lat, &lon, types)
	if ref == entities.NavNotFound {
		return entities.NavEntry{}, &errors.NotFoundError{Kind: "navaid", Name: fmt.Sprintf("type mask %d", types)}
	}
	return s.host.GetNavAidInfo(ref), nil
}

// Find returns the entry matching the fragments. With several matches the
// host picks one.
func (s *Service) Find(types entities.NavType, idFragment, nameFragment string) (entities.NavEntry, error) {
	if err := s.calls.Require("scenery.find", callctx.Sim...); err != nil {
		return entities.NavEntry{}, err
	}
	ref := s.host.FindNavAid(nameFragment, idFragment, nil, nil, types)
	if ref == entities.NavNotFound {
		return entities.NavEntry{}, &errors.NotFoundError{Kind: "navaid", Name: idFragment + nameFragment}
	}
	return s.host.GetNavAidInfo(ref), nil
}
