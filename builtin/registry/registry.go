// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry tracks enrolled members, their sequential member ids and
// their capability roles. Every role check the engines perform resolves
// through this package.
package registry

import (
	"github.com/pkg/errors"

	"github.com/covermutual/sentinel/builtin/reverts"
	"github.com/covermutual/sentinel/builtin/sstore"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

var (
	slotEntries   = sentinel.BytesToBytes32([]byte("members"))
	slotByID      = sentinel.BytesToBytes32([]byte("members-by-id"))
	slotHead      = sentinel.BytesToBytes32([]byte("members-head"))
	slotTail      = sentinel.BytesToBytes32([]byte("members-tail"))
	slotIDCounter = sentinel.BytesToBytes32([]byte("members-counter"))
)

// ErrAlreadyEnrolled the address already holds a member record.
var ErrAlreadyEnrolled = reverts.New("already enrolled")

// Registry implements the member and role ledger.
type Registry struct {
	entries *sstore.Mapping[sentinel.Address, *entry]
	byID    *sstore.Mapping[sentinel.MemberID, sentinel.Address]
	head    *sstore.AddressSlot
	tail    *sstore.AddressSlot
	counter *sstore.Counter
}

// New creates an instance bound to the given engine address.
func New(addr sentinel.Address, state *state.State) *Registry {
	context := sstore.NewContext(addr, state)
	return &Registry{
		entries: sstore.NewMapping[sentinel.Address, *entry](context, slotEntries),
		byID:    sstore.NewMapping[sentinel.MemberID, sentinel.Address](context, slotByID),
		head:    sstore.NewAddress(context, slotHead),
		tail:    sstore.NewAddress(context, slotTail),
		counter: sstore.NewCounter(context, slotIDCounter),
	}
}

func (r *Registry) getEntry(addr sentinel.Address) (*entry, error) {
	e, err := r.entries.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member")
	}
	return e, nil
}

func (r *Registry) setEntry(addr sentinel.Address, e *entry) error {
	if err := r.entries.Set(addr, e); err != nil {
		return errors.Wrap(err, "failed to set member")
	}
	return nil
}

// Enroll adds a new member with the given roles and returns the allocated
// member id. Ids are sequential and 1-based.
func (r *Registry) Enroll(addr sentinel.Address, roles Role) (sentinel.MemberID, error) {
	existing, err := r.getEntry(addr)
	if err != nil {
		return 0, err
	}
	if !existing.IsEmpty() {
		return 0, ErrAlreadyEnrolled
	}

	id, err := r.counter.Next()
	if err != nil {
		return 0, err
	}

	e := &entry{ID: id, Roles: uint8(roles), Listed: true}

	// append to the enrolment list
	tail, err := r.tail.Get()
	if err != nil {
		return 0, err
	}
	if tail.IsZero() {
		r.head.Set(&addr)
	} else {
		tailEntry, err := r.getEntry(tail)
		if err != nil {
			return 0, err
		}
		tailEntry.Next = &addr
		if err := r.setEntry(tail, tailEntry); err != nil {
			return 0, err
		}
		e.Prev = &tail
	}
	r.tail.Set(&addr)

	if err := r.setEntry(addr, e); err != nil {
		return 0, err
	}
	if err := r.byID.Set(sentinel.MemberID(id), addr); err != nil {
		return 0, errors.Wrap(err, "failed to index member")
	}
	return sentinel.MemberID(id), nil
}

// SetRoles replaces the role set of an enrolled member.
// It returns false when the address is not enrolled.
func (r *Registry) SetRoles(addr sentinel.Address, roles Role) (bool, error) {
	e, err := r.getEntry(addr)
	if err != nil {
		return false, err
	}
	if e.IsEmpty() {
		return false, nil
	}
	e.Roles = uint8(roles)
	return true, r.setEntry(addr, e)
}

// Delist unlinks the member from the enrolment list and clears its roles.
// The record itself is retained so the member id stays resolvable.
func (r *Registry) Delist(addr sentinel.Address) (bool, error) {
	e, err := r.getEntry(addr)
	if err != nil {
		return false, err
	}
	if e.IsEmpty() || !e.Listed {
		return false, nil
	}

	if e.Prev == nil {
		r.head.Set(e.Next)
	} else {
		prevEntry, err := r.getEntry(*e.Prev)
		if err != nil {
			return false, err
		}
		prevEntry.Next = e.Next
		if err := r.setEntry(*e.Prev, prevEntry); err != nil {
			return false, err
		}
	}

	if e.Next == nil {
		r.tail.Set(e.Prev)
	} else {
		nextEntry, err := r.getEntry(*e.Next)
		if err != nil {
			return false, err
		}
		nextEntry.Prev = e.Prev
		if err := r.setEntry(*e.Next, nextEntry); err != nil {
			return false, err
		}
	}

	e.Prev = nil
	e.Next = nil
	e.Listed = false
	e.Roles = 0
	return true, r.setEntry(addr, e)
}

// MemberIDOf resolves an address to its member id, zero when not enrolled.
func (r *Registry) MemberIDOf(addr sentinel.Address) (sentinel.MemberID, error) {
	e, err := r.getEntry(addr)
	if err != nil {
		return 0, err
	}
	return sentinel.MemberID(e.ID), nil
}

// AddressOf resolves a member id to its address of record.
func (r *Registry) AddressOf(id sentinel.MemberID) (sentinel.Address, error) {
	addr, err := r.byID.Get(id)
	if err != nil {
		return sentinel.Address{}, errors.Wrap(err, "failed to resolve member id")
	}
	return addr, nil
}

// HasRole reports whether addr is enrolled, listed and holds the role.
func (r *Registry) HasRole(addr sentinel.Address, role Role) (bool, error) {
	e, err := r.getEntry(addr)
	if err != nil {
		return false, err
	}
	if e.IsEmpty() || !e.Listed {
		return false, nil
	}
	return Role(e.Roles)&role == role, nil
}

// IsMember reports whether addr holds protocol membership.
func (r *Registry) IsMember(addr sentinel.Address) (bool, error) {
	return r.HasRole(addr, RoleMember)
}

// IsGovernor reports whether addr may call governor-only operations.
func (r *Registry) IsGovernor(addr sentinel.Address) (bool, error) {
	return r.HasRole(addr, RoleGovernor)
}

// All lists every listed member in enrolment order.
func (r *Registry) All() ([]*Member, error) {
	ptr, err := r.head.Get()
	if err != nil {
		return nil, err
	}
	var members []*Member
	for !ptr.IsZero() {
		e, err := r.getEntry(ptr)
		if err != nil {
			return nil, err
		}
		if e.IsEmpty() {
			break
		}
		members = append(members, &Member{
			Address: ptr,
			ID:      sentinel.MemberID(e.ID),
			Roles:   Role(e.Roles),
		})
		if e.Next == nil {
			break
		}
		ptr = *e.Next
	}
	return members, nil
}
