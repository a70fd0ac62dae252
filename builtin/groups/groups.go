// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package groups implements the assessor group registry: named sets of
// member ids per product type, with governor-managed add/remove and the
// product-type assessment configuration consumed when a poll opens.
//
// Membership operations use idempotent set semantics but emit their audit
// event unconditionally, so the event trail records every attempted change,
// not just effective ones.
package groups

import (
	"github.com/pkg/errors"

	"github.com/covermutual/sentinel/builtin/events"
	"github.com/covermutual/sentinel/builtin/reverts"
	"github.com/covermutual/sentinel/builtin/sstore"
	"github.com/covermutual/sentinel/log"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

var logger = log.WithContext("pkg", "groups")

var (
	slotAssessors    = sentinel.BytesToBytes32([]byte("group-assessors"))
	slotMetadata     = sentinel.BytesToBytes32([]byte("group-metadata"))
	slotMemberGroups = sentinel.BytesToBytes32([]byte("member-groups"))
	slotProductTypes = sentinel.BytesToBytes32([]byte("product-types"))
	slotGroupCounter = sentinel.BytesToBytes32([]byte("group-counter"))
)

var (
	// ErrUnauthorized the caller lacks the governor role.
	ErrUnauthorized = reverts.New("unauthorized")
	// ErrInvalidMemberID a member id is zero.
	ErrInvalidMemberID = reverts.New("invalid member id")
	// ErrInvalidGroupID the group id is zero or beyond the allocated range.
	ErrInvalidGroupID = reverts.New("invalid group id")
)

// Authority answers the capability checks the registry performs.
type Authority interface {
	IsGovernor(addr sentinel.Address) (bool, error)
}

// Groups implements the assessor group registry.
type Groups struct {
	state     *state.State
	authority Authority
	emitter   *events.Emitter
	events    *events.Bound

	assessors    *sstore.Mapping[sentinel.GroupID, []uint64]
	metadata     *sstore.Mapping[sentinel.GroupID, sentinel.Bytes32]
	memberGroups *sstore.Mapping[sentinel.MemberID, []uint64]
	productTypes *sstore.Mapping[sentinel.ProductTypeID, *productType]
	counter      *sstore.Counter
}

// New creates an instance bound to the given engine address.
func New(addr sentinel.Address, state *state.State, authority Authority, emitter *events.Emitter) *Groups {
	context := sstore.NewContext(addr, state)
	return &Groups{
		state:        state,
		authority:    authority,
		emitter:      emitter,
		events:       emitter.Bind(addr),
		assessors:    sstore.NewMapping[sentinel.GroupID, []uint64](context, slotAssessors),
		metadata:     sstore.NewMapping[sentinel.GroupID, sentinel.Bytes32](context, slotMetadata),
		memberGroups: sstore.NewMapping[sentinel.MemberID, []uint64](context, slotMemberGroups),
		productTypes: sstore.NewMapping[sentinel.ProductTypeID, *productType](context, slotProductTypes),
		counter:      sstore.NewCounter(context, slotGroupCounter),
	}
}

// revertable wraps a mutating entry point with all-or-nothing semantics:
// on error both state and emitted events roll back to the entry snapshot.
func (g *Groups) revertable(fn func() error) (err error) {
	checkpoint := g.state.NewCheckpoint()
	mark := g.emitter.Mark()
	if err = fn(); err != nil {
		g.state.RevertTo(checkpoint)
		g.emitter.RevertTo(mark)
	}
	return
}

func (g *Groups) requireGovernor(caller sentinel.Address) error {
	ok, err := g.authority.IsGovernor(caller)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// checkGroupID validates a group id against the allocated range.
func (g *Groups) checkGroupID(id sentinel.GroupID) error {
	count, err := g.counter.Get()
	if err != nil {
		return err
	}
	if id == 0 || uint64(id) > count {
		return ErrInvalidGroupID
	}
	return nil
}

// AddAssessorsToGroup adds the member ids to the group. A zero group id
// allocates the next group and returns its id. Re-adding a present member
// is a no-op that still emits AssessorAddedToGroup.
func (g *Groups) AddAssessorsToGroup(caller sentinel.Address, memberIDs []sentinel.MemberID, groupID sentinel.GroupID) (sentinel.GroupID, error) {
	err := g.revertable(func() error {
		if err := g.requireGovernor(caller); err != nil {
			return err
		}
		for _, id := range memberIDs {
			if id == 0 {
				return ErrInvalidMemberID
			}
		}
		if groupID == 0 {
			next, err := g.counter.Next()
			if err != nil {
				return err
			}
			groupID = sentinel.GroupID(next)
			logger.Info("assessor group created", "groupID", uint64(groupID))
		} else if err := g.checkGroupID(groupID); err != nil {
			return err
		}
		for _, id := range memberIDs {
			if err := g.addAssessor(groupID, id); err != nil {
				return err
			}
			g.events.Emit("AssessorAddedToGroup", groupID, id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return groupID, nil
}

func (g *Groups) addAssessor(groupID sentinel.GroupID, memberID sentinel.MemberID) error {
	list, err := g.assessors.Get(groupID)
	if err != nil {
		return errors.Wrap(err, "failed to get group assessors")
	}
	if !contains(list, uint64(memberID)) {
		if err := g.assessors.Set(groupID, append(list, uint64(memberID))); err != nil {
			return errors.Wrap(err, "failed to set group assessors")
		}
	}
	groupsOf, err := g.memberGroups.Get(memberID)
	if err != nil {
		return errors.Wrap(err, "failed to get member groups")
	}
	if !contains(groupsOf, uint64(groupID)) {
		if err := g.memberGroups.Set(memberID, append(groupsOf, uint64(groupID))); err != nil {
			return errors.Wrap(err, "failed to set member groups")
		}
	}
	return nil
}

// RemoveAssessorFromGroup removes the member from the group. Removing an
// absent member is a no-op that still emits AssessorRemovedFromGroup.
func (g *Groups) RemoveAssessorFromGroup(caller sentinel.Address, memberID sentinel.MemberID, groupID sentinel.GroupID) error {
	return g.revertable(func() error {
		if err := g.requireGovernor(caller); err != nil {
			return err
		}
		if memberID == 0 {
			return ErrInvalidMemberID
		}
		if err := g.checkGroupID(groupID); err != nil {
			return err
		}
		if err := g.removeAssessor(groupID, memberID); err != nil {
			return err
		}
		g.events.Emit("AssessorRemovedFromGroup", groupID, memberID)
		return nil
	})
}

func (g *Groups) removeAssessor(groupID sentinel.GroupID, memberID sentinel.MemberID) error {
	list, err := g.assessors.Get(groupID)
	if err != nil {
		return errors.Wrap(err, "failed to get group assessors")
	}
	if trimmed, changed := remove(list, uint64(memberID)); changed {
		if err := g.assessors.Set(groupID, trimmed); err != nil {
			return errors.Wrap(err, "failed to set group assessors")
		}
	}
	groupsOf, err := g.memberGroups.Get(memberID)
	if err != nil {
		return errors.Wrap(err, "failed to get member groups")
	}
	if trimmed, changed := remove(groupsOf, uint64(groupID)); changed {
		if err := g.memberGroups.Set(memberID, trimmed); err != nil {
			return errors.Wrap(err, "failed to set member groups")
		}
	}
	return nil
}

// RemoveAssessorFromAllGroups removes the member from every group it
// belongs to, emitting one AssessorRemovedFromGroup per group. A member in
// no groups is a no-op.
func (g *Groups) RemoveAssessorFromAllGroups(caller sentinel.Address, memberID sentinel.MemberID) error {
	return g.revertable(func() error {
		if err := g.requireGovernor(caller); err != nil {
			return err
		}
		if memberID == 0 {
			return ErrInvalidMemberID
		}
		groupsOf, err := g.memberGroups.Get(memberID)
		if err != nil {
			return errors.Wrap(err, "failed to get member groups")
		}
		for _, groupID := range groupsOf {
			if err := g.removeAssessor(sentinel.GroupID(groupID), memberID); err != nil {
				return err
			}
			g.events.Emit("AssessorRemovedFromGroup", sentinel.GroupID(groupID), memberID)
		}
		return nil
	})
}

// SetGroupMetadata overwrites the group's metadata hash; a zero hash clears it.
func (g *Groups) SetGroupMetadata(caller sentinel.Address, groupID sentinel.GroupID, hash sentinel.Bytes32) error {
	return g.revertable(func() error {
		if err := g.requireGovernor(caller); err != nil {
			return err
		}
		if err := g.checkGroupID(groupID); err != nil {
			return err
		}
		if err := g.metadata.Set(groupID, hash); err != nil {
			return errors.Wrap(err, "failed to set group metadata")
		}
		g.events.Emit("GroupMetadataSet", groupID, hash)
		return nil
	})
}

// SetAssessingGroupIDForProductTypes points the product types at the group,
// emitting one event per product type id, duplicates included. An empty
// input is a no-op with zero events.
func (g *Groups) SetAssessingGroupIDForProductTypes(caller sentinel.Address, productTypeIDs []sentinel.ProductTypeID, groupID sentinel.GroupID) error {
	return g.revertable(func() error {
		if err := g.requireGovernor(caller); err != nil {
			return err
		}
		if err := g.checkGroupID(groupID); err != nil {
			return err
		}
		for _, ptID := range productTypeIDs {
			pt, err := g.productTypes.Get(ptID)
			if err != nil {
				return errors.Wrap(err, "failed to get product type")
			}
			pt.GroupID = uint64(groupID)
			if err := g.productTypes.Set(ptID, pt); err != nil {
				return errors.Wrap(err, "failed to set product type")
			}
			g.events.Emit("AssessingGroupForProductTypeSet", ptID, groupID)
		}
		return nil
	})
}

// SetAssessmentDataForProductTypes sets cooldown and assessing group for
// the product types, emitting a single batched event.
func (g *Groups) SetAssessmentDataForProductTypes(caller sentinel.Address, productTypeIDs []sentinel.ProductTypeID, cooldownPeriod uint64, groupID sentinel.GroupID) error {
	return g.revertable(func() error {
		if err := g.requireGovernor(caller); err != nil {
			return err
		}
		if err := g.checkGroupID(groupID); err != nil {
			return err
		}
		for _, ptID := range productTypeIDs {
			pt := &productType{CooldownPeriod: cooldownPeriod, GroupID: uint64(groupID)}
			if err := g.productTypes.Set(ptID, pt); err != nil {
				return errors.Wrap(err, "failed to set product type")
			}
		}
		g.events.Emit("AssessmentDataForProductTypesSet", productTypeIDs, cooldownPeriod, groupID)
		return nil
	})
}

// GetGroupsCount returns the number of allocated groups.
func (g *Groups) GetGroupsCount() (uint64, error) {
	return g.counter.Get()
}

// GetGroupAssessors lists the group's member ids, empty when unknown.
func (g *Groups) GetGroupAssessors(groupID sentinel.GroupID) ([]sentinel.MemberID, error) {
	list, err := g.assessors.Get(groupID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get group assessors")
	}
	return toMemberIDs(list), nil
}

// GetGroupAssessorCount returns the group's member count, zero when unknown.
func (g *Groups) GetGroupAssessorCount(groupID sentinel.GroupID) (uint64, error) {
	list, err := g.assessors.Get(groupID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get group assessors")
	}
	return uint64(len(list)), nil
}

// IsAssessorInGroup reports membership; unknown ids yield false.
func (g *Groups) IsAssessorInGroup(memberID sentinel.MemberID, groupID sentinel.GroupID) (bool, error) {
	list, err := g.assessors.Get(groupID)
	if err != nil {
		return false, errors.Wrap(err, "failed to get group assessors")
	}
	return contains(list, uint64(memberID)), nil
}

// GetGroupsForAssessor lists the groups a member belongs to.
func (g *Groups) GetGroupsForAssessor(memberID sentinel.MemberID) ([]sentinel.GroupID, error) {
	list, err := g.memberGroups.Get(memberID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member groups")
	}
	out := make([]sentinel.GroupID, 0, len(list))
	for _, id := range list {
		out = append(out, sentinel.GroupID(id))
	}
	return out, nil
}

// GetGroupsData answers a batched group query, preserving the input order
// and duplicates.
func (g *Groups) GetGroupsData(groupIDs []sentinel.GroupID) ([]*GroupData, error) {
	out := make([]*GroupData, 0, len(groupIDs))
	for _, id := range groupIDs {
		meta, err := g.metadata.Get(id)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get group metadata")
		}
		list, err := g.assessors.Get(id)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get group assessors")
		}
		out = append(out, &GroupData{ID: id, Metadata: meta, Assessors: toMemberIDs(list)})
	}
	return out, nil
}

// AssessmentDataFor returns the product type's cooldown and assessing
// group; a zero group id means the product type is not configured.
func (g *Groups) AssessmentDataFor(productTypeID sentinel.ProductTypeID) (*AssessmentData, error) {
	pt, err := g.productTypes.Get(productTypeID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product type")
	}
	return &AssessmentData{CooldownPeriod: pt.CooldownPeriod, GroupID: sentinel.GroupID(pt.GroupID)}, nil
}

func contains(list []uint64, v uint64) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func remove(list []uint64, v uint64) ([]uint64, bool) {
	for i, item := range list {
		if item == v {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

func toMemberIDs(list []uint64) []sentinel.MemberID {
	out := make([]sentinel.MemberID, 0, len(list))
	for _, id := range list {
		out = append(out, sentinel.MemberID(id))
	}
	return out
}
