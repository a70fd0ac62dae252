// Copyright (c) 2026 The CoverMutual developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis seeds a fresh state from a YAML document: governance
// params, member enrolment with roles and balances, assessor groups and
// product-type assessment configuration.
package genesis

import (
	"io"
	"math/big"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/covermutual/sentinel/builtin"
	"github.com/covermutual/sentinel/builtin/registry"
	"github.com/covermutual/sentinel/sentinel"
	"github.com/covermutual/sentinel/state"
)

// Doc is the genesis document.
type Doc struct {
	Params       []ParamConfig       `yaml:"params"`
	Members      []MemberConfig      `yaml:"members"`
	Groups       []GroupConfig       `yaml:"groups"`
	ProductTypes []ProductTypeConfig `yaml:"productTypes"`
}

// ParamConfig sets one governance parameter.
type ParamConfig struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// MemberConfig enrolls one member.
type MemberConfig struct {
	Address string   `yaml:"address"`
	Roles   []string `yaml:"roles"`
	Balance string   `yaml:"balance"`
}

// GroupConfig creates one assessor group. Assessors are member ids,
// following the enrolment order of the members section.
type GroupConfig struct {
	Assessors []uint64 `yaml:"assessors"`
	Metadata  string   `yaml:"metadata"`
}

// ProductTypeConfig configures assessment for one product type. Group ids
// follow the order of the groups section, 1-based.
type ProductTypeConfig struct {
	ID             uint64 `yaml:"id"`
	GroupID        uint64 `yaml:"groupId"`
	CooldownPeriod uint64 `yaml:"cooldownPeriod"`
}

var paramKeys = map[string]sentinel.Bytes32{
	"pause-flags":         sentinel.KeyPauseFlags,
	"min-voting-period":   sentinel.KeyMinVotingPeriod,
	"stake-lockup-period": sentinel.KeyStakeLockupPeriod,
	"payout-cooldown":     sentinel.KeyPayoutCooldown,
	"assessment-reward":   sentinel.KeyAssessmentReward,
	"max-exposure":        sentinel.KeyMaxExposure,
	"unstake-lock-time":   sentinel.KeyUnstakeLockTime,
}

var roleBits = map[string]registry.Role{
	"member":           registry.RoleMember,
	"governor":         registry.RoleGovernor,
	"claims":           registry.RoleClaims,
	"token-controller": registry.RoleTokenController,
	"internal":         registry.RoleInternal,
}

// Parse reads a genesis document.
func Parse(r io.Reader) (*Doc, error) {
	var doc Doc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode genesis document")
	}
	return &doc, nil
}

// ParseBytes reads a genesis document from raw bytes.
func ParseBytes(data []byte) (*Doc, error) {
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode genesis document")
	}
	return &doc, nil
}

// Build seeds the state from the document and returns the wired engine
// suite. The state is left uncommitted so the caller decides persistence.
func Build(st *state.State, doc *Doc) (*builtin.Suite, error) {
	suite := builtin.New(st)

	for _, p := range doc.Params {
		key, ok := paramKeys[p.Key]
		if !ok {
			return nil, errors.Errorf("unknown param key %q", p.Key)
		}
		value, ok := new(big.Int).SetString(p.Value, 10)
		if !ok {
			return nil, errors.Errorf("invalid param value %q", p.Value)
		}
		if err := suite.Params.Set(key, value); err != nil {
			return nil, err
		}
	}

	var governor *sentinel.Address
	for _, m := range doc.Members {
		parsed, err := sentinel.ParseAddress(m.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid member address %q", m.Address)
		}
		addr := *parsed
		var roles registry.Role
		for _, r := range m.Roles {
			bit, ok := roleBits[r]
			if !ok {
				return nil, errors.Errorf("unknown role %q", r)
			}
			roles |= bit
		}
		if _, err := suite.Registry.Enroll(addr, roles); err != nil {
			return nil, err
		}
		if roles&registry.RoleGovernor != 0 && governor == nil {
			g := addr
			governor = &g
		}
		if m.Balance != "" {
			balance, ok := new(big.Int).SetString(m.Balance, 10)
			if !ok {
				return nil, errors.Errorf("invalid balance %q", m.Balance)
			}
			if err := suite.Token.Mint(addr, balance); err != nil {
				return nil, err
			}
		}
	}

	if (len(doc.Groups) > 0 || len(doc.ProductTypes) > 0) && governor == nil {
		return nil, errors.New("groups configured without a governor member")
	}
	for _, g := range doc.Groups {
		memberIDs := make([]sentinel.MemberID, 0, len(g.Assessors))
		for _, id := range g.Assessors {
			memberIDs = append(memberIDs, sentinel.MemberID(id))
		}
		groupID, err := suite.Groups.AddAssessorsToGroup(*governor, memberIDs, 0)
		if err != nil {
			return nil, err
		}
		if g.Metadata != "" {
			hash, err := sentinel.ParseBytes32(g.Metadata)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid group metadata %q", g.Metadata)
			}
			if err := suite.Groups.SetGroupMetadata(*governor, groupID, hash); err != nil {
				return nil, err
			}
		}
	}
	for _, pt := range doc.ProductTypes {
		err := suite.Groups.SetAssessmentDataForProductTypes(
			*governor,
			[]sentinel.ProductTypeID{sentinel.ProductTypeID(pt.ID)},
			pt.CooldownPeriod,
			sentinel.GroupID(pt.GroupID),
		)
		if err != nil {
			return nil, err
		}
	}

	suite.Events.Reset() // seeding leaves no audit trail
	return suite, nil
}
