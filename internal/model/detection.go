package model

import (
	"errors"
	"fmt"
)

// ErrRoleConflict is returned when a cluster would hold two roles at once.
var ErrRoleConflict = errors.New("cluster already holds a role")

// Role is a behavioral classification of a location.
type Role string

const (
	// RoleHome is the most frequently visited location.
	RoleHome Role = "home"
	// RoleWork is a weekday, working-hours location near home.
	RoleWork Role = "work"
	// RoleVacation is a distant leisure or high-spend location.
	RoleVacation Role = "vacation"
)

// Roles lists every role in classification order.
var Roles = []Role{RoleHome, RoleWork, RoleVacation}

// ScoredCandidate is a cluster ranked under one role's scoring function.
type ScoredCandidate struct {
	Cluster *LocationCluster
	Role    Role
	Score   float64
}

// DetectionResult holds at most one cluster per role. Assigned clusters
// are pairwise distinct by key.
type DetectionResult struct {
	Home     *LocationCluster
	Work     *LocationCluster
	Vacation *LocationCluster
}

// Get returns the cluster assigned to role, or nil.
func (d *DetectionResult) Get(role Role) *LocationCluster {
	switch role {
	case RoleHome:
		return d.Home
	case RoleWork:
		return d.Work
	case RoleVacation:
		return d.Vacation
	}
	return nil
}

// RoleOf returns the role held by the cluster with the given key.
func (d *DetectionResult) RoleOf(key string) (Role, bool) {
	for _, role := range Roles {
		if c := d.Get(role); c != nil && c.Key == key {
			return role, true
		}
	}
	return "", false
}

// Assign sets role to cluster. It fails if the cluster's key already
// holds a different role or if the role is unknown.
func (d *DetectionResult) Assign(role Role, cluster *LocationCluster) error {
	if cluster == nil {
		return nil
	}
	if held, ok := d.RoleOf(cluster.Key); ok && held != role {
		return fmt.Errorf("%w: %s is %s, cannot also be %s", ErrRoleConflict, cluster.Key, held, role)
	}
	switch role {
	case RoleHome:
		d.Home = cluster
	case RoleWork:
		d.Work = cluster
	case RoleVacation:
		d.Vacation = cluster
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	return nil
}

// Validate reports whether any two assigned roles share a cluster key.
func (d *DetectionResult) Validate() error {
	seen := make(map[string]Role, len(Roles))
	for _, role := range Roles {
		c := d.Get(role)
		if c == nil {
			continue
		}
		if other, ok := seen[c.Key]; ok {
			return fmt.Errorf("%w: %s is both %s and %s", ErrRoleConflict, c.Key, other, role)
		}
		seen[c.Key] = role
	}
	return nil
}

// Excludes reports whether key is already assigned to any role.
func (d *DetectionResult) Excludes(key string) bool {
	_, ok := d.RoleOf(key)
	return ok
}

// NewDetectionResult assembles a result from independently chosen clusters,
// rejecting any combination in which two roles share a cluster.
func NewDetectionResult(home, work, vacation *LocationCluster) (DetectionResult, error) {
	var d DetectionResult
	for _, a := range []struct {
		role    Role
		cluster *LocationCluster
	}{
		{RoleHome, home},
		{RoleWork, work},
		{RoleVacation, vacation},
	} {
		if err := d.Assign(a.role, a.cluster); err != nil {
			return DetectionResult{}, err
		}
	}
	return d, nil
}
