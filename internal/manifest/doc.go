// Package manifest reads, writes and validates skill descriptors.
//
// A descriptor is the skill.json sidecar at the root of a skill directory.
// It carries the name, version, description, author and keywords that a
// published skill is filed under. The registry id of a skill is derived
// from its author and name by SkillID.
package manifest
