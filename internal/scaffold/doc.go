// Package scaffold writes the starter files of a new skill. It powers the
// "skillhub init" command, which drops a default skill.json into an
// existing directory so the skill can be published.
package scaffold
