// Package model defines the core data structures shared by the organizer
// packages.
//
// # Metadata
//
// Metadata holds the tags read from one media file. Every field is
// optional; the zero value of a field means the tag is absent:
//
//	meta := model.Metadata{Artist: "Air", Album: "Moon Safari", Title: "All I Need", Track: 3}
//	meta.HasYear() // false
//
// # Identity
//
// MetadataKey identifies "the same track" independently of where the file
// lives or which template is configured:
//
//	key := model.KeyFor(meta, "/in/03 all i need.mp3")
//	renamed := key.WithSuffix(1) // title "All I Need (1)"
//
// # Outcomes
//
// Every organized file ends in exactly one Outcome, folded into an
// OrganizeResult:
//
//	var result model.OrganizeResult
//	result.Add(model.OutcomeMoved)
package model
