// Package hierarchy turns a flat snapshot of people and unions into trees.
//
// Two policies share one data model. BuildFocal produces a bounded
// three-generation window around a focal person for interactive browsing;
// DeepBuilder expands every descendant of a root for printable reports.
// FindAncestors picks the roots used for bulk reports.
//
// Every function here is pure: inputs are never mutated, nothing is cached
// between calls, and concurrent calls on the same snapshot are safe.
package hierarchy
