// Package recipecrawl harvests structured recipe data from a recipe
// publishing site. It discovers candidate pages through the site's
// sitemaps, detects recipe pages by their recipe-card markup, extracts
// the embedded schema.org Recipe JSON-LD, and normalizes it into a
// stable tabular record.
//
// This package contains domain types, pure normalization logic, and
// interfaces following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., http/, goquery/, sqlite/).
package recipecrawl
