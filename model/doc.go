// Package model defines the domain data model for documentation pack
// builds: crop regions, tabs and their plan-type tracks, room and zone
// specifications, and the geometry they share.
//
// Everything here is plain data, loaded once from configuration and
// immutable for the duration of a build. The package also defines the
// build error taxonomy: [ConfigurationError], [GeometryError],
// [SourceDocumentError], and [AssemblyError], all fatal to the current
// build, plus [BuildError] which aggregates load-time problems so they
// surface together.
package model
