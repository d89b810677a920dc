// Package staging holds committed frames between selection and assembly.
//
// Selection commits frames one at a time in increasing index order; assembly
// later reads them back in the same order. A [Store] keeps each frame's
// full-resolution pixels as PNG keyed by its integer frame index:
//
//   - [SQLite] writes to a database in a private temporary directory that
//     Close removes. This is the default, so long videos do not hold every
//     committed frame in memory.
//   - [Memory] keeps everything in a map, for tests and small inputs.
//
// A store belongs to one conversion and is not shared between runs.
package staging
