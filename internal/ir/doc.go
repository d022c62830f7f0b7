// Package ir provides the shared data model for chipsim.
//
// This package contains circuit descriptions (ChipDefinition and the file
// shapes that carry it), the struct form of compiled programs, and the error
// taxonomy used by every other package. All other internal packages import
// ir; ir imports nothing internal.
//
// Key design constraints:
//   - Boundary sub-chips are classified through Kind.Class and
//     SubChip.Boundary, never by comparing kind strings at call sites
//   - Compiled programs are plain data (Program); their text form is a
//     rendering produced by Program.Format
//   - Definition identity (DefinitionHash) covers topology only; positions,
//     labels, colors and anchors never change it
package ir
