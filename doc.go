// Package tileforge is the core of a 2D tile map editor: texture atlases
// that grow and compact themselves, pools of deduplicated tiles, layered
// grids of tile stacks and an autotiling rule engine.
//
// The work is split across packages:
//
//	atlas      slot allocator over one RGBA buffer, plus a shared resource store
//	tilepool   tile identities, dependent (rotated/flipped) tiles, tileset import
//	grid       layers of tile stacks with resize and lazy iteration
//	autotile   neighbour rule tables, class files and scripts, brushes
//	collision  static chipmunk shapes built from a layer
//	render     GPU texture mirror of pool atlases and layer composition
//
// This package holds the configuration shared by tools built on them and the
// logger every package writes to.
package tileforge
