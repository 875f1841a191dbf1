// Package library ships the standard gmk extension packs. Importing the
// package registers every pack in the gmk catalog; a makefile then opts
// in per pack:
//
//	import _ "github.com/feather-lang/gmk/library"
//
//	$(gmk-library calc uuid)
//	X := $(calc 6*7)
//
// Loaded pack names accumulate in $(GMK_LIBRARIES). Each pack's file
// documents the functions it exports.
package library
