// Package sill is a research library for probabilistic graphical models
// over discrete variables: a dense factor algebra and a decomposable
// (junction-tree) inference engine.
//
// 🚀 What is sill?
//
//	A pure-Go library that brings together:
//		• Variables & domains: universe-owned discrete variables with set algebra
//		• Dense tables: N-dimensional flat-buffer arrays with generic
//		  join / aggregate / restrict kernels
//		• Table factors: combine (sum/product/max/min/and/or, safe divide),
//		  collapse, restrict, normalize, conditionals, sampling, divergences
//		• Junction trees: cliques, separators, the running-intersection
//		  property, construction from variable-elimination orderings
//		• Calibration: Shafer-Shenoy and Hugin message passing, conditioning
//		  on evidence, cross-checked against direct variable elimination
//
// ✨ Why choose sill?
//
//   - Deterministic – variable identity fixes a canonical order everywhere
//   - Rock-solid contracts – sentinel errors, validated invariants, in-code docs
//   - Pure Go – no cgo, flat float64 buffers, cache-friendly kernels
//   - Extensible – pluggable elimination strategies, generic table element types
//
// Under the hood, everything is organized under six subpackages:
//
//	core/      — Universe, Variable, Domain, Assignment primitives
//	table/     — generic dense N-dimensional tables + alignment kernels
//	factor/    — the table-factor algebra and log-domain canonical factors
//	juntree/   — junction-tree structure, elimination strategies, builders
//	inference/ — Shafer-Shenoy & Hugin calibration, variable elimination
//	model/     — pairwise Markov networks, grid/Ising generators, YAML models
//
// Quick ASCII example:
//
//	    X0───X1───X2───X3
//
//	a 4-variable chain: pairwise factors ψ(Xi,Xi+1) become cliques
//	{Xi,Xi+1} with separators {Xi+1}; calibration yields every marginal.
//
// Dive into the per-package doc.go files for algorithm outlines,
// complexity notes, and the full error taxonomy.
//
//	go get github.com/Matt3164/sill
package sill
