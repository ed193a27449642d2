// Package reconcile compares the trader's desired package set against
// what the environment's interpreter can actually import, and resolves
// the difference via pip.
//
// Requirements are processed strictly in list order and each one is
// attempted exactly once per run. Ordering is caller-supplied and
// load-bearing: the GUI toolkit must precede toolkit-dependent packages,
// because later installs may import earlier ones. The reconciler does
// not maintain a dependency graph — with a list this short, a documented
// order beats graph machinery.
//
// Per-requirement outcomes are collected into a model.Report; the
// orchestrator branches on the aggregate report (Report.Fatal) rather
// than on scattered continue/abort conditionals.
package reconcile
