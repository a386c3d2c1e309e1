// Package taskgraph models a build as an ordered list of stages, each stage an
// unordered set of tasks that run concurrently. Stages run strictly in order;
// a stage starts only after every task of the previous stage has settled.
//
// The graph is plain data so ordering properties (for example "clear runs
// before every asset task") can be checked with StageIndex and Before without
// executing anything.
package taskgraph
