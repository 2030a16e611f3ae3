// Package main hosts the imgcat CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, opens the catalog, and
// hands work to the internal packages: scan runs the pipeline, while list,
// show, stats and runs query the catalog. Directory bootstrapping (creating a
// missing scan root) happens here rather than in the pipeline.
package main
