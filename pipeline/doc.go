/*
Package pipeline implements a staged data-processing engine that composes
heterogeneous steps (map, filter, fold) over a collection of items, with
per-step control over execution: concurrent goroutines, isolated worker
processes, or strictly sequential on the calling goroutine.

Items flow through the pipeline wrapped in a Container, which carries one
primary value plus typed attachments. Attachments let a step produce
auxiliary data (a planning problem, a metric, a label set) that a later step
can pick up without every step signature enumerating every possible data
shape.

A pipeline is built from step values created by the factory functions:

	convert := pipeline.Map("convert", convertFn)
	keep := pipeline.FilterPredicate("keep-urban", urbanFilter{})
	best := pipeline.Fold("select-best", selectBestFn)

	p := pipeline.New().Map(convert).Filter(keep).Fold(best)

	rc := pipeline.NewRunContext(nil)
	result, err := p.Execute(ctx, rc, items)

Regardless of execution mode, the items fed into each stage are the
flattening, in original input order, of the previous stage's per-item
outputs. Fold steps always run sequentially and observe the complete
collection.

Steps declared with ModeParallel run in worker processes spawned from the
current binary. Host programs must call WorkerMain first thing in main and
register the step and every transferred type:

	func main() {
		if pipeline.WorkerMain() {
			return
		}
		// normal startup
	}
*/
package pipeline
