package pipeline

import (
	"fmt"
	"testing"

	"go.uber.org/goleak"
)

// workerDoc is the fixture item type for parallel-mode tests. It crosses the
// process boundary, so it is registered in TestMain before WorkerMain runs.
type workerDoc struct {
	ID    int    `json:"id"`
	Label string `json:"label,omitempty"`
}

type workerNote struct {
	Text string `json:"text"`
}

// workerOpaque is registered but carries a channel, so marshaling it fails.
type workerOpaque struct {
	Ch chan int `json:"ch"`
}

var (
	parallelDouble *Step
	parallelEven   *Step
	parallelBoom   *Step
)

func registerWorkerFixtures() {
	RegisterType[workerDoc]("pipeline.workerDoc")
	RegisterType[workerNote]("pipeline.workerNote")
	RegisterType[workerOpaque]("pipeline.workerOpaque")

	parallelDouble = MustRegisterStep(Map("double-id", func(_ *RunContext, item *Container) ([]*Container, error) {
		doc, _ := PrimaryAs[workerDoc](item)
		out := NewContainer(workerDoc{ID: doc.ID * 2, Label: doc.Label})
		Attach(out, workerNote{Text: "doubled"})
		return One(out), nil
	}, WithMode(ModeParallel)))

	parallelEven = MustRegisterStep(Filter("keep-even", func(_ *RunContext, item *Container) (bool, error) {
		doc, _ := PrimaryAs[workerDoc](item)
		return doc.ID%2 == 0, nil
	}, WithMode(ModeParallel)))

	parallelBoom = MustRegisterStep(Map("boom-on-13", func(_ *RunContext, item *Container) ([]*Container, error) {
		doc, _ := PrimaryAs[workerDoc](item)
		if doc.ID == 13 {
			return nil, fmt.Errorf("unlucky %d", doc.ID)
		}
		return One(item), nil
	}, WithMode(ModeParallel)))
}

func TestMain(m *testing.M) {
	registerWorkerFixtures()
	if WorkerMain() {
		return
	}
	goleak.VerifyTestMain(m)
}
