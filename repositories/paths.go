package repositories

import (
	"fmt"

	gradientv1 "gradient-sdk/api/v1"
)

const (
	ExperimentsPath = "/experiments/"
	LogsPath        = "/jobs/logs"
	APIKeyHeader    = "X-API-Key"
)

var submitPaths = map[SubmitMode]map[gradientv1.ExperimentType]string{
	SubmitCreate: {
		gradientv1.ExperimentTypeSingleNode:    "/experiments/",
		gradientv1.ExperimentTypeGRPCMultiNode: "/experiments/createMultiNode/",
		gradientv1.ExperimentTypeMPIMultiNode:  "/experiments/createMpiMultiNode/",
	},
	SubmitRun: {
		gradientv1.ExperimentTypeSingleNode:    "/experiments/run/",
		gradientv1.ExperimentTypeGRPCMultiNode: "/experiments/runMultiNode/",
		gradientv1.ExperimentTypeMPIMultiNode:  "/experiments/runMpiMultiNode/",
	},
}

// SubmitPath: endpoint receiving a new experiment of the given shape.
// Multi-node experiments submitted with the MPI strategy share the multi-node endpoint.
func SubmitPath(e gradientv1.Experiment, mode SubmitMode) (string, error) {
	if err := mode.Validate(); err != nil {
		return "", err
	}
	t := e.GetExperimentType()
	if _, ok := e.(*gradientv1.MultiNodeExperiment); ok {
		t = gradientv1.ExperimentTypeGRPCMultiNode
	}
	path, ok := submitPaths[mode][t]
	if !ok {
		return "", fmt.Errorf("no endpoint for experiment type %v", e.GetExperimentType())
	}
	return path, nil
}

// SubmitRoute: mode and topology served by a submit endpoint
type SubmitRoute struct {
	Path       string
	Mode       SubmitMode
	Experiment gradientv1.ExperimentType
}

func SubmitRoutes() []SubmitRoute {
	routes := []SubmitRoute{}
	for _, mode := range []SubmitMode{SubmitCreate, SubmitRun} {
		for _, t := range []gradientv1.ExperimentType{
			gradientv1.ExperimentTypeSingleNode,
			gradientv1.ExperimentTypeGRPCMultiNode,
			gradientv1.ExperimentTypeMPIMultiNode,
		} {
			routes = append(routes, SubmitRoute{Path: submitPaths[mode][t], Mode: mode, Experiment: t})
		}
	}
	return routes
}

func ExperimentPath(experimentID string) string {
	return fmt.Sprintf("%s%s/", ExperimentsPath, experimentID)
}

func StartPath(experimentID string) string {
	return ExperimentPath(experimentID) + "start/"
}

func StopPath(experimentID string) string {
	return ExperimentPath(experimentID) + "stop/"
}
