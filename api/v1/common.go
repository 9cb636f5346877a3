/*
Copyright 2021 KML Ares-Operator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1

import (
	"fmt"
	"strconv"

	commonv1 "github.com/kubeflow/common/pkg/apis/common/v1"
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	// LogsEOFMessage marks the last row of an experiment log stream
	LogsEOFMessage = "PSEOF"
	// DefaultLogsLimit is the page size used when fetching logs
	DefaultLogsLimit = 10000
)

/************
 * Role
 ************/
const (
	RoleWorker          commonv1.ReplicaType = "worker"
	RoleParameterServer commonv1.ReplicaType = "ps"
	RoleMaster          commonv1.ReplicaType = "master"
)

/******************
 * ExperimentState
 ******************/
type ExperimentState int

const (
	ExperimentStateCreated ExperimentState = 1
	ExperimentStateRunning ExperimentState = 2
	ExperimentStateStopped ExperimentState = 3
)

func (s ExperimentState) String() string {
	switch s {
	case ExperimentStateCreated:
		return "created"
	case ExperimentStateRunning:
		return "running"
	case ExperimentStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

/******************
 * ExperimentType
 ******************/
type ExperimentType int

const (
	ExperimentTypeSingleNode    ExperimentType = 1
	ExperimentTypeGRPCMultiNode ExperimentType = 2
	ExperimentTypeMPIMultiNode  ExperimentType = 3
)

// multiNodeTypeNames: symbolic names accepted for multi-node strategies, case-sensitive
var multiNodeTypeNames = map[string]ExperimentType{
	"GRPC": ExperimentTypeGRPCMultiNode,
	"MPI":  ExperimentTypeMPIMultiNode,
}

var (
	knownExperimentTypes     = sets.NewInt(int(ExperimentTypeSingleNode), int(ExperimentTypeGRPCMultiNode), int(ExperimentTypeMPIMultiNode))
	multiNodeExperimentTypes = sets.NewInt(int(ExperimentTypeGRPCMultiNode), int(ExperimentTypeMPIMultiNode))
)

func (t ExperimentType) String() string {
	switch t {
	case ExperimentTypeSingleNode:
		return "SINGLE_NODE"
	case ExperimentTypeGRPCMultiNode:
		return "GRPC_MULTI_NODE"
	case ExperimentTypeMPIMultiNode:
		return "MPI_MULTI_NODE"
	default:
		return fmt.Sprintf("ExperimentType(%d)", int(t))
	}
}

// IsKnown: whether t is one of the experiment types served by the API
func (t ExperimentType) IsKnown() bool {
	return knownExperimentTypes.Has(int(t))
}

// IsMultiNode: whether t is a multi-node strategy
func (t ExperimentType) IsMultiNode() bool {
	return multiNodeExperimentTypes.Has(int(t))
}

// MultiNodeTypeFromID: validate a raw numeric multi-node experiment type id
func MultiNodeTypeFromID(id int) (ExperimentType, error) {
	if !ExperimentType(id).IsMultiNode() {
		return 0, NewInvalidExperimentTypeError(strconv.Itoa(id))
	}
	return ExperimentType(id), nil
}

// ParseMultiNodeTypeName: look up a symbolic multi-node experiment type name
func ParseMultiNodeTypeName(name string) (ExperimentType, error) {
	t, ok := multiNodeTypeNames[name]
	if !ok {
		return 0, NewInvalidExperimentTypeError(name)
	}
	return t, nil
}

// ParseMultiNodeType: accepts a numeric id or a symbolic name
func ParseMultiNodeType(value string) (ExperimentType, error) {
	if id, err := strconv.Atoi(value); err == nil {
		return MultiNodeTypeFromID(id)
	}
	return ParseMultiNodeTypeName(value)
}

// ResolveMultiNodeType: zero value falls back to the GRPC strategy
func ResolveMultiNodeType(t ExperimentType) (ExperimentType, error) {
	if t == 0 {
		return ExperimentTypeGRPCMultiNode, nil
	}
	return MultiNodeTypeFromID(int(t))
}
