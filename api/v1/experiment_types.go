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

	commonv1 "github.com/kubeflow/common/pkg/apis/common/v1"
	"k8s.io/apimachinery/pkg/util/json"
)

// Experiment is implemented by every experiment topology
type Experiment interface {
	GetSpec() *ExperimentSpec
	GetExperimentType() ExperimentType
	GetGroupSpecs() map[commonv1.ReplicaType]*GroupSpec
	Validate() error
}

var (
	_ Experiment = &SingleNodeExperiment{}
	_ Experiment = &MultiNodeExperiment{}
	_ Experiment = &MpiMultiNodeExperiment{}
)

/*****************
 * ExperimentSpec
 *****************/
// ExperimentSpec: fields shared by every topology
type ExperimentSpec struct {
	// set by the server
	Handle string          `json:"handle,omitempty"`
	State  ExperimentState `json:"state,omitempty"`

	Name              string            `json:"name,omitempty"`
	ProjectID         string            `json:"projectHandle"`
	ExperimentTypeID  ExperimentType    `json:"experimentTypeId"`
	Ports             string            `json:"ports,omitempty"`
	WorkspaceURL      string            `json:"workspaceUrl,omitempty"`
	WorkspaceRef      string            `json:"workspaceRef,omitempty"`
	WorkspaceUsername string            `json:"workspaceUsername,omitempty"`
	WorkspacePassword string            `json:"workspacePassword,omitempty"`
	Datasets          []Dataset         `json:"datasets,omitempty"`
	WorkingDirectory  string            `json:"workingDirectory,omitempty"`
	ArtifactDirectory string            `json:"artifactDirectory,omitempty"`
	ClusterID         string            `json:"clusterId,omitempty"`
	ExperimentEnv     map[string]string `json:"experimentEnv,omitempty"`
	ModelType         string            `json:"modelType,omitempty"`
	ModelPath         string            `json:"modelPath,omitempty"`
	Tags              []string          `json:"tags,omitempty"`
	// nil unless preemptible execution was requested
	IsPreemptible *bool `json:"isPreemptible,omitempty"`
}

// ContainerSpec: container image and private registry credentials
type ContainerSpec struct {
	Container        string `json:"container,omitempty"`
	ContainerUser    string `json:"containerUser,omitempty"`
	RegistryUsername string `json:"registryUsername,omitempty"`
	RegistryPassword string `json:"registryPassword,omitempty"`
	RegistryURL      string `json:"registryUrl,omitempty"`
}

// GroupSpec: one homogeneous group of nodes in a multi-node experiment
type GroupSpec struct {
	ContainerSpec `json:",inline"`
	MachineType   string `json:"machineType,omitempty"`
	Command       string `json:"command,omitempty"`
	Count         int32  `json:"count,omitempty"`
}

func (s *GroupSpec) validate(role commonv1.ReplicaType) error {
	if len(s.Container) == 0 {
		return NewValidationError("%s container is required", role)
	}
	if len(s.MachineType) == 0 {
		return NewValidationError("%s machine type is required", role)
	}
	if len(s.Command) == 0 {
		return NewValidationError("%s command is required", role)
	}
	if s.Count <= 0 {
		return NewValidationError("%s count must be positive: %d", role, s.Count)
	}
	return nil
}

func (spec *ExperimentSpec) validate(expected ...ExperimentType) error {
	if len(spec.ProjectID) == 0 {
		return NewValidationError("project id is required")
	}
	for _, t := range expected {
		if spec.ExperimentTypeID == t {
			return nil
		}
	}
	return NewValidationError("experiment type %v does not match topology %v", spec.ExperimentTypeID, expected)
}

/*********************
 * SingleNode
 *********************/
type SingleNodeExperiment struct {
	ExperimentSpec `json:",inline"`
	ContainerSpec  `json:",inline"`
	MachineType    string `json:"machineType,omitempty"`
	Command        string `json:"command,omitempty"`
}

func (e *SingleNodeExperiment) GetSpec() *ExperimentSpec          { return &e.ExperimentSpec }
func (e *SingleNodeExperiment) GetExperimentType() ExperimentType { return e.ExperimentTypeID }
func (e *SingleNodeExperiment) GetGroupSpecs() map[commonv1.ReplicaType]*GroupSpec {
	return map[commonv1.ReplicaType]*GroupSpec{
		RoleWorker: {ContainerSpec: e.ContainerSpec, MachineType: e.MachineType, Command: e.Command, Count: 1},
	}
}

func (e *SingleNodeExperiment) Validate() error {
	if err := e.ExperimentSpec.validate(ExperimentTypeSingleNode); err != nil {
		return err
	}
	if len(e.Container) == 0 {
		return NewValidationError("container is required")
	}
	if len(e.MachineType) == 0 {
		return NewValidationError("machine type is required")
	}
	if len(e.Command) == 0 {
		return NewValidationError("command is required")
	}
	return nil
}

/*********************
 * MultiNode
 *********************/
type MultiNodeExperiment struct {
	ExperimentSpec  `json:",inline"`
	Worker          GroupSpec `json:"worker"`
	ParameterServer GroupSpec `json:"parameterServer"`
}

func (e *MultiNodeExperiment) GetSpec() *ExperimentSpec          { return &e.ExperimentSpec }
func (e *MultiNodeExperiment) GetExperimentType() ExperimentType { return e.ExperimentTypeID }
func (e *MultiNodeExperiment) GetGroupSpecs() map[commonv1.ReplicaType]*GroupSpec {
	return map[commonv1.ReplicaType]*GroupSpec{
		RoleWorker:          &e.Worker,
		RoleParameterServer: &e.ParameterServer,
	}
}

func (e *MultiNodeExperiment) Validate() error {
	if err := e.ExperimentSpec.validate(ExperimentTypeGRPCMultiNode, ExperimentTypeMPIMultiNode); err != nil {
		return err
	}
	if err := e.Worker.validate(RoleWorker); err != nil {
		return err
	}
	return e.ParameterServer.validate(RoleParameterServer)
}

/*********************
 * MpiMultiNode
 *********************/
type MpiMultiNodeExperiment struct {
	ExperimentSpec `json:",inline"`
	Worker         GroupSpec `json:"worker"`
	// some deployments run without an explicit master group
	Master *GroupSpec `json:"master,omitempty"`
}

func (e *MpiMultiNodeExperiment) GetSpec() *ExperimentSpec          { return &e.ExperimentSpec }
func (e *MpiMultiNodeExperiment) GetExperimentType() ExperimentType { return e.ExperimentTypeID }
func (e *MpiMultiNodeExperiment) GetGroupSpecs() map[commonv1.ReplicaType]*GroupSpec {
	specs := map[commonv1.ReplicaType]*GroupSpec{RoleWorker: &e.Worker}
	if e.Master != nil {
		specs[RoleMaster] = e.Master
	}
	return specs
}

func (e *MpiMultiNodeExperiment) Validate() error {
	if err := e.ExperimentSpec.validate(ExperimentTypeMPIMultiNode); err != nil {
		return err
	}
	if err := e.Worker.validate(RoleWorker); err != nil {
		return err
	}
	if e.Master != nil {
		return e.Master.validate(RoleMaster)
	}
	return nil
}

// GetTotalCount: number of nodes requested by the experiment
func GetTotalCount(e Experiment) int32 {
	count := int32(0)
	for _, spec := range e.GetGroupSpecs() {
		if spec != nil {
			count += spec.Count
		}
	}
	return count
}

func Json(e Experiment) string {
	if content, err := json.Marshal(e); err == nil {
		return string(content)
	}
	spec := e.GetSpec()
	return fmt.Sprintf("Experiment{t=%v, %s/%s}", spec.ExperimentTypeID, spec.ProjectID, spec.Name)
}

/*********************
 * Decoding
 *********************/
type typeMeta struct {
	ExperimentTypeID ExperimentType `json:"experimentTypeId"`
}

// DecodeExperiment: decode a wire experiment into the variant matching its type id.
// MPI experiments carrying a parameter server group are multi-node experiments
// submitted with the MPI strategy.
func DecodeExperiment(data []byte) (Experiment, error) {
	meta := typeMeta{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	if !meta.ExperimentTypeID.IsKnown() {
		return nil, fmt.Errorf("unknown experiment type: %d", int(meta.ExperimentTypeID))
	}
	var e Experiment
	switch meta.ExperimentTypeID {
	case ExperimentTypeSingleNode:
		e = &SingleNodeExperiment{}
	case ExperimentTypeGRPCMultiNode:
		e = &MultiNodeExperiment{}
	default:
		probe := struct {
			ParameterServer *GroupSpec `json:"parameterServer"`
		}{}
		if err := json.Unmarshal(data, &probe); err != nil {
			return nil, err
		}
		if probe.ParameterServer != nil {
			e = &MultiNodeExperiment{}
		} else {
			e = &MpiMultiNodeExperiment{}
		}
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, err
	}
	return e, nil
}
