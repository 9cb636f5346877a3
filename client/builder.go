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

package client

import (
	gradientv1 "gradient-sdk/api/v1"
)

// ValidateClusterIDNeedVPC: VPC networking requires an explicit cluster binding
func ValidateClusterIDNeedVPC(clusterID string, useVPC bool) error {
	if useVPC && len(clusterID) == 0 {
		return gradientv1.NewValidationError("cluster id required when using VPC")
	}
	return nil
}

// normalizePreemptible: false is sent as an absent field, never as explicit false
func normalizePreemptible(preemptible bool) *bool {
	if !preemptible {
		return nil
	}
	yes := true
	return &yes
}

// buildSpec: validate and normalize the fields shared by every topology
func buildSpec(p *CommonParams, t gradientv1.ExperimentType) (gradientv1.ExperimentSpec, error) {
	datasets, err := gradientv1.ConvertDatasets(p.Datasets)
	if err != nil {
		return gradientv1.ExperimentSpec{}, err
	}
	spec := gradientv1.ExperimentSpec{
		Name:              p.Name,
		ProjectID:         p.ProjectID,
		ExperimentTypeID:  t,
		Ports:             p.Ports,
		WorkspaceURL:      p.WorkspaceURL,
		WorkspaceRef:      p.WorkspaceRef,
		WorkspaceUsername: p.WorkspaceUsername,
		WorkspacePassword: p.WorkspacePassword,
		Datasets:          datasets,
		WorkingDirectory:  p.WorkingDirectory,
		ArtifactDirectory: p.ArtifactDirectory,
		ClusterID:         p.ClusterID,
		ExperimentEnv:     copyEnv(p.ExperimentEnv),
		ModelType:         p.ModelType,
		ModelPath:         p.ModelPath,
		Tags:              copyTags(p.Tags),
		IsPreemptible:     normalizePreemptible(p.IsPreemptible),
	}
	return spec, nil
}

// BuildSingleNode: a validated single node experiment definition
func BuildSingleNode(p *SingleNodeParams) (*gradientv1.SingleNodeExperiment, error) {
	if err := ValidateClusterIDNeedVPC(p.ClusterID, p.UseVPC); err != nil {
		return nil, err
	}
	spec, err := buildSpec(&p.CommonParams, gradientv1.ExperimentTypeSingleNode)
	if err != nil {
		return nil, err
	}
	e := &gradientv1.SingleNodeExperiment{
		ExperimentSpec: spec,
		ContainerSpec:  p.ContainerParams.toSpec(),
		MachineType:    p.MachineType,
		Command:        p.Command,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// BuildMultiNode: a validated multi node experiment definition with worker and parameter server groups
func BuildMultiNode(p *MultiNodeParams) (*gradientv1.MultiNodeExperiment, error) {
	if err := ValidateClusterIDNeedVPC(p.ClusterID, p.UseVPC); err != nil {
		return nil, err
	}
	t, err := gradientv1.ResolveMultiNodeType(p.ExperimentType)
	if err != nil {
		return nil, err
	}
	spec, err := buildSpec(&p.CommonParams, t)
	if err != nil {
		return nil, err
	}
	e := &gradientv1.MultiNodeExperiment{
		ExperimentSpec:  spec,
		Worker:          p.Worker.toSpec(),
		ParameterServer: p.ParameterServer.toSpec(),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// BuildMpiMultiNode: a validated MPI experiment definition; the master group is optional
func BuildMpiMultiNode(p *MpiMultiNodeParams) (*gradientv1.MpiMultiNodeExperiment, error) {
	if err := ValidateClusterIDNeedVPC(p.ClusterID, p.UseVPC); err != nil {
		return nil, err
	}
	spec, err := buildSpec(&p.CommonParams, gradientv1.ExperimentTypeMPIMultiNode)
	if err != nil {
		return nil, err
	}
	e := &gradientv1.MpiMultiNodeExperiment{
		ExperimentSpec: spec,
		Worker:         p.Worker.toSpec(),
	}
	if !p.Master.isEmpty() {
		master := p.Master.toSpec()
		e.Master = &master
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func copyTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	return append([]string{}, tags...)
}

func copyEnv(env map[string]string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	result := make(map[string]string, len(env))
	for k, v := range env {
		result[k] = v
	}
	return result
}
