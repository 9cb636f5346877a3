package client

import (
	gradientv1 "gradient-sdk/api/v1"
)

// CommonParams: parameters shared by every topology
type CommonParams struct {
	Name              string `json:"name,omitempty"`
	ProjectID         string `json:"projectId,omitempty"`
	Ports             string `json:"ports,omitempty"`
	WorkspaceURL      string `json:"workspaceUrl,omitempty"`
	WorkspaceRef      string `json:"workspaceRef,omitempty"`
	WorkspaceUsername string `json:"workspaceUsername,omitempty"`
	WorkspacePassword string `json:"-"`
	// nil, a mapping, a slice of mappings or []gradientv1.Dataset
	Datasets          interface{}       `json:"datasets,omitempty"`
	WorkingDirectory  string            `json:"workingDirectory,omitempty"`
	ArtifactDirectory string            `json:"artifactDirectory,omitempty"`
	ClusterID         string            `json:"clusterId,omitempty"`
	ExperimentEnv     map[string]string `json:"experimentEnv,omitempty"`
	ModelType         string            `json:"modelType,omitempty"`
	ModelPath         string            `json:"modelPath,omitempty"`
	Tags              []string          `json:"tags,omitempty"`
	IsPreemptible     bool              `json:"isPreemptible,omitempty"`
	UseVPC            bool              `json:"useVpc,omitempty"`
}

// ContainerParams: container image and private registry credentials
type ContainerParams struct {
	Container        string `json:"container,omitempty"`
	ContainerUser    string `json:"containerUser,omitempty"`
	RegistryUsername string `json:"registryUsername,omitempty"`
	RegistryPassword string `json:"-"`
	RegistryURL      string `json:"registryUrl,omitempty"`
}

// GroupParams: one group of nodes of a multi-node experiment
type GroupParams struct {
	ContainerParams `json:",inline"`
	MachineType     string `json:"machineType,omitempty"`
	Command         string `json:"command,omitempty"`
	Count           int32  `json:"count,omitempty"`
}

func (p GroupParams) isEmpty() bool {
	return p == GroupParams{}
}

type SingleNodeParams struct {
	CommonParams    `json:",inline"`
	ContainerParams `json:",inline"`
	MachineType     string `json:"machineType,omitempty"`
	Command         string `json:"command,omitempty"`
}

type MultiNodeParams struct {
	CommonParams `json:",inline"`
	// zero value selects the GRPC strategy
	ExperimentType  gradientv1.ExperimentType `json:"experimentTypeId,omitempty"`
	Worker          GroupParams               `json:"worker"`
	ParameterServer GroupParams               `json:"parameterServer"`
}

type MpiMultiNodeParams struct {
	CommonParams `json:",inline"`
	Worker       GroupParams `json:"worker"`
	Master       GroupParams `json:"master,omitempty"`
}

func (p ContainerParams) toSpec() gradientv1.ContainerSpec {
	return gradientv1.ContainerSpec{
		Container:        p.Container,
		ContainerUser:    p.ContainerUser,
		RegistryUsername: p.RegistryUsername,
		RegistryPassword: p.RegistryPassword,
		RegistryURL:      p.RegistryURL,
	}
}

func (p GroupParams) toSpec() gradientv1.GroupSpec {
	return gradientv1.GroupSpec{
		ContainerSpec: p.ContainerParams.toSpec(),
		MachineType:   p.MachineType,
		Command:       p.Command,
		Count:         p.Count,
	}
}
