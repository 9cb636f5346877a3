package experiments

import (
	flag "github.com/spf13/pflag"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/client"
	"gradient-sdk/utils"
)

// CommonOption: flags shared by every submit command
type CommonOption struct {
	params   *client.CommonParams
	datasets []string
}

func bindCommon(fs *flag.FlagSet, p *client.CommonParams) *CommonOption {
	opts := &CommonOption{params: p}
	fs.StringVar(&p.Name, "name", "", "Name of the experiment.")
	fs.StringVar(&p.ProjectID, "project-id", "", "Project the experiment belongs to.")
	fs.StringVar(&p.Ports, "ports", "", "Ports to expose, e.g. 5000:5000.")
	fs.StringVar(&p.WorkspaceURL, "workspace", "", "Project git repository url or local path.")
	fs.StringVar(&p.WorkspaceRef, "workspace-ref", "", "Git commit hash, branch name or tag.")
	fs.StringVar(&p.WorkspaceUsername, "workspace-username", "", "Username of a private workspace repository.")
	fs.StringVar(&p.WorkspacePassword, "workspace-password", "", "Password of a private workspace repository.")
	fs.StringArrayVar(&opts.datasets, "dataset", nil,
		"Dataset as uri=...,tag=...,auth=...; repeat the flag for more datasets.")
	fs.StringVar(&p.WorkingDirectory, "working-directory", "", "Working directory of the experiment.")
	fs.StringVar(&p.ArtifactDirectory, "artifact-directory", "", "Artifacts directory of the experiment.")
	fs.StringVar(&p.ClusterID, "cluster-id", "", "Cluster to run the experiment on.")
	fs.StringToStringVar(&p.ExperimentEnv, "env", nil, "Environment variables as KEY=VALUE.")
	fs.StringVar(&p.ModelType, "model-type", "", "Type of the model produced by the experiment.")
	fs.StringVar(&p.ModelPath, "model-path", "", "Path of the model produced by the experiment.")
	fs.StringSliceVar(&p.Tags, "tag", nil, "Tags of the experiment.")
	fs.BoolVar(&p.IsPreemptible, "preemptible", false, "Run on preemptible machines.")
	fs.BoolVar(&p.UseVPC, "vpc", false, "Submit to the VPC endpoint, requires --cluster-id.")
	return opts
}

// complete: move values that need parsing into the params
func (opts *CommonOption) complete() {
	if len(opts.datasets) == 0 {
		opts.params.Datasets = nil
		return
	}
	datasets := make([]map[string]string, 0, len(opts.datasets))
	for _, s := range opts.datasets {
		datasets = append(datasets, utils.ParseKeyValues(s))
	}
	opts.params.Datasets = datasets
}

func bindContainer(fs *flag.FlagSet, prefix string, p *client.ContainerParams) {
	fs.StringVar(&p.Container, prefix+"container", "", "Container image.")
	fs.StringVar(&p.ContainerUser, prefix+"container-user", "", "User the container runs as.")
	fs.StringVar(&p.RegistryUsername, prefix+"registry-username", "", "Username of a private container registry.")
	fs.StringVar(&p.RegistryPassword, prefix+"registry-password", "", "Password of a private container registry.")
	fs.StringVar(&p.RegistryURL, prefix+"registry-url", "", "Url of a private container registry.")
}

func bindGroup(fs *flag.FlagSet, role string, p *client.GroupParams, count int32) {
	prefix := role + "-"
	bindContainer(fs, prefix, &p.ContainerParams)
	fs.StringVar(&p.MachineType, prefix+"machine-type", "", "Machine type of the "+role+" nodes.")
	fs.StringVar(&p.Command, prefix+"command", "", "Command run by the "+role+" nodes.")
	fs.Int32Var(&p.Count, prefix+"count", count, "Number of "+role+" nodes.")
}

/*********************
 * SingleNode
 *********************/
type SingleNodeOption struct {
	*CommonOption
	Params client.SingleNodeParams
}

func NewSingleNodeOption(fs *flag.FlagSet) *SingleNodeOption {
	opts := &SingleNodeOption{}
	opts.CommonOption = bindCommon(fs, &opts.Params.CommonParams)
	bindContainer(fs, "", &opts.Params.ContainerParams)
	fs.StringVar(&opts.Params.MachineType, "machine-type", "", "Machine type of the experiment.")
	fs.StringVar(&opts.Params.Command, "command", "", "Command run by the experiment.")
	return opts
}

func (opts *SingleNodeOption) Complete() *client.SingleNodeParams {
	opts.complete()
	return &opts.Params
}

/*********************
 * MultiNode
 *********************/
type MultiNodeOption struct {
	*CommonOption
	Params         client.MultiNodeParams
	experimentType string
}

func NewMultiNodeOption(fs *flag.FlagSet) *MultiNodeOption {
	opts := &MultiNodeOption{}
	opts.CommonOption = bindCommon(fs, &opts.Params.CommonParams)
	fs.StringVar(&opts.experimentType, "experiment-type", "",
		"Multi-node strategy, GRPC or MPI or their type ids; GRPC when omitted.")
	bindGroup(fs, "worker", &opts.Params.Worker, 1)
	bindGroup(fs, "parameter-server", &opts.Params.ParameterServer, 1)
	return opts
}

func (opts *MultiNodeOption) Complete() (*client.MultiNodeParams, error) {
	opts.complete()
	opts.Params.ExperimentType = 0
	if len(opts.experimentType) > 0 {
		t, err := gradientv1.ParseMultiNodeType(opts.experimentType)
		if err != nil {
			return nil, err
		}
		opts.Params.ExperimentType = t
	}
	return &opts.Params, nil
}

/*********************
 * MpiMultiNode
 *********************/
type MpiMultiNodeOption struct {
	*CommonOption
	Params client.MpiMultiNodeParams
}

func NewMpiMultiNodeOption(fs *flag.FlagSet) *MpiMultiNodeOption {
	opts := &MpiMultiNodeOption{}
	opts.CommonOption = bindCommon(fs, &opts.Params.CommonParams)
	bindGroup(fs, "worker", &opts.Params.Worker, 1)
	// master group stays empty unless one of its flags is given
	bindGroup(fs, "master", &opts.Params.Master, 0)
	return opts
}

func (opts *MpiMultiNodeOption) Complete() *client.MpiMultiNodeParams {
	opts.complete()
	return &opts.Params
}

/*********************
 * Queries
 *********************/
type ListOption struct {
	Filter gradientv1.ListFilter
}

func NewListOption(fs *flag.FlagSet) *ListOption {
	opts := &ListOption{}
	fs.StringSliceVar(&opts.Filter.ProjectIDs, "project-id", nil, "Only list experiments of these projects.")
	fs.StringSliceVar(&opts.Filter.Tags, "tag", nil, "Only list experiments carrying one of these tags.")
	fs.IntVar(&opts.Filter.Offset, "offset", 0, "Number of experiments to skip.")
	fs.IntVar(&opts.Filter.Limit, "limit", 20, "Maximum number of experiments to list.")
	fs.BoolVar(&opts.Filter.GetMeta, "meta", false, "Print the total number of matching experiments.")
	return opts
}

type LogsOption struct {
	Line   int
	Limit  int
	Follow bool
}

func NewLogsOption(fs *flag.FlagSet) *LogsOption {
	opts := &LogsOption{}
	fs.IntVar(&opts.Line, "line", 0, "First line to print.")
	fs.IntVar(&opts.Limit, "limit", gradientv1.DefaultLogsLimit, "Maximum number of lines per request.")
	fs.BoolVar(&opts.Follow, "follow", false, "Keep polling until the experiment log ends.")
	return opts
}
