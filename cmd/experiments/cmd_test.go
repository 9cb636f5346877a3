package experiments

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bombsimon/logrusr"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/client"
	"gradient-sdk/repositories"
	"gradient-sdk/utils/fake"
)

func execute(t *testing.T, args ...string) (string, *fake.FakeRepository, error) {
	log := logrusr.NewLogger(logrus.StandardLogger())
	repo := fake.NewFakeRepository(log)
	newClient = func() *client.ExperimentsClient {
		return client.NewExperimentsClient(repo, client.WithLogger(log), client.WithPollInterval(time.Millisecond))
	}
	cmd := NewExperimentsCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Logf("%s => %q", strings.Join(args, " "), out.String())
	return out.String(), repo, err
}

func TestSubmitSingleNode(t *testing.T) {
	out, repo, err := execute(t, "run", "singlenode",
		"--project-id", "prq70zy79",
		"--name", "mnist",
		"--container", "tensorflow/tensorflow:1.13.1-gpu-py3",
		"--machine-type", "K80",
		"--command", "python mnist.py",
		"--dataset", "uri=s3://bucket/a,tag=v1",
		"--dataset", "uri=s3://bucket/b",
		"--env", "EPOCHS=2,BATCH=64",
		"--tag", "cnn",
		"--preemptible",
	)
	require.Nil(t, err)
	assert.Equal(t, "esfake\n", out)

	calls := repo.CallsOf("Create")
	require.Len(t, calls, 1)
	assert.Equal(t, repositories.SubmitRun, calls[0].Mode)
	e := calls[0].Experiment.(*gradientv1.SingleNodeExperiment)
	assert.Equal(t, "python mnist.py", e.Command)
	assert.Equal(t, []gradientv1.Dataset{{URI: "s3://bucket/a", Tag: "v1"}, {URI: "s3://bucket/b"}}, e.Datasets)
	assert.Equal(t, map[string]string{"EPOCHS": "2", "BATCH": "64"}, e.ExperimentEnv)
	assert.Equal(t, []string{"cnn"}, e.Tags)
	require.NotNil(t, e.IsPreemptible)
	assert.True(t, *e.IsPreemptible)
}

func TestSubmitMultiNode(t *testing.T) {
	group := func(role string) []string {
		return []string{
			"--" + role + "-container", "tensorflow/tensorflow:1.13.1-gpu-py3",
			"--" + role + "-machine-type", "K80",
			"--" + role + "-command", "python train.py",
		}
	}
	cases := []struct {
		experimentType string
		expected       gradientv1.ExperimentType
		valid          bool
	}{
		{"", gradientv1.ExperimentTypeGRPCMultiNode, true},
		{"MPI", gradientv1.ExperimentTypeMPIMultiNode, true},
		{"2", gradientv1.ExperimentTypeGRPCMultiNode, true},
		{"grpc", 0, false},
		{"1", 0, false},
	}
	for i, c := range cases {
		t.Logf("case #%d: %q", i, c.experimentType)
		args := []string{"create", "multinode", "--project-id", "p1", "--worker-count", "3"}
		args = append(args, group("worker")...)
		args = append(args, group("parameter-server")...)
		if len(c.experimentType) > 0 {
			args = append(args, "--experiment-type", c.experimentType)
		}
		_, repo, err := execute(t, args...)
		calls := repo.CallsOf("Create")
		if !c.valid {
			assert.NotNil(t, err)
			assert.Empty(t, calls)
			continue
		}
		require.Nil(t, err)
		require.Len(t, calls, 1)
		e := calls[0].Experiment.(*gradientv1.MultiNodeExperiment)
		assert.Equal(t, c.expected, e.ExperimentTypeID)
		assert.Equal(t, int32(3), e.Worker.Count)
		assert.Equal(t, int32(1), e.ParameterServer.Count)
	}
}

func TestSubmitMpi(t *testing.T) {
	args := []string{"run", "mpi", "--project-id", "p1",
		"--worker-container", "horovod/horovod:0.18.1",
		"--worker-machine-type", "P4000",
		"--worker-command", "horovodrun python train.py",
		"--worker-count", "2",
	}
	_, repo, err := execute(t, args...)
	require.Nil(t, err)
	e := repo.CallsOf("Create")[0].Experiment.(*gradientv1.MpiMultiNodeExperiment)
	assert.Nil(t, e.Master)
	assert.Equal(t, gradientv1.ExperimentTypeMPIMultiNode, e.ExperimentTypeID)

	args = append(args,
		"--master-container", "horovod/horovod:0.18.1",
		"--master-machine-type", "P4000",
		"--master-command", "sleep infinity",
		"--master-count", "1",
	)
	_, repo, err = execute(t, args...)
	require.Nil(t, err)
	e = repo.CallsOf("Create")[0].Experiment.(*gradientv1.MpiMultiNodeExperiment)
	require.NotNil(t, e.Master)
	assert.Equal(t, "sleep infinity", e.Master.Command)
}

func TestSubmitVPCRequiresCluster(t *testing.T) {
	_, repo, err := execute(t, "create", "singlenode", "--project-id", "p1", "--vpc",
		"--container", "busybox", "--machine-type", "C2", "--command", "true")
	_, ok := gradientv1.IsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, repo.Calls)
}

func TestLifecycleCommands(t *testing.T) {
	_, repo, err := execute(t, "start", "es1", "--vpc")
	require.Nil(t, err)
	assert.True(t, repo.CallsOf("Start")[0].UseVPC)

	_, repo, err = execute(t, "stop", "es1")
	require.Nil(t, err)
	assert.False(t, repo.CallsOf("Stop")[0].UseVPC)

	_, repo, err = execute(t, "delete", "es1")
	require.Nil(t, err)
	assert.Equal(t, "es1", repo.CallsOf("Delete")[0].ExperimentID)

	_, _, err = execute(t, "delete")
	assert.NotNil(t, err)
}

func TestQueryCommands(t *testing.T) {
	out, repo, err := execute(t, "list", "--project-id", "p1,p2", "--tag", "cnn", "--meta")
	require.Nil(t, err)
	filter := repo.CallsOf("List")[0].Filter
	assert.Equal(t, []string{"p1", "p2"}, filter.ProjectIDs)
	assert.Equal(t, 20, filter.Limit)
	assert.True(t, filter.GetMeta)
	assert.Contains(t, out, `"totalItems": 0`)

	_, _, err = execute(t, "get", "esmissing")
	assert.NotNil(t, err)
}

func TestLogsCommand(t *testing.T) {
	log := logrusr.NewLogger(logrus.StandardLogger())
	repo := fake.NewFakeRepository(log)
	repo.LogPages = [][]gradientv1.LogRow{
		{{Line: 1, Message: "epoch 1"}, {Line: 2, Message: "epoch 2"}},
		{{Line: 3, Message: gradientv1.LogsEOFMessage}},
	}
	newClient = func() *client.ExperimentsClient {
		return client.NewExperimentsClient(repo, client.WithLogger(log), client.WithPollInterval(time.Millisecond))
	}
	cmd := NewExperimentsCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"logs", "es1", "--follow", "--line", "1"})
	require.Nil(t, cmd.Execute())
	assert.Equal(t, "1\tepoch 1\n2\tepoch 2\n", out.String())
	assert.Equal(t, 1, repo.CallsOf("ListLogs")[0].Line)
}
