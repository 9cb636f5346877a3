package repositories_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	gradientv1 "gradient-sdk/api/v1"
	"gradient-sdk/conf"
	"gradient-sdk/mockapi"
	"gradient-sdk/mockapi/handler"
	"gradient-sdk/repositories"
)

const apiKey = "secret"

// countingHandler counts requests reaching one host
type countingHandler struct {
	hits    int32
	handler http.Handler
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&h.hits, 1)
	h.handler.ServeHTTP(w, r)
}

func (h *countingHandler) Hits() int32 {
	return atomic.LoadInt32(&h.hits)
}

func singleNode(project string, tags ...string) *gradientv1.SingleNodeExperiment {
	return &gradientv1.SingleNodeExperiment{
		ExperimentSpec: gradientv1.ExperimentSpec{
			Name:             "mnist",
			ProjectID:        project,
			ExperimentTypeID: gradientv1.ExperimentTypeSingleNode,
			Tags:             tags,
		},
		ContainerSpec: gradientv1.ContainerSpec{Container: "tensorflow/tensorflow:1.13.1-gpu-py3"},
		MachineType:   "K80",
		Command:       "python mnist.py",
	}
}

func group(count int32) gradientv1.GroupSpec {
	return gradientv1.GroupSpec{
		ContainerSpec: gradientv1.ContainerSpec{Container: "horovod/horovod:0.18.1"},
		MachineType:   "P4000",
		Command:       "python train.py",
		Count:         count,
	}
}

var _ = Describe("HTTPRepository", func() {
	var (
		store    *mockapi.MemoryStore
		api, vpc *countingHandler
		apiSrv   *httptest.Server
		vpcSrv   *httptest.Server
		repo     *repositories.HTTPRepository
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = mockapi.NewMemoryStore()
		router := handler.InitRouter(conf.MockServerConfig{APIKey: apiKey}, store)
		api = &countingHandler{handler: router}
		vpc = &countingHandler{handler: router}
		apiSrv = httptest.NewServer(api)
		vpcSrv = httptest.NewServer(vpc)

		config := conf.NewConfiguration()
		config.APIKey = apiKey
		config.Hosts.SetAll(apiSrv.URL)
		config.Hosts.VPC = vpcSrv.URL
		config.Rest.QPS = 1000
		config.Rest.Burst = 1000
		repo = repositories.NewHTTPRepository(config)
	})

	AfterEach(func() {
		apiSrv.Close()
		vpcSrv.Close()
	})

	Describe("Create", func() {
		It("submits every topology to its endpoint", func() {
			handle, err := repo.Create(ctx, singleNode("prq70zy79"), repositories.SubmitCreate, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(handle).To(HavePrefix("es"))
			e, err := repo.Get(ctx, handle)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.GetSpec().State).To(Equal(gradientv1.ExperimentStateCreated))
			Expect(e).To(BeAssignableToTypeOf(&gradientv1.SingleNodeExperiment{}))

			spec := gradientv1.ExperimentSpec{ProjectID: "prq70zy79", ExperimentTypeID: gradientv1.ExperimentTypeMPIMultiNode}
			multi := &gradientv1.MultiNodeExperiment{
				ExperimentSpec:  spec,
				Worker:          group(2),
				ParameterServer: group(1),
			}
			handle, err = repo.Create(ctx, multi, repositories.SubmitRun, false)
			Expect(err).NotTo(HaveOccurred())
			e, err = repo.Get(ctx, handle)
			Expect(err).NotTo(HaveOccurred())
			Expect(e).To(BeAssignableToTypeOf(&gradientv1.MultiNodeExperiment{}))
			Expect(e.GetSpec().State).To(Equal(gradientv1.ExperimentStateRunning))
			Expect(gradientv1.GetTotalCount(e)).To(BeEquivalentTo(3))

			mpi := &gradientv1.MpiMultiNodeExperiment{
				ExperimentSpec: spec,
				Worker:         group(4),
			}
			handle, err = repo.Create(ctx, mpi, repositories.SubmitCreate, false)
			Expect(err).NotTo(HaveOccurred())
			e, err = repo.Get(ctx, handle)
			Expect(err).NotTo(HaveOccurred())
			Expect(e).To(BeAssignableToTypeOf(&gradientv1.MpiMultiNodeExperiment{}))
			Expect(e.(*gradientv1.MpiMultiNodeExperiment).Master).To(BeNil())
		})

		It("uses the VPC host when asked to", func() {
			_, err := repo.Create(ctx, singleNode("prq70zy79"), repositories.SubmitCreate, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(vpc.Hits()).To(BeEquivalentTo(1))
			Expect(api.Hits()).To(BeEquivalentTo(0))
		})

		It("surfaces service errors", func() {
			invalid := singleNode("prq70zy79")
			invalid.Command = ""
			_, err := repo.Create(ctx, invalid, repositories.SubmitCreate, false)
			apiErr, ok := repositories.IsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Message).To(ContainSubstring("command is required"))
		})

		It("rejects requests without the api key", func() {
			config := conf.NewConfiguration()
			config.Hosts.SetAll(apiSrv.URL)
			anonymous := repositories.NewHTTPRepository(config)
			_, _, err := anonymous.List(ctx, gradientv1.ListFilter{})
			apiErr, ok := repositories.IsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("Start and Stop", func() {
		It("moves the experiment through its states", func() {
			handle, err := repo.Create(ctx, singleNode("prq70zy79"), repositories.SubmitCreate, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Start(ctx, handle, true)).To(Succeed())
			Expect(vpc.Hits()).To(BeEquivalentTo(1))
			e, err := repo.Get(ctx, handle)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.GetSpec().State).To(Equal(gradientv1.ExperimentStateRunning))

			Expect(repo.Stop(ctx, handle, false)).To(Succeed())
			e, err = repo.Get(ctx, handle)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.GetSpec().State).To(Equal(gradientv1.ExperimentStateStopped))

			err = repo.Stop(ctx, handle, false)
			apiErr, ok := repositories.IsAPIError(err)
			Expect(ok).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusConflict))
		})
	})

	Describe("List", func() {
		var handles []string

		BeforeEach(func() {
			handles = nil
			for _, e := range []gradientv1.Experiment{
				singleNode("p1", "cnn"),
				singleNode("p2", "rnn"),
				singleNode("p1", "rnn"),
			} {
				handle, err := store.Create(e, repositories.SubmitCreate)
				Expect(err).NotTo(HaveOccurred())
				handles = append(handles, handle)
			}
		})

		It("filters by project and tags", func() {
			experiments, meta, err := repo.List(ctx, gradientv1.ListFilter{ProjectIDs: []string{"p1"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(meta).To(BeNil())
			Expect(experiments).To(HaveLen(2))

			experiments, _, err = repo.List(ctx, gradientv1.ListFilter{Tags: []string{"rnn", "rnn"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(experiments).To(HaveLen(2))
			Expect(experiments[0].GetSpec().Handle).To(Equal(handles[1]))
		})

		It("returns meta when asked to", func() {
			filter := gradientv1.ListFilter{Offset: 1, Limit: 1, GetMeta: true}
			experiments, meta, err := repo.List(ctx, filter)
			Expect(err).NotTo(HaveOccurred())
			Expect(experiments).To(HaveLen(1))
			Expect(experiments[0].GetSpec().Handle).To(Equal(handles[1]))
			Expect(meta).NotTo(BeNil())
			Expect(meta.TotalItems).To(Equal(3))
			Expect(meta.Filter).To(Equal(filter))
		})
	})

	Describe("Delete", func() {
		It("removes the experiment", func() {
			handle, err := repo.Create(ctx, singleNode("prq70zy79"), repositories.SubmitCreate, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Delete(ctx, handle)).To(Succeed())
			_, err = repo.Get(ctx, handle)
			Expect(repositories.IsNotFound(err)).To(BeTrue())
			Expect(repositories.IsNotFound(repo.Delete(ctx, handle))).To(BeTrue())
		})
	})

	Describe("Logs", func() {
		It("pages through the log of an experiment", func() {
			handle, err := repo.Create(ctx, singleNode("prq70zy79"), repositories.SubmitRun, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.AppendLogs(handle, "epoch 1", "epoch 2", "epoch 3")).To(Succeed())

			rows, err := repo.ListLogs(ctx, handle, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Message).To(Equal("epoch 1"))
			Expect(rows[1].Line).To(Equal(3))

			_, err = repo.ListLogs(ctx, "esmissing", 0, 10)
			Expect(repositories.IsNotFound(err)).To(BeTrue())
		})

		It("follows the log until the experiment stops", func() {
			handle, err := repo.Create(ctx, singleNode("prq70zy79"), repositories.SubmitRun, false)
			Expect(err).NotTo(HaveOccurred())
			go func() {
				defer GinkgoRecover()
				time.Sleep(20 * time.Millisecond)
				Expect(store.AppendLogs(handle, "epoch 1")).To(Succeed())
				Expect(store.SetState(handle, gradientv1.ExperimentStateStopped)).To(Succeed())
			}()

			it := repositories.NewLogIterator(repo, handle, 0, 10, 5*time.Millisecond)
			messages := []string{}
			timeout, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			for {
				row, err := it.Next(timeout)
				if err == io.EOF {
					break
				}
				Expect(err).NotTo(HaveOccurred())
				messages = append(messages, row.Message)
			}
			Expect(messages).To(Equal([]string{"experiment " + handle + " started", "epoch 1", "experiment stopped"}))
		})
	})
})
