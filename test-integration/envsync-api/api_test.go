package integration

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/stacklok/envsync/internal/api/v1"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/usecase"
	"github.com/stacklok/envsync/test-integration/envsync-api/helpers"
)

var _ = Describe("Environment promotion API", Label("api"), func() {
	var (
		server *helpers.ServerTestHelper
		org    *helpers.Organization
	)

	BeforeEach(func() {
		var err error
		server, err = helpers.NewServerTestHelper(pool, v1.Settings{Transactional: true, BatchSize: 10})
		Expect(err).NotTo(HaveOccurred())

		org, err = helpers.SeedOrganization(ctx, server.Store)
		Expect(err).NotTo(HaveOccurred())

		By("seeding a layout and a workflow that uses it in development")
		Expect(helpers.CreateLayout(ctx, server.Store, org.ID, org.DevelopmentID, "main", "Main layout")).To(Succeed())
		_, err = helpers.NewWorkflowBuilder(org.ID, org.DevelopmentID, "welcome").
			WithEmailStep("email-1", "main").
			Create(ctx, server.Store)
		Expect(err).NotTo(HaveOccurred())

		By("seeding a production-only workflow")
		_, err = helpers.NewWorkflowBuilder(org.ID, org.ProductionID, "legacy").
			WithEmailStep("email-1", "").
			Create(ctx, server.Store)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Context("diff", func() {
		It("reports additions, deletions and layout dependencies", func() {
			resp, code, err := server.Diff(ctx, org.Caller(), org.ProductionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusOK))

			Expect(resp.SourceEnvironmentID).To(Equal(org.DevelopmentID))
			Expect(resp.Summary).To(Equal(usecase.DiffSummary{TotalEntities: 3, TotalChanges: 4, HasChanges: true}))
			Expect(resp.Resources).To(HaveLen(3))

			welcome := resp.Resources[1]
			Expect(welcome.ResourceID()).To(Equal("welcome"))
			Expect(welcome.Summary).To(Equal(promotion.DiffSummary{Added: 2}))
			Expect(welcome.Changes).To(HaveLen(2))
			step := welcome.Changes[1]
			Expect(step.ResourceType).To(Equal(promotion.ResourceTypeStep))
			Expect(step.Action).To(Equal(promotion.ActionAdded))
			Expect(step.NewIndex).To(HaveValue(Equal(0)))
			Expect(step.Diffs.New).To(HaveKeyWithValue("controlValues", HaveKeyWithValue("layoutId", "main")))
			Expect(welcome.Dependencies).To(ConsistOf(promotion.ResourceDependency{
				ResourceType: promotion.ResourceTypeLayout,
				ResourceID:   "main",
				ResourceName: "Main layout",
				IsBlocking:   true,
				Reason:       promotion.ReasonLayoutRequiredForWorkflow,
			}))
			Expect(resp.Resources[2].IsDeletion()).To(BeTrue())
		})

		It("rejects callers without identity headers", func() {
			_, code, err := server.Diff(ctx, helpers.Caller{}, org.ProductionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects environments of another organization", func() {
			other, err := helpers.SeedOrganization(ctx, server.Store)
			Expect(err).NotTo(HaveOccurred())

			_, code, err := server.Diff(ctx, org.Caller(), other.ProductionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusForbidden))
		})
	})

	Context("publish", func() {
		It("leaves the target untouched on a dry run", func() {
			before, _, err := server.Diff(ctx, org.Caller(), org.ProductionID)
			Expect(err).NotTo(HaveOccurred())

			resp, code, err := server.Publish(ctx, org.Caller(), org.ProductionID, v1.PublishRequest{DryRun: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusOK))
			Expect(resp.Summary).To(Equal(usecase.PublishSummary{Resources: 2, Skipped: 2}))

			diff, _, err := server.Diff(ctx, org.Caller(), org.ProductionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff).To(Equal(before))
		})

		It("promotes every change and converges", func() {
			resp, code, err := server.Publish(ctx, org.Caller(), org.ProductionID, v1.PublishRequest{})
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusOK))
			Expect(resp.Summary).To(Equal(usecase.PublishSummary{Resources: 3, Successful: 3}))

			diff, _, err := server.Diff(ctx, org.Caller(), org.ProductionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.Summary.HasChanges).To(BeFalse())
			Expect(diff.Resources).To(BeEmpty())

			var resources v1.ResourcesResponse
			code, err = server.Do(ctx, org.Caller(), http.MethodGet,
				"/v1/environments/"+org.ProductionID+"/resources/workflow", nil, &resources)
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusOK))
			Expect(resources.ResourceIDs).To(Equal([]string{"welcome"}))
		})

		It("promotes only the selected resources", func() {
			resp, code, err := server.Publish(ctx, org.Caller(), org.ProductionID, v1.PublishRequest{
				Resources: []promotion.ResourceSelector{{ResourceType: promotion.ResourceTypeLayout, ResourceID: "main"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusOK))
			Expect(resp.Summary).To(Equal(usecase.PublishSummary{Resources: 1, Successful: 1}))

			diff, _, err := server.Diff(ctx, org.Caller(), org.ProductionID)
			Expect(err).NotTo(HaveOccurred())
			Expect(diff.Summary.TotalChanges).To(Equal(3))
			Expect(diff.Resources).To(HaveLen(2))
		})

		It("rejects unsupported resource selectors", func() {
			_, code, err := server.Publish(ctx, org.Caller(), org.ProductionID, v1.PublishRequest{
				Resources: []promotion.ResourceSelector{{ResourceType: "translation", ResourceID: "x"}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(code).To(Equal(http.StatusBadRequest))
		})
	})

	It("reports readiness", func() {
		code, err := server.Do(ctx, helpers.Caller{}, http.MethodGet, "/readiness", nil, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(code).To(Equal(http.StatusOK))
	})
})
