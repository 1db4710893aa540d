package auth

import (
	"github.com/frahmantamala/ewaste-management/internal"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("BatchPolicy", func() {
	var (
		policy     *BatchPolicy
		partner    = &internal.User{ID: 10, Role: coreuser.RolePartner}
		itemsAdmin = &internal.User{ID: 20, Role: coreuser.RoleAdmin, Permissions: []coreuser.Permission{coreuser.PermManageItems}}
		opsAdmin   = &internal.User{ID: 21, Role: coreuser.RoleAdmin, Permissions: []coreuser.Permission{coreuser.PermSystemAdmin}}
		bareAdmin  = &internal.User{ID: 22, Role: coreuser.RoleAdmin}
		superAdmin = &internal.User{ID: 30, Role: coreuser.RoleSuperAdmin}
		// a partner row that somehow carries admin permissions must still be refused
		elevatedPartner = &internal.User{ID: 12, Role: coreuser.RolePartner, Permissions: []coreuser.Permission{coreuser.PermSystemAdmin}}
	)

	ginkgo.BeforeEach(func() {
		policy = NewBatchPolicy(nil)
	})

	ginkgo.DescribeTable("CanCreateBatch",
		func(u *internal.User, expected bool) {
			gomega.Expect(policy.CanCreateBatch(u)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("partner", partner, true),
		ginkgo.Entry("admin", itemsAdmin, false),
		ginkgo.Entry("super admin", superAdmin, false),
		ginkgo.Entry("anonymous", (*internal.User)(nil), false),
	)

	ginkgo.DescribeTable("CanAddItems",
		func(u *internal.User, expected bool) {
			gomega.Expect(policy.CanAddItems(u)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("admin with manage_items", itemsAdmin, true),
		ginkgo.Entry("admin with system_admin", opsAdmin, true),
		ginkgo.Entry("admin without permissions", bareAdmin, false),
		ginkgo.Entry("super admin", superAdmin, true),
		ginkgo.Entry("partner", partner, false),
		ginkgo.Entry("partner holding system_admin", elevatedPartner, false),
	)

	ginkgo.DescribeTable("CanUpdateStatus",
		func(u *internal.User, expected bool) {
			gomega.Expect(policy.CanUpdateStatus(u)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("admin with only manage_items", itemsAdmin, false),
		ginkgo.Entry("admin with system_admin", opsAdmin, true),
		ginkgo.Entry("super admin", superAdmin, true),
		ginkgo.Entry("partner", partner, false),
	)

	ginkgo.DescribeTable("CanDelete",
		func(u *internal.User, expected bool) {
			gomega.Expect(policy.CanDelete(u)).To(gomega.Equal(expected))
		},
		ginkgo.Entry("super admin", superAdmin, true),
		ginkgo.Entry("admin with system_admin", opsAdmin, false),
		ginkgo.Entry("partner", partner, false),
	)

	ginkgo.Describe("CanViewBatch", func() {
		ginkgo.It("lets partners see only their own batches", func() {
			gomega.Expect(policy.CanViewBatch(partner, 10)).To(gomega.BeTrue())
			gomega.Expect(policy.CanViewBatch(partner, 11)).To(gomega.BeFalse())
		})

		ginkgo.It("lets any admin see every batch", func() {
			gomega.Expect(policy.CanViewBatch(bareAdmin, 10)).To(gomega.BeTrue())
			gomega.Expect(policy.CanViewBatch(superAdmin, 99)).To(gomega.BeTrue())
		})

		ginkgo.It("refuses anonymous callers", func() {
			gomega.Expect(policy.CanViewBatch(nil, 10)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("role-only capabilities", func() {
		ginkgo.It("gates listing, stats and autofill on the admin roles", func() {
			for _, u := range []*internal.User{bareAdmin, superAdmin} {
				gomega.Expect(policy.CanListAll(u)).To(gomega.BeTrue())
				gomega.Expect(policy.CanViewStats(u)).To(gomega.BeTrue())
				gomega.Expect(policy.CanUseAutofill(u)).To(gomega.BeTrue())
			}
			gomega.Expect(policy.CanListAll(partner)).To(gomega.BeFalse())
			gomega.Expect(policy.CanViewStats(partner)).To(gomega.BeFalse())
			gomega.Expect(policy.CanUseAutofill(partner)).To(gomega.BeFalse())
		})

		ginkgo.It("requires manage_users for user administration", func() {
			gomega.Expect(policy.CanManageUsers(opsAdmin)).To(gomega.BeTrue())
			gomega.Expect(policy.CanManageUsers(itemsAdmin)).To(gomega.BeFalse())
			gomega.Expect(policy.CanManageUsers(superAdmin)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("CanSchedule", func() {
		ginkgo.It("requires schedule_pickups", func() {
			scheduler := &internal.User{ID: 23, Role: coreuser.RoleAdmin, Permissions: []coreuser.Permission{coreuser.PermSchedulePickups}}
			gomega.Expect(policy.CanSchedule(scheduler)).To(gomega.BeTrue())
			gomega.Expect(policy.CanSchedule(itemsAdmin)).To(gomega.BeFalse())
		})
	})
})
