package batch_test

import (
	"math"
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/batch"
	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func laptopItem(value, co2 string, qty int) batch.Item {
	return batch.Item{
		Name:           "Laptop",
		Quantity:       qty,
		Condition:      catalog.ConditionNonWorking,
		StockType:      catalog.StockTypeIT,
		EstimatedValue: decimal.RequireFromString(value),
		CO2Estimate:    decimal.RequireFromString(co2),
		HazardLevel:    catalog.HazardLow,
		Priority:       catalog.PriorityMedium,
	}
}

func newPendingBatch() *batch.Batch {
	return batch.NewBatch("GAI-1-COBA-12252024", 7, batch.CreateBatchDTO{
		Name:           "GE Aviation IT",
		ContactPerson:  "Dana",
		PickupLocation: "Cincinnati, OH",
	}, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC))
}

var _ = Describe("Batch", func() {
	var at time.Time

	BeforeEach(func() {
		at = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	})

	It("always starts pending with zero totals", func() {
		b := newPendingBatch()
		Expect(b.Status).To(Equal(batch.StatusPending))
		Expect(b.ItemCount).To(Equal(0))
		Expect(b.TotalQuantity).To(Equal(0))
		Expect(b.TotalEstimatedValue.IsZero()).To(BeTrue())
		Expect(b.TotalCO2Impact.IsZero()).To(BeTrue())
		Expect(b.CompletedAt).To(BeNil())
	})

	Describe("AddItems", func() {
		It("promotes pending to in_progress on the first addition", func() {
			b := newPendingBatch()
			Expect(b.AddItems(3, []batch.Item{laptopItem("150", "2.5", 1)}, at)).To(Succeed())
			Expect(b.Status).To(Equal(batch.StatusInProgress))
			Expect(b.ProcessedAt).To(BeNil())
			Expect(b.CompletedAt).To(BeNil())
		})

		It("does not re-trigger promotion on later additions", func() {
			b := newPendingBatch()
			Expect(b.AddItems(3, []batch.Item{laptopItem("150", "2.5", 1)}, at)).To(Succeed())

			later := at.Add(time.Hour)
			Expect(b.AddItems(4, []batch.Item{laptopItem("75", "3", 2)}, later)).To(Succeed())
			Expect(b.Status).To(Equal(batch.StatusInProgress))
			Expect(b.ProcessedAt).To(BeNil())
			Expect(b.UpdatedAt).To(Equal(later))
		})

		It("rounds amounts to the stored scale so totals match the lines", func() {
			b := newPendingBatch()
			Expect(b.AddItems(3, []batch.Item{
				laptopItem("0.004", "0.125", 1),
				laptopItem("0.004", "0.125", 1),
			}, at)).To(Succeed())

			value, co2 := decimal.Zero, decimal.Zero
			for _, it := range b.Items {
				Expect(it.EstimatedValue.Equal(it.EstimatedValue.Round(batch.AmountPlaces))).To(BeTrue())
				Expect(it.CO2Estimate.Equal(it.CO2Estimate.Round(batch.AmountPlaces))).To(BeTrue())
				value = value.Add(it.EstimatedValue)
				co2 = co2.Add(it.CO2Estimate)
			}
			Expect(b.TotalEstimatedValue.Equal(value)).To(BeTrue())
			Expect(b.TotalCO2Impact.Equal(co2)).To(BeTrue())
			Expect(b.TotalEstimatedValue.IsZero()).To(BeTrue())
			Expect(b.TotalCO2Impact.Equal(decimal.RequireFromString("0.26"))).To(BeTrue())
		})

		It("refuses additions that overflow the batch totals", func() {
			b := newPendingBatch()
			huge := laptopItem("999999999999.99", "1", 1)
			Expect(b.AddItems(3, []batch.Item{huge}, at)).To(Succeed())

			err := b.AddItems(3, []batch.Item{laptopItem("0.01", "1", 1)}, at)
			Expect(err).To(MatchError(internal.ErrBatchTooLarge))
			Expect(b.Items).To(HaveLen(1))
			Expect(b.TotalEstimatedValue.Equal(decimal.RequireFromString("999999999999.99"))).To(BeTrue())

			err = newPendingBatch().AddItems(3, []batch.Item{
				laptopItem("1", "1", math.MaxInt32),
				laptopItem("1", "1", 1),
			}, at)
			Expect(err).To(MatchError(internal.ErrBatchTooLarge))
		})

		It("stamps the adding actor and time on each line", func() {
			b := newPendingBatch()
			Expect(b.AddItems(9, []batch.Item{laptopItem("1", "1", 1), laptopItem("2", "2", 1)}, at)).To(Succeed())
			for _, it := range b.Items {
				Expect(it.AddedBy).To(Equal(int64(9)))
				Expect(it.AddedAt).To(Equal(at))
			}
		})

		DescribeTable("rejects terminal batches",
			func(status batch.Status) {
				b := newPendingBatch()
				b.UpdateStatus(status, at)
				err := b.AddItems(3, []batch.Item{laptopItem("1", "1", 1)}, at)
				Expect(err).To(MatchError(internal.ErrBatchClosed))
				Expect(b.Items).To(BeEmpty())
			},
			Entry("completed", batch.StatusCompleted),
			Entry("cancelled", batch.StatusCancelled),
		)
	})

	Describe("Recalculate", func() {
		It("sums line values without multiplying by quantity", func() {
			b := newPendingBatch()
			Expect(b.AddItems(3, []batch.Item{
				laptopItem("150.25", "2.5", 4),
				laptopItem("75", "3.0", 2),
				laptopItem("0", "0.8", 1),
			}, at)).To(Succeed())

			Expect(b.TotalEstimatedValue.Equal(decimal.RequireFromString("225.25"))).To(BeTrue())
			Expect(b.TotalCO2Impact.Equal(decimal.RequireFromString("6.3"))).To(BeTrue())
			Expect(b.ItemCount).To(Equal(3))
			Expect(b.TotalQuantity).To(Equal(7))
		})

		It("is idempotent", func() {
			b := newPendingBatch()
			Expect(b.AddItems(3, []batch.Item{laptopItem("10", "1", 3)}, at)).To(Succeed())
			before := *b
			b.Recalculate()
			b.Recalculate()
			Expect(b.TotalEstimatedValue.Equal(before.TotalEstimatedValue)).To(BeTrue())
			Expect(b.TotalCO2Impact.Equal(before.TotalCO2Impact)).To(BeTrue())
			Expect(b.ItemCount).To(Equal(before.ItemCount))
			Expect(b.TotalQuantity).To(Equal(before.TotalQuantity))
		})

		It("is applied when converting to the data model", func() {
			b := newPendingBatch()
			b.Items = append(b.Items, laptopItem("40", "4", 2))
			m := batch.ToDataModel(b)
			Expect(m.TotalEstimatedValue.Equal(decimal.NewFromInt(40))).To(BeTrue())
			Expect(m.ItemCount).To(Equal(1))
			Expect(m.TotalQuantity).To(Equal(2))
			Expect(m.Items[0].Position).To(Equal(0))
		})
	})

	Describe("UpdateStatus", func() {
		It("stamps completion time when completed", func() {
			b := newPendingBatch()
			b.UpdateStatus(batch.StatusCompleted, at)
			Expect(b.Status).To(Equal(batch.StatusCompleted))
			Expect(b.CompletedAt).NotTo(BeNil())
			Expect(*b.CompletedAt).To(Equal(at))
		})

		It("allows any status to be set directly", func() {
			b := newPendingBatch()
			b.UpdateStatus(batch.StatusCancelled, at)
			b.UpdateStatus(batch.StatusPending, at)
			Expect(b.Status).To(Equal(batch.StatusPending))
		})

		It("keeps the completion time on a backward transition", func() {
			b := newPendingBatch()
			b.UpdateStatus(batch.StatusCompleted, at)
			b.UpdateStatus(batch.StatusInProgress, at.Add(time.Hour))
			Expect(b.CompletedAt).NotTo(BeNil())
			Expect(*b.CompletedAt).To(Equal(at))
		})

		It("does not stamp completion for other statuses", func() {
			b := newPendingBatch()
			b.UpdateStatus(batch.StatusCancelled, at)
			Expect(b.CompletedAt).To(BeNil())
		})
	})

	It("round-trips through the data model", func() {
		b := newPendingBatch()
		b.ID = 12
		b.Version = 3
		Expect(b.AddItems(3, []batch.Item{laptopItem("150", "2.5", 1)}, at)).To(Succeed())

		back := batch.FromDataModel(batch.ToDataModel(b))
		Expect(back.ID).To(Equal(int64(12)))
		Expect(back.Version).To(Equal(int64(3)))
		Expect(back.Status).To(Equal(batch.StatusInProgress))
		Expect(back.Items).To(HaveLen(1))
		Expect(back.Items[0].Condition).To(Equal(catalog.ConditionNonWorking))
	})
})
