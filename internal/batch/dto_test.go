package batch_test

import (
	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/batch"
	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func fieldCodes(err error) map[string]string {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue())
	details, ok := appErr.Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	out := map[string]string{}
	for _, e := range details.Errors {
		out[e.Field] = e.Code
	}
	return out
}

func validItemDTO() batch.ItemDTO {
	return batch.ItemDTO{
		Name:           "Dell Latitude",
		ModelNumber:    "8X3Y2Z1",
		Quantity:       2,
		Condition:      "non_working",
		StockType:      "it",
		EstimatedValue: decimal.NewFromInt(225),
		CO2Estimate:    decimal.RequireFromString("2.5"),
		Priority:       "high",
	}
}

var _ = Describe("DTOs", func() {
	Describe("CreateBatchDTO", func() {
		valid := batch.CreateBatchDTO{
			Name:           "GE Aviation IT Equipment",
			ContactPerson:  "Dana Smith",
			PickupLocation: "Cincinnati, OH - Building A",
			RequestDate:    "2024-12-25",
		}

		It("parses the request date", func() {
			d, err := valid.Validate()
			Expect(err).NotTo(HaveOccurred())
			Expect(batch.FormatKeyDate(d)).To(Equal("12252024"))
		})

		It("rejects an unparseable date before anything else happens", func() {
			dto := valid
			dto.RequestDate = "12/25/2024"
			_, err := dto.Validate()
			Expect(fieldCodes(err)).To(HaveKeyWithValue("request_date", string(internal.ErrCodeInvalidDate)))
		})

		It("requires a name with at least one word", func() {
			dto := valid
			dto.Name = "123 456"
			_, err := dto.Validate()
			Expect(fieldCodes(err)).To(HaveKeyWithValue("name", string(internal.ErrCodeInvalidName)))
		})

		It("reports every missing field", func() {
			_, err := batch.CreateBatchDTO{}.Validate()
			codes := fieldCodes(err)
			Expect(codes).To(HaveKey("name"))
			Expect(codes).To(HaveKey("contact_person"))
			Expect(codes).To(HaveKey("pickup_location"))
			Expect(codes).To(HaveKey("request_date"))
		})
	})

	Describe("AddItemsDTO", func() {
		It("accepts valid items and defaults hazard to none", func() {
			dto := batch.AddItemsDTO{Items: []batch.ItemDTO{validItemDTO()}}
			Expect(dto.Validate()).To(Succeed())
			items := dto.ToItems()
			Expect(items[0].HazardLevel).To(Equal(catalog.HazardNone))
			Expect(items[0].Condition).To(Equal(catalog.ConditionNonWorking))
		})

		It("rejects an empty list", func() {
			err := batch.AddItemsDTO{}.Validate()
			Expect(fieldCodes(err)).To(HaveKeyWithValue("items", string(internal.ErrCodeNoItems)))
		})

		It("names the offending item and field", func() {
			bad := validItemDTO()
			bad.Quantity = 0
			bad.Condition = "melted"
			bad.StockType = "furniture"
			bad.HazardLevel = "extreme"
			bad.Priority = "urgent"
			bad.EstimatedValue = decimal.NewFromInt(-5)
			bad.CO2Estimate = decimal.RequireFromString("-0.1")

			err := batch.AddItemsDTO{Items: []batch.ItemDTO{validItemDTO(), bad}}.Validate()
			codes := fieldCodes(err)
			Expect(codes).To(HaveKeyWithValue("items[1].quantity", string(internal.ErrCodeInvalidQuantity)))
			Expect(codes).To(HaveKeyWithValue("items[1].condition", string(internal.ErrCodeInvalidCondition)))
			Expect(codes).To(HaveKeyWithValue("items[1].stock_type", string(internal.ErrCodeInvalidStockType)))
			Expect(codes).To(HaveKeyWithValue("items[1].hazard_level", string(internal.ErrCodeInvalidHazardLevel)))
			Expect(codes).To(HaveKeyWithValue("items[1].priority", string(internal.ErrCodeInvalidPriority)))
			Expect(codes).To(HaveKeyWithValue("items[1].estimated_value", string(internal.ErrCodeNegativeAmount)))
			Expect(codes).To(HaveKeyWithValue("items[1].co2_estimate", string(internal.ErrCodeNegativeAmount)))
			Expect(codes).NotTo(HaveKey(HavePrefix("items[0]")))
		})

		It("rejects amounts and quantities the store cannot hold", func() {
			bad := validItemDTO()
			bad.Quantity = batch.MaxItemQuantity + 1
			bad.EstimatedValue = decimal.RequireFromString("0.004")
			bad.CO2Estimate = decimal.New(1, 12)

			codes := fieldCodes(batch.AddItemsDTO{Items: []batch.ItemDTO{bad}}.Validate())
			Expect(codes).To(HaveKeyWithValue("items[0].quantity", string(internal.ErrCodeInvalidQuantity)))
			Expect(codes).To(HaveKeyWithValue("items[0].estimated_value", string(internal.ErrCodeAmountPrecision)))
			Expect(codes).To(HaveKeyWithValue("items[0].co2_estimate", string(internal.ErrCodeAmountTooLarge)))
		})

		It("accepts cents and trailing zeros", func() {
			item := validItemDTO()
			item.EstimatedValue = decimal.RequireFromString("19.99")
			item.CO2Estimate = decimal.RequireFromString("2.500")
			Expect(batch.AddItemsDTO{Items: []batch.ItemDTO{item}}.Validate()).To(Succeed())
		})
	})

	Describe("UpdateStatusDTO", func() {
		It("accepts every enumerated status", func() {
			for _, s := range batch.Statuses {
				got, err := batch.UpdateStatusDTO{Status: string(s)}.Validate()
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(s))
			}
		})

		It("rejects anything else", func() {
			_, err := batch.UpdateStatusDTO{Status: "archived"}.Validate()
			Expect(fieldCodes(err)).To(HaveKeyWithValue("status", string(internal.ErrCodeInvalidStatus)))
		})
	})

	Describe("ScheduleDTO", func() {
		It("requires at least one field", func() {
			dto := batch.ScheduleDTO{}
			Expect(dto.Validate()).NotTo(Succeed())
		})

		It("rejects bad dates", func() {
			dto := batch.ScheduleDTO{ScheduledPickupDate: "tomorrow"}
			Expect(fieldCodes(dto.Validate())).To(HaveKeyWithValue("scheduled_pickup_date", string(internal.ErrCodeInvalidDate)))
		})
	})

	Describe("ListQueryDTO", func() {
		It("applies pagination defaults", func() {
			f, err := batch.ListQueryDTO{}.Validate()
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Page).To(Equal(1))
			Expect(f.Limit).To(Equal(batch.DefaultPageLimit))
			Expect(f.Offset()).To(Equal(0))
		})

		It("rejects unknown statuses and oversized pages", func() {
			_, err := batch.ListQueryDTO{Status: "lost", Limit: 1000}.Validate()
			codes := fieldCodes(err)
			Expect(codes).To(HaveKey("status"))
			Expect(codes).To(HaveKey("limit"))
		})
	})

	It("computes pagination metadata", func() {
		p := batch.NewPagination(2, 10, 25)
		Expect(p.TotalPages).To(Equal(3))
		Expect(p.HasNext).To(BeTrue())
		Expect(p.HasPrev).To(BeTrue())

		empty := batch.NewPagination(1, 10, 0)
		Expect(empty.TotalPages).To(Equal(0))
		Expect(empty.HasNext).To(BeFalse())
		Expect(empty.HasPrev).To(BeFalse())
	})
})
