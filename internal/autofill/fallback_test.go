package autofill

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("serial rules", func() {
	DescribeTable("detectManufacturer",
		func(serial, expected string) {
			Expect(detectManufacturer(serial)).To(Equal(expected))
		},
		Entry("lenovo prefix", "20AB123456789", "Lenovo"),
		Entry("lenovo name", "lenovo-x1", "Lenovo"),
		Entry("dell name", "DELL-7490", "Dell"),
		Entry("dell prefix", "DLL99", "Dell"),
		Entry("hp", "HP-ELITEBOOK", "HP"),
		Entry("asus", "ASUS-ROG", "ASUS"),
		Entry("acer", "ACER-SWIFT", "Acer"),
		Entry("msi", "MSI-GF63", "MSI"),
		Entry("ten character serial", "C02XK1JHJG", "Apple"),
		Entry("unknown", "XYZ", ""),
	)

	DescribeTable("detectDeviceType",
		func(serial, expected string) {
			Expect(detectDeviceType(serial)).To(Equal(expected))
		},
		Entry("lenovo laptop pattern", "83D2001GIN", "laptop"),
		Entry("thinkpad", "THINKPAD-T14", "laptop"),
		Entry("tower", "TOWER-1", "desktop"),
		Entry("display", "display-27", "monitor"),
		Entry("default", "???", "laptop"),
	)

	It("adds a premium for resale brands", func() {
		Expect(estimateValue("laptop", "Dell").String()).To(Equal("225"))
		Expect(estimateValue("laptop", "HP").String()).To(Equal("150"))
		Expect(estimateValue("printer", "Apple").String()).To(Equal("38"))
		Expect(estimateValue("toaster", "").String()).To(Equal("50"))
	})

	It("looks up CO2 by device type", func() {
		Expect(estimateCO2("server").String()).To(Equal("8"))
		Expect(estimateCO2("phone").String()).To(Equal("0.8"))
		Expect(estimateCO2("toaster").String()).To(Equal("2.5"))
	})

	It("extracts the outermost JSON object", func() {
		payload, err := extractJSON("```json\n{\"a\":{\"b\":1}}\n```")
		Expect(err).NotTo(HaveOccurred())
		Expect(payload).To(Equal(`{"a":{"b":1}}`))

		_, err = extractJSON("no braces")
		Expect(err).To(MatchError(errNoJSON))
	})
})
